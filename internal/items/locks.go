package items

import (
	"sync"

	"github.com/google/uuid"
)

// lockArena hands out one mutex per order id so syncs for the same order
// serialize while different orders proceed in parallel. Entries are
// refcounted and dropped once the last holder releases, keeping the map from
// growing with every order ever edited.
type lockArena struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: map[uuid.UUID]*orderLock{}}
}

// acquire blocks until the per-order lock is held and returns the release
// function.
func (a *lockArena) acquire(orderID uuid.UUID) func() {
	a.mu.Lock()
	lock, ok := a.locks[orderID]
	if !ok {
		lock = &orderLock{}
		a.locks[orderID] = lock
	}
	lock.refs++
	a.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()
		a.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(a.locks, orderID)
		}
		a.mu.Unlock()
	}
}
