package items

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockArenaSerializesPerOrder(t *testing.T) {
	arena := newLockArena()
	orderID := uuid.New()

	inCritical := 0
	maxInCritical := 0
	var observe sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := arena.acquire(orderID)
			defer release()

			observe.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			observe.Unlock()

			observe.Lock()
			inCritical--
			observe.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "two syncs for the same order overlapped")
}

func TestLockArenaDropsReleasedEntries(t *testing.T) {
	arena := newLockArena()
	release := arena.acquire(uuid.New())
	release()

	arena.mu.Lock()
	defer arena.mu.Unlock()
	assert.Empty(t, arena.locks)
}
