package items

import (
	"sync"

	"github.com/google/uuid"
)

// Editor is the explicit state of one buyer's editing session: the desired
// quantities plus the load-completion flag. Edits arriving before the
// persisted items finished loading are refused, otherwise a debounced sync
// could overwrite not-yet-loaded state with an empty map.
type Editor struct {
	OrderID uuid.UUID

	mu         sync.Mutex
	quantities map[uuid.UUID]int
	loaded     bool
}

// NewEditor starts an unloaded session for the order.
func NewEditor(orderID uuid.UUID) *Editor {
	return &Editor{
		OrderID:    orderID,
		quantities: map[uuid.UUID]int{},
	}
}

// MarkLoaded seeds the session from the persisted rows and opens the edit
// gate. Calling it again replaces the whole map.
func (e *Editor) MarkLoaded(initial map[uuid.UUID]int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed(initial)
}

// EnsureLoaded seeds the session exactly once. The editor lock is held
// across the fetch, so a racing first edit waits for the seed instead of
// re-seeding over an already-applied quantity. A failed fetch leaves the
// session unloaded and the next edit retries.
func (e *Editor) EnsureLoaded(load func() (map[uuid.UUID]int, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return nil
	}
	initial, err := load()
	if err != nil {
		return err
	}
	e.seed(initial)
	return nil
}

func (e *Editor) seed(initial map[uuid.UUID]int) {
	e.quantities = make(map[uuid.UUID]int, len(initial))
	for id, qty := range initial {
		if qty > 0 {
			e.quantities[id] = qty
		}
	}
	e.loaded = true
}

// SetQuantity records one product's desired quantity. Returns false while
// the session is still unloaded; the edit is dropped in that case.
func (e *Editor) SetQuantity(productID uuid.UUID, qty int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return false
	}
	if qty <= 0 {
		delete(e.quantities, productID)
		return true
	}
	e.quantities[productID] = qty
	return true
}

// Loaded reports whether the initial item load completed.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Snapshot copies the current desired map for a sync call.
func (e *Editor) Snapshot() map[uuid.UUID]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := make(map[uuid.UUID]int, len(e.quantities))
	for id, qty := range e.quantities {
		snapshot[id] = qty
	}
	return snapshot
}

// EditorPool keeps one Editor per order for the edit endpoints.
type EditorPool struct {
	mu      sync.Mutex
	editors map[uuid.UUID]*Editor
}

// NewEditorPool builds an empty pool.
func NewEditorPool() *EditorPool {
	return &EditorPool{editors: map[uuid.UUID]*Editor{}}
}

// Get returns the order's editor, creating an unloaded one on first touch.
func (p *EditorPool) Get(orderID uuid.UUID) *Editor {
	p.mu.Lock()
	defer p.mu.Unlock()
	editor, ok := p.editors[orderID]
	if !ok {
		editor = NewEditor(orderID)
		p.editors[orderID] = editor
	}
	return editor
}

// Drop forgets the order's session, e.g. after submission.
func (p *EditorPool) Drop(orderID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.editors, orderID)
}
