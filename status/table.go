package status

import (
	"sort"
	"sync"
)

// Table maps metric names to value cells of one kind. Cells are never
// removed, so a pointer from Get stays valid for the registry lifetime
type Table[T any] struct {
	mu    sync.Mutex
	cells map[string]*T
}

// NewTable creates an empty table
func NewTable[T any]() *Table[T] {
	return &Table[T]{cells: make(map[string]*T)}
}

// Get returns the cell for name, creating it zero-valued on first use.
// Registration happens at setup time; callers keep the pointer and
// write to it directly afterward
func (t *Table[T]) Get(name string) *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.cells[name]; ok {
		return c
	}
	c := new(T)
	t.cells[name] = c
	return c
}

// Len returns the number of registered cells
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cells)
}

// Each visits every cell in name order. The callback runs outside the
// table lock so it may call back into the table
func (t *Table[T]) Each(fn func(name string, cell *T)) {
	t.mu.Lock()
	names := make([]string, 0, len(t.cells))
	for n := range t.cells {
		names = append(names, n)
	}
	cells := make([]*T, len(names))
	sort.Strings(names)
	for i, n := range names {
		cells[i] = t.cells[n]
	}
	t.mu.Unlock()

	for i, n := range names {
		fn(n, cells[i])
	}
}
