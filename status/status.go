// Package status exposes runtime counters as plain atomics. A renderer
// owns the terminal, so there is nowhere to log; components publish
// numbers here instead and an overlay or test reads them back.
//
// Producers resolve their cells once during setup and write through the
// returned pointers on hot paths; no lock is taken after registration.
package status

import "sync/atomic"

// Registry groups the runtime metrics by value kind. Dotted names
// ("screen.frames", "engine.messages") keep the namespaces apart
type Registry struct {
	Bools   *Table[atomic.Bool]
	Ints    *Table[atomic.Int64]
	Floats  *Table[Float]
	Strings *Table[Text]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewTable[atomic.Bool](),
		Ints:    NewTable[atomic.Int64](),
		Floats:  NewTable[Float](),
		Strings: NewTable[Text](),
	}
}

// Len returns the number of registered metrics across all kinds
func (r *Registry) Len() int {
	return r.Bools.Len() + r.Ints.Len() + r.Floats.Len() + r.Strings.Len()
}
