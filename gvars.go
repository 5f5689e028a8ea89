// Package gvars implements the global namespace of an interpreter kernel.
//
// A Globals binds interned names to values. A variable may be automatic, in
// which case its value is computed on first use by calling an evaluator that
// must assign the variable as a side effect. Kernel code that wants direct
// access to a global registers a Cell: a copy cell always holds the variable's
// value, a fopy cell always holds something callable (the value itself, or a
// stub that raises the appropriate error). Cells are process-local; the
// registry is externalized by name around a workspace save and re-synchronized
// after a load.
//
// A Globals is safe for use by multiple goroutines. Every assignment and the
// propagation of the new value to the registered cells happen in a single
// critical section. Evaluators of automatic variables run outside of it and
// may freely read and assign globals, including the one being resolved.
// Resolution does not wait for an evaluator running on another goroutine: an
// AutoValue of a variable whose evaluator is in progress anywhere fails with
// UnboundVariable, exactly as a re-entrant one does.
package gvars

import (
	"log/slog"
	"sync"

	"github.com/google/btree"
)

// Handle identifies a global variable for the lifetime of a Globals. Handles
// are issued by Intern and never reused.
type Handle uint32

// NoHandle is never issued by Intern.
const NoHandle Handle = 0

// Option configures a Globals.
type Option func(g *Globals)

// WithLogger sets the logger used for kernel diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *Globals) {
		g.log = l
	}
}

// Globals is the global namespace of one interpreter.
type Globals struct {
	mu  sync.Mutex
	log *slog.Logger

	// name table; index 0 is reserved for NoHandle
	names  []string
	byName map[string]Handle
	index  *btree.BTreeG[string]

	// slot store, parallel to names
	slots []slot

	// copy/fopy registry
	cells    []*Cell
	byHandle map[Handle][]*Cell
	stripped bool
	table    Table

	builtins map[string]*Builtin
}

// New returns an empty namespace.
func New(opts ...Option) *Globals {
	g := &Globals{
		log:      slog.Default(),
		names:    []string{""},
		byName:   map[string]Handle{},
		index:    newIndex(),
		slots:    []slot{{}},
		byHandle: map[Handle][]*Cell{},
		builtins: map[string]*Builtin{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterBuiltin records b so that values referring to it can be restored
// from a saved workspace. Kernel modules call it from InitKernel.
func (g *Globals) RegisterBuiltin(b *Builtin) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.builtins[b.Name] = b
}

// Builtin returns the builtin registered under name.
func (g *Globals) Builtin(name string) (*Builtin, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.builtins[name]
	return b, ok
}
