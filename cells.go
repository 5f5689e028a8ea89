package gvars

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// CellKind distinguishes copy cells from fopy cells.
type CellKind int

const (
	// Copy cells hold the value of their variable, or nil while it is unbound.
	Copy CellKind = iota
	// Fopy cells hold the value of their variable if it is callable, and a
	// procedure that raises NotAFunction or UnboundVariable otherwise.
	Fopy
)

func (k CellKind) String() string {
	switch k {
	case Copy:
		return "copy"
	case Fopy:
		return "fopy"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

func (k CellKind) MarshalText() ([]byte, error) {
	switch k {
	case Copy, Fopy:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown cell kind %d", int(k))
	}
}

func (k *CellKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "copy":
		*k = Copy
	case "fopy":
		*k = Fopy
	default:
		return fmt.Errorf("unknown cell kind %q", text)
	}
	return nil
}

// A Cell is a kernel-side cache of a global variable. The registry keeps the
// contents of every registered cell in sync with its variable; the module
// that registered a cell reads it without going through the namespace.
type Cell struct {
	kind   CellKind
	name   string
	handle Handle

	contents atomic.Pointer[cellContents]

	// fopy stubs
	unbound, notFunction *stub
}

type cellContents struct {
	v Value
}

func (c *Cell) Kind() CellKind {
	return c.kind
}

// Name returns the name of the variable the cell was registered for.
func (c *Cell) Name() string {
	return c.name
}

func (c *Cell) Handle() Handle {
	return c.handle
}

// Value returns the contents of the cell. A copy cell returns nil while its
// variable is unbound; a fopy cell never returns nil.
func (c *Cell) Value() Value {
	if p := c.contents.Load(); p != nil {
		return p.v
	}
	return nil
}

// Procedure returns the contents of a fopy cell.
func (c *Cell) Procedure() Procedure {
	p, _ := Callable(c.Value())
	return p
}

// Call invokes the procedure held by a fopy cell.
func (c *Cell) Call(args ...Value) (Value, error) {
	p, ok := Callable(c.Value())
	if !ok {
		return nil, &Error{Kind: NotAFunction, Handle: c.handle, Name: c.name}
	}
	return p.Apply(Vector(args))
}

// store publishes the cell contents derived from the variable's value v.
func (c *Cell) store(v Value) {
	if c.kind == Fopy {
		switch p, ok := Callable(v); {
		case v == nil:
			v = c.unbound
		case ok:
			v = p
		default:
			v = c.notFunction
		}
	}
	c.contents.Store(&cellContents{v: v})
}

// stub is the procedure held by a fopy cell whose variable is not callable.
type stub struct {
	err *Error
}

func (s *stub) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "<%s: %v>", s.err.Name, s.err.Kind)
	return err
}

func (s *stub) Apply(Vector) (Value, error) {
	return nil, s.err
}

// RegisterCopy registers a copy cell for the variable called name.
func (g *Globals) RegisterCopy(name string) *Cell {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.register(g.intern(name), Copy)
}

// RegisterFopy registers a fopy cell for the variable called name.
func (g *Globals) RegisterFopy(name string) *Cell {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.register(g.intern(name), Fopy)
}

// RegisterCopyHandle registers a copy cell for h.
func (g *Globals) RegisterCopyHandle(h Handle) (*Cell, error) {
	return g.registerHandle(h, Copy)
}

// RegisterFopyHandle registers a fopy cell for h.
func (g *Globals) RegisterFopyHandle(h Handle) (*Cell, error) {
	return g.registerHandle(h, Fopy)
}

func (g *Globals) registerHandle(h Handle, kind CellKind) (*Cell, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.issued(h) {
		return nil, &Error{Kind: InvalidHandle, Handle: h}
	}
	return g.register(h, kind), nil
}

// register appends a new cell for h and synchronizes it. The caller must hold
// g.mu.
func (g *Globals) register(h Handle, kind CellKind) *Cell {
	name := g.names[h]
	c := &Cell{kind: kind, name: name, handle: h}
	if kind == Fopy {
		c.unbound = &stub{err: &Error{Kind: UnboundVariable, Handle: h, Name: name}}
		c.notFunction = &stub{err: &Error{Kind: NotAFunction, Handle: h, Name: name}}
	}

	g.cells = append(g.cells, c)
	g.byHandle[h] = append(g.byHandle[h], c)
	c.store(g.slots[h].value)

	g.log.Debug("registered cell", slog.String("name", name), slog.String("kind", kind.String()))
	return c
}

// propagate stores v into every cell registered for h. The caller must hold
// g.mu.
func (g *Globals) propagate(h Handle, v Value) {
	for _, c := range g.byHandle[h] {
		c.store(v)
	}
}

// Cells returns the registered cells in registration order.
func (g *Globals) Cells() []*Cell {
	g.mu.Lock()
	defer g.mu.Unlock()

	cells := make([]*Cell, len(g.cells))
	copy(cells, g.cells)
	return cells
}
