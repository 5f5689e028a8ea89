package gvars

import "math"

// Intern returns the handle of the variable called name, creating an unbound,
// writable variable the first time a name is seen.
func (g *Globals) Intern(name string) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.intern(name)
}

// InternAll interns each of names and returns their handles in order.
func (g *Globals) InternAll(names ...string) []Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	handles := make([]Handle, 0, len(names))
	for _, name := range names {
		handles = append(handles, g.intern(name))
	}
	return handles
}

func (g *Globals) intern(name string) Handle {
	if h, ok := g.byName[name]; ok {
		return h
	}
	if len(g.names) > math.MaxUint32 {
		panic("too many global variables")
	}

	h := Handle(len(g.names))
	g.names = append(g.names, name)
	g.slots = append(g.slots, slot{})
	g.byName[name] = h
	g.index.ReplaceOrInsert(name)
	return h
}

// Peek returns the handle of name without creating it.
func (g *Globals) Peek(name string) (Handle, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, ok := g.byName[name]
	return h, ok
}

// Name returns the name of the variable identified by h.
func (g *Globals) Name(h Handle) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.issued(h) {
		return "", &Error{Kind: InvalidHandle, Handle: h}
	}
	return g.names[h], nil
}

// Len returns the number of interned names.
func (g *Globals) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.names) - 1
}

func (g *Globals) issued(h Handle) bool {
	return h != NoHandle && int(h) < len(g.names)
}

// newError builds an error for the variable h. The caller must hold g.mu.
func (g *Globals) newError(kind ErrorKind, h Handle) *Error {
	e := &Error{Kind: kind, Handle: h}
	if g.issued(h) {
		e.Name = g.names[h]
	}
	return e
}
