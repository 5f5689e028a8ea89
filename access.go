package gvars

import "log/slog"

// Value returns the value of h, or nil if h is unbound. Value never calls the
// evaluator of an automatic variable.
func (g *Globals) Value(h Handle) (Value, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return nil, err
	}
	return s.value, nil
}

// AutoValue returns the value of h. If h is unbound and automatic, its
// evaluator is called first; the evaluator must assign h, otherwise AutoValue
// fails with UnboundVariable. Errors returned by the evaluator are returned
// unchanged.
//
// The evaluator runs without any lock held and may read and assign globals,
// including h. A nested AutoValue of h made while its evaluator is running
// fails with UnboundVariable. So does an AutoValue of h from another goroutine
// while the evaluator runs; callers that resolve the same automatic variable
// concurrently must retry or serialize.
func (g *Globals) AutoValue(h Handle) (Value, error) {
	g.mu.Lock()
	s, err := g.slot(h)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	if s.value != nil {
		v := s.value
		g.mu.Unlock()
		return v, nil
	}
	if s.auto == nil || s.evaluating > 0 {
		err := g.newError(UnboundVariable, h)
		g.mu.Unlock()
		return nil, err
	}
	auto, name := *s.auto, g.names[h]
	s.evaluating++
	g.mu.Unlock()

	g.log.Debug("evaluating automatic variable", slog.String("name", name))
	return g.evaluate(h, auto)
}

func (g *Globals) evaluate(h Handle, auto automatic) (v Value, err error) {
	defer func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		s := &g.slots[h]
		s.evaluating--
		if err != nil {
			return
		}
		if s.value == nil {
			err = g.newError(UnboundVariable, h)
			return
		}
		v = s.value
	}()

	_, err = auto.evaluator.Apply(Vector{auto.argument})
	return nil, err
}

// AutoValueOf interns name and returns its value as AutoValue does.
func (g *Globals) AutoValueOf(name string) (Value, error) {
	return g.AutoValue(g.Intern(name))
}

// Assign sets the value of h and propagates it to every cell registered for
// h. Assign fails with ReadOnlyVariable if h is read-only.
func (g *Globals) Assign(h Handle, v Value) error {
	return g.assign(h, v, true)
}

// AssignUnsafe is like Assign but ignores the read-only flag. It is meant for
// kernel bootstrap code that installs the initial bindings.
func (g *Globals) AssignUnsafe(h Handle, v Value) error {
	return g.assign(h, v, false)
}

// AssignName interns name and assigns v to it as Assign does.
func (g *Globals) AssignName(name string, v Value) error {
	return g.Assign(g.Intern(name), v)
}

func (g *Globals) assign(h Handle, v Value, checked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return err
	}
	if v == nil {
		return g.newError(InvalidValue, h)
	}
	if checked && s.readOnly {
		return g.newError(ReadOnlyVariable, h)
	}

	s.value = v
	g.propagate(h, v)
	return nil
}

// MakeReadOnly makes checked assignments to h fail.
func (g *Globals) MakeReadOnly(h Handle) error {
	return g.setReadOnly(h, true)
}

// MakeReadWrite allows checked assignments to h.
func (g *Globals) MakeReadWrite(h Handle) error {
	return g.setReadOnly(h, false)
}

func (g *Globals) setReadOnly(h Handle, readOnly bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return err
	}
	s.readOnly = readOnly
	return nil
}
