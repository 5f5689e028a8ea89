package gvars

// automatic describes how to compute the value of an automatic variable.
type automatic struct {
	evaluator Procedure
	argument  Value
}

// slot is the state of one global variable. A slot with neither a value nor
// an automatic descriptor is unbound.
type slot struct {
	value    Value
	readOnly bool
	auto     *automatic

	// number of evaluator calls in progress for this slot
	evaluating int
}

// slot returns the slot for h. The caller must hold g.mu, and the returned
// pointer is only valid until the next call to intern.
func (g *Globals) slot(h Handle) (*slot, error) {
	if !g.issued(h) {
		return nil, &Error{Kind: InvalidHandle, Handle: h}
	}
	return &g.slots[h], nil
}

// IsReadOnly reports whether checked assignments to h are rejected.
func (g *Globals) IsReadOnly(h Handle) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return false, err
	}
	return s.readOnly, nil
}

// IsAutomatic reports whether h has an automatic descriptor. The descriptor
// stays installed, dormant, after the variable has been assigned.
func (g *Globals) IsAutomatic(h Handle) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return false, err
	}
	return s.auto != nil, nil
}

// InstallAutomatic makes h an automatic variable: the first AutoValue of h
// calls evaluator with argument, and the evaluator must assign h.
//
// The first installation wins. Installing a second descriptor fails with
// AlreadyAutomatic, and installing a descriptor on a variable that already has
// a value fails with AlreadyBound. A nil evaluator, including a nil
// ProcedureFunc or a Builtin without a function, fails with InvalidValue.
func (g *Globals) InstallAutomatic(h Handle, evaluator Procedure, argument Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.slot(h)
	if err != nil {
		return err
	}
	switch {
	case nilProcedure(evaluator):
		return g.newError(InvalidValue, h)
	case s.auto != nil:
		return g.newError(AlreadyAutomatic, h)
	case s.value != nil:
		return g.newError(AlreadyBound, h)
	}

	s.auto = &automatic{evaluator: evaluator, argument: argument}
	return nil
}
