package builtins

import (
	"errors"

	"github.com/pgavlin/gvars"
)

const (
	// ViewName is the global holding the procedure used to display values.
	ViewName = "View"
	// AssignCallName is the global holding the evaluator installed by
	// InstallAssignCall.
	AssignCallName = "assign-call"
)

// View returns the display form of its argument.
func View(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("View expects 1 argument")
	}
	return gvars.String(gvars.EncodeToString(args[0])), nil
}

// kernel holds the builtins that inspect the namespace they live in.
type kernel struct {
	g *gvars.Globals
}

func symbolArg(op string, args gvars.Vector) (string, error) {
	if len(args) != 1 {
		return "", errors.New(op + " expects 1 argument")
	}
	sym, ok := args[0].(gvars.Symbol)
	if !ok {
		return "", errors.New("the argument to " + op + " must be a symbol")
	}
	return string(sym), nil
}

// bound reports whether a global has a value, without evaluating it.
func (k kernel) bound(args gvars.Vector) (gvars.Value, error) {
	name, err := symbolArg("bound?", args)
	if err != nil {
		return nil, err
	}
	h, ok := k.g.Peek(name)
	if !ok {
		return gvars.Boolean(false), nil
	}
	v, err := k.g.Value(h)
	if err != nil {
		return nil, err
	}
	return gvars.Boolean(v != nil), nil
}

func (k kernel) readOnly(args gvars.Vector) (gvars.Value, error) {
	name, err := symbolArg("read-only?", args)
	if err != nil {
		return nil, err
	}
	ro, err := k.g.IsReadOnly(k.g.Intern(name))
	if err != nil {
		return nil, err
	}
	return gvars.Boolean(ro), nil
}

// assignCall is the evaluator of automatic variables installed by
// InstallAssignCall. Its argument is [target procedure args...]: it calls the
// global procedure with args and assigns the result to the global target.
func (k kernel) assignCall(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New(AssignCallName + " expects 1 argument")
	}
	call, ok := args[0].(gvars.Vector)
	if !ok || len(call) < 2 {
		return nil, errors.New(AssignCallName + " expects [target procedure args...]")
	}
	target, ok := call[0].(gvars.Symbol)
	if !ok {
		return nil, errors.New("the target of " + AssignCallName + " must be a symbol")
	}
	name, ok := call[1].(gvars.Symbol)
	if !ok {
		return nil, errors.New("the procedure of " + AssignCallName + " must be a symbol")
	}

	h := k.g.Intern(string(name))
	v, err := k.g.AutoValue(h)
	if err != nil {
		return nil, err
	}
	proc, ok := gvars.Callable(v)
	if !ok {
		return nil, &gvars.Error{Kind: gvars.NotAFunction, Handle: h, Name: string(name)}
	}

	result, err := proc.Apply(call[2:])
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return nil, k.g.Assign(k.g.Intern(string(target)), result)
}

// InstallAssignCall makes target an automatic variable whose value is computed
// on first use by calling the global procedure with args. The builtins module
// must have been initialized in g.
func InstallAssignCall(g *gvars.Globals, target, procedure string, args ...gvars.Value) error {
	evaluator, ok := g.Builtin(AssignCallName)
	if !ok {
		return errors.New(AssignCallName + " is not registered")
	}
	call := append(gvars.Vector{gvars.Symbol(target), gvars.Symbol(procedure)}, args...)
	return g.InstallAutomatic(g.Intern(target), evaluator, call)
}
