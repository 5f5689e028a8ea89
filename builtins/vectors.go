package builtins

import (
	"errors"
	"fmt"

	"github.com/pgavlin/gvars"
)

func VectorPred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := args[0].(gvars.Vector)
	return gvars.Boolean(ok), nil
}

func VectorConstructor(args gvars.Vector) (gvars.Value, error) {
	v := make(gvars.Vector, len(args))
	copy(v, args)
	return v, nil
}

func VectorRef(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 2 {
		return nil, errors.New("vector-ref expects 2 arguments")
	}

	v, ok := args[0].(gvars.Vector)
	if !ok {
		return nil, errors.New("the first argument to vector-ref must be a vector")
	}
	i, err := index("vector-ref", args, 1)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= int64(len(v)) {
		return nil, fmt.Errorf("%v is not a member of a vector of length %v", i, len(v))
	}
	return v[i], nil
}

func VectorLength(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("vector-length expects 1 argument")
	}
	v, ok := args[0].(gvars.Vector)
	if !ok {
		return nil, errors.New("the argument to vector-length must be a vector")
	}
	return gvars.NewInt(int64(len(v))), nil
}

func VectorAppend(args gvars.Vector) (gvars.Value, error) {
	result := gvars.Vector{}
	for _, a := range args {
		v, ok := a.(gvars.Vector)
		if !ok {
			return nil, errors.New("arguments to vector-append must be vectors")
		}
		result = append(result, v...)
	}
	return result, nil
}

func ProcedurePred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := gvars.Callable(args[0])
	return gvars.Boolean(ok), nil
}

// ProcedureApply calls its first argument with the remaining arguments; the
// last argument must be a vector and is spread.
func ProcedureApply(args gvars.Vector) (gvars.Value, error) {
	if len(args) < 1 {
		return nil, errors.New("apply expects at least one argument")
	}
	proc, ok := gvars.Callable(args[0])
	if !ok {
		return nil, errors.New("the first argument to apply must be a procedure")
	}

	var actuals gvars.Vector
	if len(args) > 1 {
		rest, ok := args[len(args)-1].(gvars.Vector)
		if !ok {
			return nil, errors.New("the last argument to apply must be a vector")
		}
		actuals = append(actuals, args[1:len(args)-1]...)
		actuals = append(actuals, rest...)
	}

	return proc.Apply(actuals)
}
