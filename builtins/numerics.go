package builtins

import (
	"errors"
	"math/big"

	"github.com/pgavlin/gvars"
)

func NumberPred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := args[0].(gvars.Number)
	return gvars.Boolean(ok), nil
}

// compareNumbers reports whether every adjacent pair of args satisfies ok. Any
// argument that is not a number makes the comparison false.
func compareNumbers(args gvars.Vector, ok func(cmp int) bool) (gvars.Value, error) {
	if len(args) == 0 {
		return gvars.Boolean(true), nil
	}

	n, isNumber := args[0].(gvars.Number)
	if !isNumber {
		return gvars.Boolean(false), nil
	}

	for _, v := range args[1:] {
		x, isNumber := v.(gvars.Number)
		if !isNumber || !ok(n.Float().Cmp(x.Float())) {
			return gvars.Boolean(false), nil
		}
		n = x
	}

	return gvars.Boolean(true), nil
}

func NumberEq(args gvars.Vector) (gvars.Value, error) {
	return compareNumbers(args, func(cmp int) bool { return cmp == 0 })
}

func NumberLt(args gvars.Vector) (gvars.Value, error) {
	return compareNumbers(args, func(cmp int) bool { return cmp == -1 })
}

func NumberGt(args gvars.Vector) (gvars.Value, error) {
	return compareNumbers(args, func(cmp int) bool { return cmp == 1 })
}

func NumberLte(args gvars.Vector) (gvars.Value, error) {
	return compareNumbers(args, func(cmp int) bool { return cmp != 1 })
}

func NumberGte(args gvars.Vector) (gvars.Value, error) {
	return compareNumbers(args, func(cmp int) bool { return cmp != -1 })
}

// numbers returns args as numbers, or an error naming op.
func numbers(op string, args gvars.Vector) ([]*big.Float, error) {
	if len(args) == 0 {
		return nil, errors.New(op + " expects at least 1 argument")
	}
	fs := make([]*big.Float, len(args))
	for i, v := range args {
		n, ok := v.(gvars.Number)
		if !ok {
			return nil, errors.New("arguments to " + op + " must be numbers")
		}
		fs[i] = n.Float()
	}
	return fs, nil
}

func NumberAdd(args gvars.Vector) (gvars.Value, error) {
	fs, err := numbers("+", args)
	if err != nil {
		return nil, err
	}

	var sum big.Float
	sum.Copy(fs[0])
	for _, x := range fs[1:] {
		sum.Add(&sum, x)
	}
	return gvars.NewNumber(&sum), nil
}

func NumberMul(args gvars.Vector) (gvars.Value, error) {
	fs, err := numbers("*", args)
	if err != nil {
		return nil, err
	}

	var product big.Float
	product.Copy(fs[0])
	for _, x := range fs[1:] {
		product.Mul(&product, x)
	}
	return gvars.NewNumber(&product), nil
}

func NumberSub(args gvars.Vector) (gvars.Value, error) {
	fs, err := numbers("-", args)
	if err != nil {
		return nil, err
	}

	var diff big.Float
	diff.Copy(fs[0])
	if len(fs) == 1 {
		diff.Neg(&diff)
		return gvars.NewNumber(&diff), nil
	}
	for _, x := range fs[1:] {
		diff.Sub(&diff, x)
	}
	return gvars.NewNumber(&diff), nil
}

func NumberDiv(args gvars.Vector) (gvars.Value, error) {
	fs, err := numbers("/", args)
	if err != nil {
		return nil, err
	}

	var quo big.Float
	quo.Copy(fs[0])
	if len(fs) == 1 {
		fs = []*big.Float{big.NewFloat(1), fs[0]}
		quo.Copy(fs[0])
	}
	for _, x := range fs[1:] {
		if x.Sign() == 0 {
			return nil, errors.New("division by zero")
		}
		quo.Quo(&quo, x)
	}
	return gvars.NewNumber(&quo), nil
}

func NumberTruncateQuotient(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 2 {
		return nil, errors.New("quotient expects 2 arguments")
	}

	n1, ok := args[0].(gvars.Number)
	if !ok {
		return nil, errors.New("the first argument to quotient must be a number")
	}
	n2, ok := args[1].(gvars.Number)
	if !ok {
		return nil, errors.New("the second argument to quotient must be a number")
	}
	if n2.Float().Sign() == 0 {
		return nil, errors.New("division by zero")
	}

	var quo big.Float
	quo.Quo(n1.Float(), n2.Float())
	i, _ := quo.Int(nil)
	return gvars.NewNumber(new(big.Float).SetInt(i)), nil
}
