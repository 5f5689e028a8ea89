package builtins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pgavlin/gvars"
)

func BooleanPred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := args[0].(gvars.Boolean)
	return gvars.Boolean(ok), nil
}

func BooleanNot(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("not expects 1 argument")
	}
	test, ok := args[0].(gvars.Boolean)
	return gvars.Boolean(ok && !bool(test)), nil
}

func Equal(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 2 {
		return nil, errors.New("equal? expects 2 arguments")
	}
	return gvars.Boolean(gvars.Equal(args[0], args[1])), nil
}

func SymbolPred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := args[0].(gvars.Symbol)
	return gvars.Boolean(ok), nil
}

func SymbolToString(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("symbol->string expects one argument")
	}
	sym, ok := args[0].(gvars.Symbol)
	if !ok {
		return nil, errors.New("symbol->string expects a symbol")
	}
	return gvars.String(sym), nil
}

func StringToSymbol(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("string->symbol expects one argument")
	}
	str, ok := args[0].(gvars.String)
	if !ok {
		return nil, errors.New("string->symbol expects a string")
	}
	return gvars.Symbol(str), nil
}

func StringPred(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return gvars.Boolean(false), nil
	}
	_, ok := args[0].(gvars.String)
	return gvars.Boolean(ok), nil
}

func StringLength(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("string-length expects 1 argument")
	}
	v, ok := args[0].(gvars.String)
	if !ok {
		return nil, errors.New("the argument to string-length must be a string")
	}
	return gvars.NewInt(int64(len(v))), nil
}

func StringAppend(args gvars.Vector) (gvars.Value, error) {
	var b strings.Builder
	for _, v := range args {
		s, ok := v.(gvars.String)
		if !ok {
			return nil, errors.New("arguments to string-append must be strings")
		}
		b.WriteString(string(s))
	}
	return gvars.String(b.String()), nil
}

// index converts the argument at position i to an integer.
func index(op string, args gvars.Vector, i int) (int64, error) {
	ordinal := [...]string{"first", "second", "third"}[i]
	n, ok := args[i].(gvars.Number)
	if !ok {
		return 0, fmt.Errorf("the %s argument to %s must be an integer", ordinal, op)
	}
	x, ok := n.Int()
	if !ok {
		return 0, fmt.Errorf("the %s argument to %s must be an integer", ordinal, op)
	}
	return x, nil
}

func StringSubstring(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 3 {
		return nil, errors.New("substring expects three arguments")
	}

	s, ok := args[0].(gvars.String)
	if !ok {
		return nil, errors.New("the first argument to substring must be a string")
	}
	start, err := index("substring", args, 1)
	if err != nil {
		return nil, err
	}
	end, err := index("substring", args, 2)
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start || end > int64(len(s)) {
		return nil, fmt.Errorf("[%v:%v] is out of range for a string of length %v", start, end, len(s))
	}
	return s[start:end], nil
}

// stringArgs checks that args holds exactly n strings.
func stringArgs(op string, args gvars.Vector, n int) ([]string, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s expects %d arguments", op, n)
	}
	ss := make([]string, n)
	for i, v := range args {
		s, ok := v.(gvars.String)
		if !ok {
			ordinal := [...]string{"first", "second", "third"}[i]
			return nil, fmt.Errorf("the %s argument to %s must be a string", ordinal, op)
		}
		ss[i] = string(s)
	}
	return ss, nil
}

func StringTrimSuffix(args gvars.Vector) (gvars.Value, error) {
	ss, err := stringArgs("string-trim-suffix", args, 2)
	if err != nil {
		return nil, err
	}
	return gvars.String(strings.TrimSuffix(ss[0], ss[1])), nil
}

func StringContains(args gvars.Vector) (gvars.Value, error) {
	ss, err := stringArgs("string-contains", args, 2)
	if err != nil {
		return nil, err
	}
	return gvars.Boolean(strings.Contains(ss[0], ss[1])), nil
}

func StringReplace(args gvars.Vector) (gvars.Value, error) {
	ss, err := stringArgs("string-replace", args, 3)
	if err != nil {
		return nil, err
	}
	return gvars.String(strings.ReplaceAll(ss[0], ss[1], ss[2])), nil
}

func Repr(args gvars.Vector) (gvars.Value, error) {
	if len(args) != 1 {
		return nil, errors.New("repr expects 1 argument")
	}
	return gvars.String(gvars.EncodeToString(args[0])), nil
}
