package gvars

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Value is an object held by a global variable. A nil Value means "no value".
type Value interface {
	Write(w io.Writer) error
}

// Encode writes a textual representation of v to w.
func Encode(w io.Writer, v Value) error {
	if v == nil {
		_, err := w.Write([]byte("<unbound>"))
		return err
	}
	return v.Write(w)
}

// EncodeToString returns the textual representation of v.
func EncodeToString(v Value) string {
	var b strings.Builder
	Encode(&b, v)
	return b.String()
}

// Number
type Number struct {
	f *big.Float
}

func (n Number) Write(w io.Writer) error {
	text, err := n.f.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

// NewNumber wraps f. f must not be modified afterwards.
func NewNumber(f *big.Float) Number {
	return Number{f}
}

func NewInt(x int64) Number {
	var f big.Float
	f.SetInt64(x)
	return Number{&f}
}

func NewFloat(x float64) Number {
	var f big.Float
	f.SetFloat64(x)
	return Number{&f}
}

// ParseNumber parses the decimal representation of a number.
func ParseNumber(s string) (Number, error) {
	return parseNumber(s, 64)
}

func parseNumber(s string, prec uint) (Number, error) {
	f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		return Number{}, err
	}
	return Number{f}, nil
}

// Float returns the underlying arbitrary-precision value. The result must not
// be modified.
func (n Number) Float() *big.Float {
	return n.f
}

func (n Number) Int() (int64, bool) {
	x, acc := n.f.Int64()
	return x, acc == big.Exact
}

func (n Number) Float64() (float64, bool) {
	x, acc := n.f.Float64()
	return x, acc == big.Exact
}

// Boolean
type Boolean bool

func (b Boolean) Write(w io.Writer) error {
	text := "#t"
	if !b {
		text = "#f"
	}
	_, err := w.Write([]byte(text))
	return err
}

// Symbol
type Symbol string

func (s Symbol) Write(w io.Writer) error {
	_, err := w.Write([]byte("'" + string(s)))
	return err
}

// String
type String string

func (s String) Write(w io.Writer) error {
	_, err := w.Write([]byte(strconv.Quote(string(s))))
	return err
}

// Vector
type Vector []Value

func (v Vector) Write(w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	for i, e := range v {
		if i > 0 {
			if _, err := w.Write([]byte(" ")); err != nil {
				return err
			}
		}
		if err := Encode(w, e); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("]"))
	return err
}

// Procedure is a callable value.
type Procedure interface {
	Value

	Apply(args Vector) (Value, error)
}

// Callable reports whether v can be invoked.
func Callable(v Value) (Procedure, bool) {
	p, ok := v.(Procedure)
	return p, ok
}

// nilProcedure reports whether calling p would dereference a nil function.
func nilProcedure(p Procedure) bool {
	switch p := p.(type) {
	case nil:
		return true
	case ProcedureFunc:
		return p == nil
	case *Builtin:
		return p == nil || p.Fn == nil
	default:
		return false
	}
}

// ProcedureFunc adapts a Go function to a Procedure. ProcedureFuncs cannot be
// saved in a workspace; use a Builtin for procedures that must survive a
// reload.
type ProcedureFunc func(args Vector) (Value, error)

func (f ProcedureFunc) Write(w io.Writer) error {
	_, err := w.Write([]byte("<procedure>"))
	return err
}

func (f ProcedureFunc) Apply(args Vector) (Value, error) {
	return f(args)
}

// Builtin is a named kernel procedure. Builtins are saved by name and resolved
// against the handlers registered with RegisterBuiltin when a workspace is
// loaded.
type Builtin struct {
	Name string
	Fn   func(args Vector) (Value, error)
}

// NewBuiltin returns a builtin procedure.
func NewBuiltin(name string, fn func(args Vector) (Value, error)) *Builtin {
	return &Builtin{Name: name, Fn: fn}
}

func (b *Builtin) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "<builtin %s>", b.Name)
	return err
}

func (b *Builtin) Apply(args Vector) (Value, error) {
	return b.Fn(args)
}

// Equal reports whether a and b are structurally equal. Numbers compare by
// value; procedures compare by identity.
func Equal(a, b Value) bool {
	return equal(a, b, map[*Value]struct{}{})
}

func eqv(obj1, obj2 Value) bool {
	if num1, ok := obj1.(Number); ok {
		num2, ok := obj2.(Number)
		return ok && num1.f.Cmp(num2.f) == 0
	}

	switch obj1.(type) {
	case Vector, ProcedureFunc:
		return false
	}
	switch obj2.(type) {
	case Vector, ProcedureFunc:
		return false
	}
	return obj1 == obj2
}

func equal(obj1, obj2 Value, stack map[*Value]struct{}) bool {
	if eqv(obj1, obj2) {
		return true
	}

	v1, ok := obj1.(Vector)
	if !ok {
		return false
	}
	v2, ok := obj2.(Vector)
	if !ok || len(v1) != len(v2) {
		return false
	}
	if len(v1) == 0 {
		return true
	}

	// vectors can contain themselves
	if _, ok := stack[&v1[0]]; ok {
		return false
	}
	stack[&v1[0]] = struct{}{}
	defer delete(stack, &v1[0])

	for i, e := range v1 {
		if !equal(e, v2[i], stack) {
			return false
		}
	}
	return true
}
