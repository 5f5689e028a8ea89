package gvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyCell(t *testing.T) {
	g := New()
	h := g.Intern("x")

	cell := g.RegisterCopy("x")
	assert.Equal(t, Copy, cell.Kind())
	assert.Equal(t, "x", cell.Name())
	assert.Equal(t, h, cell.Handle())
	assert.Nil(t, cell.Value())

	require.NoError(t, g.Assign(h, NewInt(1)))
	require.NoError(t, g.Assign(h, NewInt(2)))
	assert.True(t, Equal(NewInt(2), cell.Value()))
}

func TestCopyCellInitializedAtRegistration(t *testing.T) {
	g := New()
	require.NoError(t, g.AssignName("x", String("hello")))

	cell := g.RegisterCopy("x")
	assert.Equal(t, String("hello"), cell.Value())

	// several cells may share a variable
	other, err := g.RegisterCopyHandle(cell.Handle())
	require.NoError(t, err)
	require.NoError(t, g.AssignName("x", String("bye")))
	assert.Equal(t, String("bye"), cell.Value())
	assert.Equal(t, String("bye"), other.Value())
}

func TestCopyCellUnsafeAssign(t *testing.T) {
	g := New()
	h := g.Intern("x")
	require.NoError(t, g.MakeReadOnly(h))
	cell := g.RegisterCopy("x")

	require.NoError(t, g.AssignUnsafe(h, Boolean(true)))
	assert.Equal(t, Boolean(true), cell.Value())
}

func TestFopyCell(t *testing.T) {
	g := New()
	h := g.Intern("f")

	cell := g.RegisterFopy("f")
	assert.Equal(t, Fopy, cell.Kind())

	_, err := cell.Call()
	assert.ErrorIs(t, err, UnboundVariable)

	require.NoError(t, g.Assign(h, NewInt(1)))
	_, err = cell.Call()
	assert.ErrorIs(t, err, NotAFunction)
	_, err = cell.Procedure().Apply(nil)
	assert.ErrorIs(t, err, NotAFunction)

	double := NewBuiltin("double", func(args Vector) (Value, error) {
		n := args[0].(Number)
		x, _ := n.Int()
		return NewInt(2 * x), nil
	})
	require.NoError(t, g.Assign(h, double))
	assert.Equal(t, Procedure(double), cell.Procedure())

	v, err := cell.Call(NewInt(21))
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(42), v))
}

func TestFopyStubNamesVariable(t *testing.T) {
	g := New()
	cell := g.RegisterFopy("Print")

	_, err := cell.Call()
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Print", gerr.Name)
	assert.Equal(t, "Print: variable must have an assigned value", err.Error())
}

func TestPropagationOnSameValue(t *testing.T) {
	g := New()
	h := g.Intern("x")
	v := String("same")
	require.NoError(t, g.Assign(h, v))

	cell := g.RegisterCopy("x")
	require.NoError(t, g.Assign(h, v))
	assert.Equal(t, v, cell.Value())
}

func TestPropagationOnlyTouchesHandle(t *testing.T) {
	g := New()
	x := g.RegisterCopy("x")
	y := g.RegisterFopy("y")

	require.NoError(t, g.AssignName("x", NewInt(1)))
	_, err := y.Call()
	assert.ErrorIs(t, err, UnboundVariable)
	assert.True(t, Equal(NewInt(1), x.Value()))
}

func TestAutomaticPropagates(t *testing.T) {
	g := New()
	h := g.Intern("lazy")
	cell := g.RegisterCopy("lazy")

	require.NoError(t, g.InstallAutomatic(h, ProcedureFunc(func(Vector) (Value, error) {
		return nil, g.Assign(h, Symbol("done"))
	}), nil))
	assert.Nil(t, cell.Value())

	_, err := g.AutoValue(h)
	require.NoError(t, err)
	assert.Equal(t, Symbol("done"), cell.Value())
}

func TestRegisterInvalidHandle(t *testing.T) {
	g := New()
	_, err := g.RegisterFopyHandle(7)
	assert.ErrorIs(t, err, InvalidHandle)
	assert.Empty(t, g.Cells())
}

func TestCells(t *testing.T) {
	g := New()
	a := g.RegisterCopy("a")
	b := g.RegisterFopy("b")
	assert.Equal(t, []*Cell{a, b}, g.Cells())
}
