package gvars

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModule owns a copy of "X" and a fopy of "F", the way a kernel module
// caches the globals it calls into.
type testModule struct {
	x, f *Cell

	inc *Builtin
}

func (m *testModule) Name() string {
	return "test"
}

func (m *testModule) InitKernel(g *Globals) error {
	m.inc = NewBuiltin("inc", func(args Vector) (Value, error) {
		x, _ := args[0].(Number).Int()
		return NewInt(x + 1), nil
	})
	g.RegisterBuiltin(m.inc)

	m.x = g.RegisterCopy("X")
	m.f = g.RegisterFopy("F")
	return nil
}

func (m *testModule) InitLibrary(g *Globals) error {
	if err := g.AssignUnsafe(g.Intern("F"), m.inc); err != nil {
		return err
	}
	return g.MakeReadOnly(g.Intern("F"))
}

func TestExternalize(t *testing.T) {
	m := &testModule{}
	g, err := Init([]Module{m})
	require.NoError(t, err)

	assert.Equal(t, Table{{Name: "X", Kind: Copy}, {Name: "F", Kind: Fopy}}, g.Externalize())
}

func TestSnapshotRequiresStrip(t *testing.T) {
	g := New()
	_, err := g.Snapshot()
	assert.ErrorIs(t, err, ErrNotStripped)

	t1 := g.Strip()
	_, err = g.Snapshot()
	assert.NoError(t, err)

	g.Restore(t1)
	_, err = g.Snapshot()
	assert.ErrorIs(t, err, ErrNotStripped)
}

func TestStripRestore(t *testing.T) {
	m := &testModule{}
	g, err := Init([]Module{m})
	require.NoError(t, err)
	require.NoError(t, g.AssignName("X", NewInt(7)))

	table := g.Strip()
	assert.Len(t, table, 2)

	// cells are still live while stripped
	require.NoError(t, g.AssignName("X", NewInt(8)))
	assert.True(t, Equal(NewInt(8), m.x.Value()))

	assert.Empty(t, g.Restore(table))
	assert.Empty(t, g.Restore(table))
	assert.Len(t, g.Cells(), 2)

	// restoring twice must not duplicate propagation targets
	h, _ := g.Peek("X")
	g.mu.Lock()
	assert.Len(t, g.byHandle[h], 1)
	g.mu.Unlock()

	require.NoError(t, g.AssignName("X", NewInt(9)))
	assert.True(t, Equal(NewInt(9), m.x.Value()))
}

func TestSaveLoad(t *testing.T) {
	m := &testModule{}
	g, err := Init([]Module{m})
	require.NoError(t, err)

	require.NoError(t, g.AssignName("X", Vector{NewInt(1), String("two"), Symbol("three"), Boolean(false)}))
	require.NoError(t, g.AssignName("unrelated", NewFloat(0.5)))
	lazy := g.Intern("lazy")
	require.NoError(t, g.InstallAutomatic(lazy, m.inc, NewInt(1)))

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	// the saved namespace keeps working
	require.NoError(t, g.AssignName("X", NewInt(0)))
	assert.True(t, Equal(NewInt(0), m.x.Value()))

	// a reload re-runs the module's kernel initialization, which creates new
	// cells in the new namespace
	reloaded := &testModule{}
	g2, err := Load(&buf, []Module{reloaded})
	require.NoError(t, err)
	assert.NotSame(t, m.x, reloaded.x)

	assert.True(t, Equal(Vector{NewInt(1), String("two"), Symbol("three"), Boolean(false)}, reloaded.x.Value()))
	v, err := reloaded.f.Call(NewInt(41))
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(42), v))

	f, _ := g2.Peek("F")
	ro, err := g2.IsReadOnly(f)
	require.NoError(t, err)
	assert.True(t, ro)

	u, err := g2.AutoValueOf("unrelated")
	require.NoError(t, err)
	assert.True(t, Equal(NewFloat(0.5), u))

	h, ok := g2.Peek("lazy")
	require.True(t, ok)
	auto, err := g2.IsAutomatic(h)
	require.NoError(t, err)
	assert.True(t, auto)

	// restoring again is a no-op on the registration count
	before := len(g2.Cells())
	assert.Empty(t, g2.Restore(g2.Externalize()))
	assert.Equal(t, before, len(g2.Cells()))

	require.NoError(t, g2.AssignName("X", String("new")))
	assert.Equal(t, String("new"), reloaded.x.Value())
}

func TestLoadReportsMissingCells(t *testing.T) {
	m := &testModule{}
	g, err := Init([]Module{m})
	require.NoError(t, err)
	g.RegisterCopy("extra")

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	g2 := New()
	g2.RegisterBuiltin(m.inc)
	snap := decodeSnapshot(t, &buf)
	missing, err := g2.LoadSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, Table{{Name: "X", Kind: Copy}, {Name: "F", Kind: Fopy}, {Name: "extra", Kind: Copy}}, missing)

	// names from the table are interned even without cells
	_, ok := g2.Peek("extra")
	assert.True(t, ok)
}

func TestSaveUnencodableValue(t *testing.T) {
	g := New()
	require.NoError(t, g.AssignName("f", ProcedureFunc(func(Vector) (Value, error) { return nil, nil })))

	var buf bytes.Buffer
	assert.Error(t, g.Save(&buf))

	// a failed save still restores the registry
	_, err := g.Snapshot()
	assert.ErrorIs(t, err, ErrNotStripped)
}

func TestLoadUnknownBuiltin(t *testing.T) {
	m := &testModule{}
	g, err := Init([]Module{m})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	_, err = Load(&buf, nil)
	assert.ErrorContains(t, err, `unknown builtin "inc"`)
}

func decodeSnapshot(t *testing.T, r io.Reader) *Snapshot {
	var snap Snapshot
	require.NoError(t, json.NewDecoder(r).Decode(&snap))
	return &snap
}

func TestLoadSnapshotIsAtomic(t *testing.T) {
	g := New()
	a := g.RegisterCopy("A")
	require.NoError(t, g.AssignName("A", NewInt(1)))

	snap := &Snapshot{
		Variables: []VariableRecord{
			{Name: "A", Value: &EncodedValue{Type: "number", Text: "2"}},
			{Name: "B", Value: &EncodedValue{Type: "bogus"}},
		},
		Cells: Table{{Name: "A", Kind: Copy}},
	}
	_, err := g.LoadSnapshot(snap)
	assert.EqualError(t, err, `loading B: unknown value type "bogus"`)

	v, err := g.AutoValueOf("A")
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(1), v))
	assert.True(t, Equal(NewInt(1), a.Value()))
	_, ok := g.Peek("B")
	assert.False(t, ok)

	// a good snapshot updates the variable and its cell together
	snap.Variables = snap.Variables[:1]
	missing, err := g.LoadSnapshot(snap)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.True(t, Equal(NewInt(2), a.Value()))
}
