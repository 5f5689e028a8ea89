package gvars

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign(t *testing.T) {
	g := New()
	h := g.Intern("x")

	require.NoError(t, g.Assign(h, NewInt(1)))
	v, err := g.Value(h)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(1), v))

	require.NoError(t, g.AssignName("x", String("two")))
	v, err = g.AutoValue(h)
	require.NoError(t, err)
	assert.Equal(t, String("two"), v)
}

func TestAssignNil(t *testing.T) {
	g := New()
	h := g.Intern("x")
	require.NoError(t, g.Assign(h, NewInt(1)))

	err := g.Assign(h, nil)
	assert.ErrorIs(t, err, InvalidValue)

	v, _ := g.Value(h)
	assert.True(t, Equal(NewInt(1), v))
}

func TestAssignInvalidHandle(t *testing.T) {
	g := New()

	assert.ErrorIs(t, g.Assign(42, NewInt(1)), InvalidHandle)
	assert.ErrorIs(t, g.MakeReadOnly(42), InvalidHandle)
	_, err := g.Value(42)
	assert.ErrorIs(t, err, InvalidHandle)
	_, err = g.AutoValue(NoHandle)
	assert.ErrorIs(t, err, InvalidHandle)
}

func TestReadOnly(t *testing.T) {
	g := New()
	h := g.Intern("Pi")
	require.NoError(t, g.Assign(h, NewFloat(3.14)))
	require.NoError(t, g.MakeReadOnly(h))

	ro, err := g.IsReadOnly(h)
	require.NoError(t, err)
	assert.True(t, ro)

	err = g.Assign(h, NewInt(3))
	assert.ErrorIs(t, err, ReadOnlyVariable)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Pi", gerr.Name)
	assert.False(t, gerr.Kind.Internal())

	v, _ := g.Value(h)
	assert.True(t, Equal(NewFloat(3.14), v))

	// bootstrap code ignores the flag
	require.NoError(t, g.AssignUnsafe(h, NewInt(3)))
	v, _ = g.Value(h)
	assert.True(t, Equal(NewInt(3), v))

	require.NoError(t, g.MakeReadWrite(h))
	assert.NoError(t, g.Assign(h, NewInt(4)))
}

func TestAutomatic(t *testing.T) {
	g := New()
	h := g.Intern("answer")

	calls := 0
	evaluator := ProcedureFunc(func(args Vector) (Value, error) {
		calls++
		require.Len(t, args, 1)
		assert.Equal(t, Symbol("arg"), args[0])
		return nil, g.Assign(h, NewInt(42))
	})
	require.NoError(t, g.InstallAutomatic(h, evaluator, Symbol("arg")))

	// fast reads never evaluate
	v, err := g.Value(h)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, calls)

	v, err = g.AutoValue(h)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(42), v))

	v, err = g.AutoValue(h)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(42), v))
	assert.Equal(t, 1, calls)

	auto, err := g.IsAutomatic(h)
	require.NoError(t, err)
	assert.True(t, auto)
}

func TestAutomaticFailsToAssign(t *testing.T) {
	g := New()
	h := g.Intern("lazy")

	calls := 0
	evaluator := ProcedureFunc(func(Vector) (Value, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, g.InstallAutomatic(h, evaluator, nil))

	_, err := g.AutoValue(h)
	assert.ErrorIs(t, err, UnboundVariable)

	// the descriptor stays installed and is tried again
	_, err = g.AutoValue(h)
	assert.ErrorIs(t, err, UnboundVariable)
	assert.Equal(t, 2, calls)
}

func TestAutomaticEvaluatorError(t *testing.T) {
	g := New()
	h := g.Intern("broken")

	boom := errors.New("boom")
	require.NoError(t, g.InstallAutomatic(h, ProcedureFunc(func(Vector) (Value, error) {
		return nil, boom
	}), nil))

	_, err := g.AutoValue(h)
	assert.Equal(t, boom, err)
}

func TestAutomaticReentrant(t *testing.T) {
	g := New()
	a, b := g.Intern("a"), g.Intern("b")

	// b depends on a; a's evaluator reads itself before assigning
	require.NoError(t, g.InstallAutomatic(a, ProcedureFunc(func(Vector) (Value, error) {
		_, err := g.AutoValue(a)
		assert.ErrorIs(t, err, UnboundVariable)
		return nil, g.Assign(a, NewInt(1))
	}), nil))
	require.NoError(t, g.InstallAutomatic(b, ProcedureFunc(func(Vector) (Value, error) {
		x, err := g.AutoValue(a)
		if err != nil {
			return nil, err
		}
		if err := g.Assign(b, Vector{x, x}); err != nil {
			return nil, err
		}
		// reading b again after the assignment sees the new value
		v, err := g.AutoValue(b)
		assert.NoError(t, err)
		assert.NotNil(t, v)
		return nil, nil
	}), nil))

	v, err := g.AutoValue(b)
	require.NoError(t, err)
	assert.True(t, Equal(Vector{NewInt(1), NewInt(1)}, v))
}

func TestInstallAutomaticConflicts(t *testing.T) {
	g := New()
	noop := ProcedureFunc(func(Vector) (Value, error) { return nil, nil })

	bound := g.Intern("bound")
	require.NoError(t, g.Assign(bound, NewInt(1)))
	err := g.InstallAutomatic(bound, noop, nil)
	assert.ErrorIs(t, err, AlreadyBound)
	assert.True(t, AlreadyBound.Internal())

	auto := g.Intern("auto")
	require.NoError(t, g.InstallAutomatic(auto, noop, nil))
	assert.ErrorIs(t, g.InstallAutomatic(auto, noop, nil), AlreadyAutomatic)

	assert.ErrorIs(t, g.InstallAutomatic(g.Intern("nil"), nil, nil), InvalidValue)
	assert.ErrorIs(t, g.InstallAutomatic(g.Intern("nil"), ProcedureFunc(nil), nil), InvalidValue)
	assert.ErrorIs(t, g.InstallAutomatic(g.Intern("nil"), (*Builtin)(nil), nil), InvalidValue)
	assert.ErrorIs(t, g.InstallAutomatic(g.Intern("nil"), NewBuiltin("empty", nil), nil), InvalidValue)
	automatic, err := g.IsAutomatic(g.Intern("nil"))
	require.NoError(t, err)
	assert.False(t, automatic)
}

func TestAutomaticConcurrentResolution(t *testing.T) {
	g := New()
	h := g.Intern("slow")

	entered, release := make(chan struct{}), make(chan struct{})
	evaluator := ProcedureFunc(func(Vector) (Value, error) {
		close(entered)
		<-release
		return nil, g.Assign(h, NewInt(42))
	})
	require.NoError(t, g.InstallAutomatic(h, evaluator, nil))

	done := make(chan error)
	go func() {
		_, err := g.AutoValue(h)
		done <- err
	}()
	<-entered

	// a resolution of the same variable overlapping the evaluator does not wait
	_, err := g.AutoValue(h)
	assert.ErrorIs(t, err, UnboundVariable)

	close(release)
	require.NoError(t, <-done)
	v, err := g.AutoValue(h)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(42), v))
}

func TestAutomaticDormantAfterAssign(t *testing.T) {
	g := New()
	h := g.Intern("x")

	calls := 0
	require.NoError(t, g.InstallAutomatic(h, ProcedureFunc(func(Vector) (Value, error) {
		calls++
		return nil, g.Assign(h, NewInt(1))
	}), nil))
	require.NoError(t, g.Assign(h, NewInt(2)))

	v, err := g.AutoValue(h)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(2), v))
	assert.Equal(t, 0, calls)
}

func TestConcurrentAssign(t *testing.T) {
	g := New()
	h := g.Intern("counter")
	cell := g.RegisterCopy("counter")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, g.Assign(h, NewInt(int64(i))))
				assert.NotNil(t, cell.Value())
			}
		}(i)
	}
	wg.Wait()

	v, err := g.Value(h)
	require.NoError(t, err)
	assert.True(t, Equal(v, cell.Value()))
}
