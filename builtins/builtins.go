// Package builtins provides the procedures every namespace starts with.
package builtins

import (
	"sort"

	"github.com/pgavlin/gvars"
)

type procedureFunc = func(args gvars.Vector) (gvars.Value, error)

var procedures = map[string]procedureFunc{
	// equality
	"equal?": Equal,

	// numerics
	"number?":  NumberPred,
	"=":        NumberEq,
	"<":        NumberLt,
	">":        NumberGt,
	"<=":       NumberLte,
	">=":       NumberGte,
	"+":        NumberAdd,
	"*":        NumberMul,
	"-":        NumberSub,
	"/":        NumberDiv,
	"quotient": NumberTruncateQuotient,

	// booleans
	"boolean?": BooleanPred,
	"not":      BooleanNot,

	// symbols
	"symbol?":        SymbolPred,
	"symbol->string": SymbolToString,
	"string->symbol": StringToSymbol,

	// strings
	"string?":            StringPred,
	"string-length":      StringLength,
	"string-append":      StringAppend,
	"substring":          StringSubstring,
	"string-contains":    StringContains,
	"string-replace":     StringReplace,
	"string-trim-suffix": StringTrimSuffix,

	// vectors
	"vector?":       VectorPred,
	"vector":        VectorConstructor,
	"vector-ref":    VectorRef,
	"vector-length": VectorLength,
	"vector-append": VectorAppend,

	// control
	"procedure?": ProcedurePred,
	"apply":      ProcedureApply,

	// extras
	"repr": Repr,
}

// Module installs the builtin procedures as read-only globals. The procedures
// that inspect the namespace itself are created per namespace.
type Module struct {
	// names of the read-only builtins, sorted
	names []string
	// builtins bound read-write so that users can replace them
	overridable []*gvars.Builtin
}

// New returns the builtins module.
func New() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "builtins"
}

func (m *Module) InitKernel(g *gvars.Globals) error {
	m.names = m.names[:0]
	for name, fn := range procedures {
		g.RegisterBuiltin(gvars.NewBuiltin(name, fn))
		m.names = append(m.names, name)
	}

	k := kernel{g: g}
	for name, fn := range map[string]procedureFunc{
		"bound?":       k.bound,
		"read-only?":   k.readOnly,
		AssignCallName: k.assignCall,
	} {
		g.RegisterBuiltin(gvars.NewBuiltin(name, fn))
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)

	view := gvars.NewBuiltin(ViewName, View)
	g.RegisterBuiltin(view)
	m.overridable = []*gvars.Builtin{view}
	return nil
}

func (m *Module) InitLibrary(g *gvars.Globals) error {
	for _, name := range m.names {
		b, _ := g.Builtin(name)
		h := g.Intern(name)
		if err := g.AssignUnsafe(h, b); err != nil {
			return err
		}
		if err := g.MakeReadOnly(h); err != nil {
			return err
		}
	}
	for _, b := range m.overridable {
		if err := g.AssignUnsafe(g.Intern(b.Name), b); err != nil {
			return err
		}
	}
	return nil
}
