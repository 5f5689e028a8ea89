package gvars

import "fmt"

// Module is a part of the kernel that owns globals.
//
// InitKernel registers the module's builtins and cells. It runs for every new
// namespace, including one created by Load, and must not assign variables.
// InitLibrary assigns the module's initial bindings; it does not run when a
// workspace is loaded.
type Module interface {
	Name() string
	InitKernel(g *Globals) error
	InitLibrary(g *Globals) error
}

// Init returns a new namespace initialized by mods.
func Init(mods []Module, opts ...Option) (*Globals, error) {
	g := New(opts...)
	if err := g.initKernel(mods); err != nil {
		return nil, err
	}
	for _, m := range mods {
		if err := m.InitLibrary(g); err != nil {
			return nil, fmt.Errorf("initializing library of %s: %w", m.Name(), err)
		}
	}
	return g, nil
}

func (g *Globals) initKernel(mods []Module) error {
	for _, m := range mods {
		if err := m.InitKernel(g); err != nil {
			return fmt.Errorf("initializing kernel of %s: %w", m.Name(), err)
		}
	}
	return nil
}
