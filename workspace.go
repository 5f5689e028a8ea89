package gvars

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Entry is the process-independent form of a cell registration.
type Entry struct {
	Name string   `json:"name"`
	Kind CellKind `json:"kind"`
}

// Table is the externalized form of the copy/fopy registry.
type Table []Entry

// ErrNotStripped is returned by Snapshot when the registry has not been
// stripped.
var ErrNotStripped = errors.New("gvars: registry must be stripped before a snapshot")

// Externalize returns the registry as a list of names and kinds, in
// registration order.
func (g *Globals) Externalize() Table {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.externalize()
}

func (g *Globals) externalize() Table {
	t := make(Table, 0, len(g.cells))
	for _, c := range g.cells {
		t = append(t, Entry{Name: c.name, Kind: c.kind})
	}
	return t
}

// Strip externalizes the registry and withdraws it from snapshots until the
// next Restore. Cells keep receiving assignments while the registry is
// stripped.
func (g *Globals) Strip() Table {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stripped, g.table = true, g.externalize()
	return g.table
}

// Restore re-establishes the registry after a Strip or a workspace load. The
// cells themselves are re-created by the modules that own them; Restore
// re-resolves every name in t, rebuilds the per-variable index from the live
// cells and synchronizes every live cell with the current value of its
// variable. Restore returns the entries of t that no live cell matches.
//
// Restore is idempotent: it never adds registrations.
func (g *Globals) Restore(t Table) (missing Table) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.restore(t)
}

// restore is Restore with g.mu held.
func (g *Globals) restore(t Table) (missing Table) {
	byHandle := make(map[Handle][]*Cell, len(g.byHandle))
	live := map[Entry]bool{}
	for _, c := range g.cells {
		h := g.intern(c.name)
		byHandle[h] = append(byHandle[h], c)
		c.store(g.slots[h].value)
		live[Entry{Name: c.name, Kind: c.kind}] = true
	}
	g.byHandle = byHandle

	for _, e := range t {
		g.intern(e.Name)
		if !live[e] {
			g.log.Warn("no cell registered for workspace entry",
				slog.String("name", e.Name),
				slog.String("kind", e.Kind.String()))
			missing = append(missing, e)
		}
	}

	g.stripped, g.table = false, nil
	g.log.Debug("restored cell registry", slog.Int("cells", len(g.cells)), slog.Int("entries", len(t)))
	return missing
}

// Snapshot is the persisted form of a namespace.
type Snapshot struct {
	Variables []VariableRecord `json:"variables"`
	Cells     Table            `json:"cells"`
}

// VariableRecord is the persisted form of one variable.
type VariableRecord struct {
	Name      string           `json:"name"`
	ReadOnly  bool             `json:"readOnly,omitempty"`
	Value     *EncodedValue    `json:"value,omitempty"`
	Automatic *AutomaticRecord `json:"automatic,omitempty"`
}

// AutomaticRecord is the persisted form of an automatic descriptor.
type AutomaticRecord struct {
	Evaluator EncodedValue `json:"evaluator"`
	Argument  EncodedValue `json:"argument"`
}

// Snapshot captures every variable of a stripped namespace along with the
// table returned by Strip.
func (g *Globals) Snapshot() (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.stripped {
		return nil, ErrNotStripped
	}

	snap := &Snapshot{Cells: g.table}
	for h := 1; h < len(g.names); h++ {
		s := &g.slots[h]
		rec := VariableRecord{Name: g.names[h], ReadOnly: s.readOnly}
		if s.value != nil {
			v, err := EncodeValue(s.value)
			if err != nil {
				return nil, fmt.Errorf("saving %s: %w", g.names[h], err)
			}
			rec.Value = &v
		}
		if s.auto != nil {
			evaluator, err := EncodeValue(s.auto.evaluator)
			if err != nil {
				return nil, fmt.Errorf("saving evaluator of %s: %w", g.names[h], err)
			}
			argument, err := EncodeValue(s.auto.argument)
			if err != nil {
				return nil, fmt.Errorf("saving argument of %s: %w", g.names[h], err)
			}
			rec.Automatic = &AutomaticRecord{Evaluator: evaluator, Argument: argument}
		}
		snap.Variables = append(snap.Variables, rec)
	}
	return snap, nil
}

// LoadSnapshot replaces the variables named in snap with their saved state
// and then restores the registry from snap.Cells. Every record is decoded
// before any variable changes, so a snapshot that fails to decode leaves g
// untouched. Saved values are written directly, as a raw image would be,
// without propagation; the variables and the cells are updated in the same
// critical section.
func (g *Globals) LoadSnapshot(snap *Snapshot) (missing Table, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	staged, err := g.decodeVariables(snap.Variables)
	if err != nil {
		return nil, err
	}
	for i, rec := range snap.Variables {
		h := g.intern(rec.Name)
		g.slots[h] = staged[i]
	}
	return g.restore(snap.Cells), nil
}

// decodeVariables decodes records into slots without touching g. The caller
// must hold g.mu.
func (g *Globals) decodeVariables(records []VariableRecord) ([]slot, error) {
	staged := make([]slot, len(records))
	for i, rec := range records {
		s := &staged[i]
		s.readOnly = rec.ReadOnly
		if rec.Value != nil {
			v, err := g.decodeValue(*rec.Value)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", rec.Name, err)
			}
			s.value = v
		}
		if rec.Automatic != nil {
			evaluator, err := g.decodeValue(rec.Automatic.Evaluator)
			if err != nil {
				return nil, fmt.Errorf("loading evaluator of %s: %w", rec.Name, err)
			}
			p, ok := Callable(evaluator)
			if !ok {
				return nil, fmt.Errorf("loading evaluator of %s: not a procedure", rec.Name)
			}
			argument, err := g.decodeValue(rec.Automatic.Argument)
			if err != nil {
				return nil, fmt.Errorf("loading argument of %s: %w", rec.Name, err)
			}
			s.auto = &automatic{evaluator: p, argument: argument}
		}
	}
	return staged, nil
}

// Save writes a snapshot of g to w. The registry is stripped for the duration
// of the save and restored afterwards.
func (g *Globals) Save(w io.Writer) error {
	t := g.Strip()
	defer g.Restore(t)

	snap, err := g.Snapshot()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("writing workspace: %w", err)
	}
	return nil
}

// Load reads a workspace written by Save into a fresh namespace. The kernel
// parts of mods are initialized first so that they re-create their cells;
// their library parts are not run, since the workspace already holds the
// values they would assign.
func Load(r io.Reader, mods []Module, opts ...Option) (*Globals, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("reading workspace: %w", err)
	}

	g := New(opts...)
	if err := g.initKernel(mods); err != nil {
		return nil, err
	}
	if _, err := g.LoadSnapshot(&snap); err != nil {
		return nil, err
	}
	return g, nil
}
