// Package repl implements the interactive front end of a namespace.
package repl

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pgavlin/gvars"
	"github.com/pgavlin/gvars/builtins"
	"github.com/pgavlin/gvars/internal/config"
)

// ErrQuit is returned by Eval for :quit.
var ErrQuit = errors.New("quit")

// History names the globals holding the last three results, newest first.
var History = [...]string{"last", "last2", "last3"}

const helpText = `statements:
  expr              evaluate expr and show its value
  name = expr       assign a global
commands:
  :ro name          make a global read-only
  :rw name          make a global read-write
  :auto name = f(args...)
                    compute name on first use by calling f
  :save [path]      save the workspace
  :load [path]      load a workspace
  :names [prefix]   list globals
  :cells            list registered cells
  :help             show this text
  :quit             leave
`

// Session evaluates REPL input against a namespace. It is also the kernel
// module that owns the cells the REPL reads: a fopy cell for View, which
// formats results, and copy cells for the result history.
type Session struct {
	g   *gvars.Globals
	cfg config.Config
	log *slog.Logger

	view    *gvars.Cell
	history [len(History)]*gvars.Cell
}

// New returns a session over a fresh namespace initialized by the builtins
// module, the session itself and the bindings in cfg.
func New(cfg config.Config, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{cfg: cfg, log: log}
	g, err := gvars.Init(s.modules(), gvars.WithLogger(log))
	if err != nil {
		return nil, err
	}
	s.g = g
	return s, nil
}

// Modules returns the kernel modules of a session namespace. A saved
// workspace must be loaded with them so that its cells are re-created.
func Modules() []gvars.Module {
	return (&Session{}).modules()
}

func (s *Session) modules() []gvars.Module {
	return []gvars.Module{builtins.New(), s}
}

// Globals returns the namespace the session evaluates in.
func (s *Session) Globals() *gvars.Globals {
	return s.g
}

func (s *Session) Name() string {
	return "repl"
}

func (s *Session) InitKernel(g *gvars.Globals) error {
	s.view = g.RegisterFopy(builtins.ViewName)
	for i, name := range History {
		s.history[i] = g.RegisterCopy(name)
	}
	return nil
}

// InitLibrary assigns the configured bindings in name order, then applies the
// configured read-only flags.
func (s *Session) InitLibrary(g *gvars.Globals) error {
	names := make([]string, 0, len(s.cfg.Bindings))
	for name := range s.cfg.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		expr, err := Parse(s.cfg.Bindings[name])
		if err != nil {
			return fmt.Errorf("binding %s: %w", name, err)
		}
		v, err := expr.Eval(g)
		if err != nil {
			return fmt.Errorf("binding %s: %w", name, err)
		}
		if err := g.AssignName(name, v); err != nil {
			return err
		}
	}
	for _, name := range s.cfg.ReadOnly {
		if err := g.MakeReadOnly(g.Intern(name)); err != nil {
			return err
		}
	}
	return nil
}

// Eval runs one line of input and returns the text to show.
func (s *Session) Eval(line string) (string, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", nil
	case strings.HasPrefix(line, ":"):
		return s.command(line)
	}

	node, err := Parse(line)
	if err != nil {
		return "", err
	}
	v, err := node.Eval(s.g)
	if err != nil {
		return "", err
	}
	if _, ok := node.(*Assignment); ok || v == nil {
		return "", nil
	}
	if err := s.remember(v); err != nil {
		return "", err
	}
	return s.display(v)
}

// remember shifts the result history.
func (s *Session) remember(v gvars.Value) error {
	for i := len(s.history) - 1; i > 0; i-- {
		prev := s.history[i-1].Value()
		if prev == nil {
			continue
		}
		if err := s.g.AssignUnsafe(s.history[i].Handle(), prev); err != nil {
			return err
		}
	}
	return s.g.AssignUnsafe(s.history[0].Handle(), v)
}

// display formats v with the procedure currently bound to View.
func (s *Session) display(v gvars.Value) (string, error) {
	text, err := s.view.Call(v)
	if err != nil {
		return "", err
	}
	if str, ok := text.(gvars.String); ok {
		return string(str), nil
	}
	return gvars.EncodeToString(text), nil
}

func (s *Session) command(line string) (string, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case ":help":
		return helpText, nil
	case ":quit", ":exit":
		return "", ErrQuit
	case ":ro", ":rw":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: %s name", cmd)
		}
		h := s.g.Intern(args[0])
		if cmd == ":ro" {
			return "", s.g.MakeReadOnly(h)
		}
		return "", s.g.MakeReadWrite(h)
	case ":auto":
		return "", s.auto(strings.TrimSpace(strings.TrimPrefix(line, cmd)))
	case ":save":
		return s.save(s.path(args))
	case ":load":
		return s.load(s.path(args))
	case ":names":
		prefix := ""
		if len(args) > 0 {
			prefix = args[0]
		}
		return strings.Join(s.g.Completions(prefix), "\n"), nil
	case ":cells":
		return s.cells(), nil
	}
	return "", fmt.Errorf("unknown command %s; type :help for help", cmd)
}

func (s *Session) auto(src string) error {
	node, err := Parse(src)
	if err != nil {
		return err
	}
	a, ok := node.(*Assignment)
	if !ok {
		return errors.New("usage: :auto name = f(args...)")
	}
	call, ok := a.Expr.(*Call)
	if !ok {
		return errors.New("usage: :auto name = f(args...)")
	}
	args, err := evalAll(s.g, call.Args)
	if err != nil {
		return err
	}
	return builtins.InstallAssignCall(s.g, a.Name, call.Name, args...)
}

func (s *Session) path(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return s.cfg.Workspace
}

func (s *Session) save(path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("saving workspace: %w", err)
	}
	if err := s.g.Save(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("saving workspace: %w", err)
	}
	return fmt.Sprintf("saved %d globals to %s", s.g.Len(), path), nil
}

// load replaces the session's namespace with the workspace at path. The
// current namespace is kept if loading fails.
func (s *Session) load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("loading workspace: %w", err)
	}
	defer f.Close()

	next := &Session{cfg: s.cfg, log: s.log}
	g, err := gvars.Load(f, next.modules(), gvars.WithLogger(s.log))
	if err != nil {
		return "", err
	}
	s.g, s.view, s.history = g, next.view, next.history
	return fmt.Sprintf("loaded %d globals from %s", g.Len(), path), nil
}

func (s *Session) cells() string {
	var b strings.Builder
	for i, c := range s.g.Cells() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s = %s", c.Kind(), c.Name(), gvars.EncodeToString(c.Value()))
	}
	return b.String()
}

// Complete is a liner word completer over the global names. pos is a rune
// offset into line.
func (s *Session) Complete(line string, pos int) (head string, completions []string, tail string) {
	runes := []rune(line)
	if pos > len(runes) {
		pos = len(runes)
	}
	start := pos
	for start > 0 && isNameRune(runes[start-1]) {
		start--
	}
	head, prefix, tail := string(runes[:start]), string(runes[start:pos]), string(runes[pos:])
	if prefix == "" || strings.HasPrefix(prefix, ":") {
		return head, nil, tail
	}

	if s.g.HasUniqueCompletion(prefix) {
		return head, []string{s.g.Complete(prefix)}, tail
	}
	return head, s.g.Completions(prefix), tail
}
