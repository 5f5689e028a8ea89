package gvars

import (
	"strings"
	"unicode/utf8"

	"github.com/google/btree"
)

const indexDegree = 16

func newIndex() *btree.BTreeG[string] {
	return btree.NewOrderedG[string](indexDegree)
}

// ascendPrefix calls fn for every interned name starting with prefix, in
// order, until fn returns false. The caller must hold g.mu.
func (g *Globals) ascendPrefix(prefix string, fn func(name string) bool) {
	g.index.AscendGreaterOrEqual(prefix, func(name string) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		return fn(name)
	})
}

// HasUniqueCompletion reports whether exactly one interned name starts with
// prefix.
func (g *Globals) HasUniqueCompletion(prefix string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	g.ascendPrefix(prefix, func(string) bool {
		n++
		return n < 2
	})
	return n == 1
}

// Complete extends prefix to the longest common prefix of every interned name
// that starts with it. If no name starts with prefix, prefix is returned
// unchanged.
func (g *Globals) Complete(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	common, found := "", false
	g.ascendPrefix(prefix, func(name string) bool {
		if !found {
			common, found = name, true
			return true
		}
		common = common[:commonPrefixLen(common, name)]
		return len(common) > len(prefix)
	})
	if !found {
		return prefix
	}
	return common
}

// Completions returns the interned names starting with prefix in sorted
// order.
func (g *Globals) Completions(prefix string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var names []string
	g.ascendPrefix(prefix, func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Names returns every interned name in sorted order.
func (g *Globals) Names() []string {
	return g.Completions("")
}

// commonPrefixLen returns the length of the longest common prefix of a and b
// that does not end inside a multi-byte rune.
func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	for n > 0 && n < len(a) && !utf8.RuneStart(a[n]) {
		n--
	}
	return n
}
