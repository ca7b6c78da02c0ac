// Package definitions holds the per-conversion table of link reference
// definitions and the passes that fill it from, and prune it out of, a
// parsed document.
package definitions

import (
	"github.com/yuin/goldmark/ast"

	"github.com/euforicio/chatmd/internal/parse"
)

// Definition is a resolved reference target.
type Definition struct {
	Identifier string
	URL        string
	Title      string
}

// Table maps normalized identifiers to definitions. A Table belongs to one
// conversion; it is filled once and then only read.
type Table struct {
	entries map[string]Definition
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Definition)}
}

// Add stores def under its normalized identifier. The first definition of an
// identifier wins; Add reports whether def was stored.
func (t *Table) Add(def Definition) bool {
	key := Normalize(def.Identifier)
	if _, exists := t.entries[key]; exists {
		return false
	}
	def.Identifier = key
	t.entries[key] = def
	return true
}

// Lookup returns the definition for identifier, normalizing it first.
func (t *Table) Lookup(identifier string) (Definition, bool) {
	if t == nil {
		return Definition{}, false
	}
	def, ok := t.entries[Normalize(identifier)]
	return def, ok
}

// Len returns the number of stored definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Normalize folds an identifier for matching: surrounding whitespace trimmed,
// inner runs collapsed to one space, Unicode case folded.
func Normalize(identifier string) string {
	return parse.Normalize([]byte(identifier))
}

// Collect adds every Definition node under doc to table and returns how many
// nodes it visited.
func Collect(doc ast.Node, table *Table) int {
	seen := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		def, ok := n.(*parse.Definition)
		if !ok {
			return ast.WalkContinue, nil
		}
		seen++
		table.Add(Definition{
			Identifier: def.Identifier,
			URL:        parse.Unescape(def.Destination),
			Title:      parse.Unescape(def.Title),
		})
		return ast.WalkSkipChildren, nil
	})
	return seen
}

// Remove detaches every Definition node under doc and returns the count.
func Remove(doc ast.Node) int {
	var defs []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == parse.KindDefinition {
			defs = append(defs, n)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	for _, n := range defs {
		if parent := n.Parent(); parent != nil {
			parent.RemoveChild(parent, n)
		}
	}
	return len(defs)
}
