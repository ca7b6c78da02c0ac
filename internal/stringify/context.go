// Package stringify serializes a goldmark document tree back to text. A
// Handler gets the first look at every node; Context.Default is the
// Markdown serializer handlers fall back to for kinds they do not override.
package stringify

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/euforicio/chatmd/internal/parse"
)

// Scope names a kind of node currently being rendered.
type Scope string

const (
	ScopeBlockquote Scope = "blockquote"
	ScopeDelete     Scope = "delete"
	ScopeEmphasis   Scope = "emphasis"
	ScopeHeading    Scope = "heading"
	ScopeImage      Scope = "image"
	ScopeLink       Scope = "link"
	ScopeListItem   Scope = "listItem"
	ScopePhrasing   Scope = "phrasing"
	ScopeStrong     Scope = "strong"
	ScopeTableCell  Scope = "tableCell"
)

// Markers wrap rendered phrase content.
type Markers struct {
	Before string
	After  string
}

// IsZero reports whether m adds nothing.
func (m Markers) IsZero() bool { return m.Before == "" && m.After == "" }

// Handler renders a node. Implementations return c.Default(n) for kinds
// they leave to the default serializer.
type Handler interface {
	Render(c *Context, n ast.Node) string
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(c *Context, n ast.Node) string

// Render implements Handler.
func (f HandlerFunc) Render(c *Context, n ast.Node) string { return f(c, n) }

// Options configure a serialization.
type Options struct {
	// Bullet is the unordered list marker. Defaults to '*'.
	Bullet byte
	// Handler is consulted for every node. Nil renders everything with
	// the default serializer.
	Handler Handler
}

// Context is the state of one serialization: the source the tree points
// into, the scopes being rendered and the markers of enclosing phrases.
type Context struct {
	source  []byte
	opts    Options
	scopes  []Scope
	markers []Markers
}

// Serialize renders doc with opts.
func Serialize(doc ast.Node, source []byte, opts Options) string {
	return NewContext(source, opts).Render(doc)
}

// NewContext returns a fresh Context for one serialization.
func NewContext(source []byte, opts Options) *Context {
	if opts.Bullet == 0 {
		opts.Bullet = '*'
	}
	return &Context{source: source, opts: opts}
}

// Source returns the bytes node segments refer to.
func (c *Context) Source() []byte { return c.source }

// Options returns the options the context was created with.
func (c *Context) Options() Options { return c.opts }

// Render dispatches n to the handler, or to Default when there is none.
func (c *Context) Render(n ast.Node) string {
	if c.opts.Handler != nil {
		return c.opts.Handler.Render(c, n)
	}
	return c.Default(n)
}

// Enter pushes s and returns the func that pops it.
//
//	defer c.Enter(stringify.ScopeLink)()
func (c *Context) Enter(s Scope) func() {
	depth := len(c.scopes)
	c.scopes = append(c.scopes, s)
	return func() { c.scopes = c.scopes[:depth] }
}

// InScope reports whether s is anywhere on the scope stack.
func (c *Context) InScope(s Scope) bool {
	for _, active := range c.scopes {
		if active == s {
			return true
		}
	}
	return false
}

// Scopes returns a copy of the scope stack, outermost first.
func (c *Context) Scopes() []Scope {
	return append([]Scope(nil), c.scopes...)
}

// Phrasing renders the children of n in order with m recorded as the
// markers of the phrase being built. It does not apply m; see Wrap.
func (c *Context) Phrasing(n ast.Node, m Markers) string {
	c.markers = append(c.markers, m)
	defer func() { c.markers = c.markers[:len(c.markers)-1] }()
	defer c.Enter(ScopePhrasing)()

	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		b.WriteString(c.Render(child))
	}
	return b.String()
}

// Wrap surrounds value with m unless m is empty or an enclosing phrase is
// already marked with m.
func (c *Context) Wrap(value string, m Markers) string {
	if m.IsZero() {
		return value
	}
	for _, enclosing := range c.markers {
		if enclosing == m {
			return value
		}
	}
	return m.Before + value + m.After
}

// PlainText returns the text content of n's descendants without markup,
// as used for image alt text.
func (c *Context) PlainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node == n {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.WriteString(c.TextValue(v))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// TextValue returns the literal value of t with escapes and character
// references resolved, followed by a newline when t ends in a line break.
func (c *Context) TextValue(t *ast.Text) string {
	raw := t.Segment.Value(c.source)
	var value string
	if t.IsRaw() {
		value = string(raw)
	} else {
		value = parse.Unescape(raw)
	}
	if t.SoftLineBreak() || t.HardLineBreak() {
		value += "\n"
	}
	return value
}

// CodeText returns the content of a code span with line endings folded to
// spaces.
func (c *Context) CodeText(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(c.source))
		case *ast.String:
			b.Write(v.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

// BlockText returns the raw lines of a block node concatenated.
func (c *Context) BlockText(n ast.Node) string {
	lines := n.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}
