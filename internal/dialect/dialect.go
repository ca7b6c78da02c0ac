// Package dialect holds the node handler tables for the supported chat
// dialects. Every dialect shares the same control flow; a Style supplies
// the literal tokens.
package dialect

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/euforicio/chatmd/internal/definitions"
	"github.com/euforicio/chatmd/internal/parse"
	"github.com/euforicio/chatmd/internal/stringify"
	"github.com/euforicio/chatmd/internal/urlutil"
)

// Style is the set of literal tokens a dialect renders with. Empty markers
// drop the decoration and keep the content as plain text.
type Style struct {
	Name       string
	Heading    stringify.Markers
	Strong     stringify.Markers
	Emphasis   stringify.Markers
	Delete     stringify.Markers
	InlineCode stringify.Markers
	CodeBlock  stringify.Markers
	// Bullet replaces the leading marker of unordered list items.
	Bullet string
	// TrustEncoded leaves inline link URLs that already contain percent
	// escapes as written instead of encoding them again. Inline images are
	// always encoded; reference targets never are.
	TrustEncoded bool
}

// ErrUnknownDialect is returned for a dialect name with no registered style.
var ErrUnknownDialect = errors.New("unknown dialect")

var styles = map[string]Style{
	Chatwork.Name:  Chatwork,
	Lineworks.Name: Lineworks,
	Slack.Name:     Slack,
}

// aliases maps alternative names onto registered styles.
var aliases = map[string]string{
	"chat": Chatwork.Name,
}

// Lookup returns the style registered under name or one of its aliases.
func Lookup(name string) (Style, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	s, ok := styles[key]
	return s, ok
}

// Names lists the registered dialects in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bullet is the marker the default list item serializer writes; listItem
// swaps it for the style's glyph.
const bullet = '*'

// deprecatedLanguage matches the `#!lang` first line older editors wrote
// into fenced code instead of using the info string.
var deprecatedLanguage = regexp.MustCompile(`^#![a-z]+\n`)

// New returns serializer options that render with style and resolve
// references against defs. defs may still be empty here; it is read only
// while rendering.
func New(style Style, defs *definitions.Table) stringify.Options {
	return stringify.Options{
		Bullet:  bullet,
		Handler: &handlers{style: style, defs: defs},
	}
}

type handlers struct {
	style Style
	defs  *definitions.Table
}

// Render implements stringify.Handler.
func (h *handlers) Render(c *stringify.Context, n ast.Node) string {
	switch node := n.(type) {
	case *ast.Heading:
		return h.phrase(c, node, stringify.ScopeHeading, h.style.Heading)
	case *ast.Emphasis:
		if node.Level >= 2 {
			return h.phrase(c, node, stringify.ScopeStrong, h.style.Strong)
		}
		return h.phrase(c, node, stringify.ScopeEmphasis, h.style.Emphasis)
	case *east.Strikethrough:
		return h.phrase(c, node, stringify.ScopeDelete, h.style.Delete)
	case *ast.CodeSpan:
		return h.style.InlineCode.Before + c.CodeText(node) + h.style.InlineCode.After
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return h.code(c, node)
	case *ast.Link:
		return h.link(c, node)
	case *ast.AutoLink:
		return h.autoLink(c, node)
	case *parse.LinkReference:
		return h.linkReference(c, node)
	case *ast.Image:
		return h.image(c, node)
	case *parse.ImageReference:
		return h.imageReference(c, node)
	case *ast.ListItem:
		return h.listItem(c, node)
	case *ast.Text:
		return c.TextValue(node)
	default:
		return c.Default(n)
	}
}

func (h *handlers) phrase(c *stringify.Context, n ast.Node, scope stringify.Scope, m stringify.Markers) string {
	defer c.Enter(scope)()
	return c.Wrap(c.Phrasing(n, m), m)
}

func (h *handlers) code(c *stringify.Context, n ast.Node) string {
	content := strings.TrimSuffix(c.BlockText(n), "\n")
	content = deprecatedLanguage.ReplaceAllString(content, "")
	return h.style.CodeBlock.Before + content + h.style.CodeBlock.After
}

func (h *handlers) link(c *stringify.Context, n *ast.Link) string {
	defer c.Enter(stringify.ScopeLink)()
	text := c.Phrasing(n, stringify.Markers{})
	if text == "" {
		text = parse.Unescape(n.Title)
	}
	return linkText(text, urlutil.Encode(parse.Unescape(n.Destination), h.style.TrustEncoded))
}

func (h *handlers) autoLink(c *stringify.Context, n *ast.AutoLink) string {
	defer c.Enter(stringify.ScopeLink)()
	text := string(n.Label(c.Source()))
	return linkText(text, urlutil.Encode(string(n.URL(c.Source())), h.style.TrustEncoded))
}

func (h *handlers) linkReference(c *stringify.Context, n *parse.LinkReference) string {
	defer c.Enter(stringify.ScopeLink)()
	text := c.Phrasing(n, stringify.Markers{})
	def, ok := h.defs.Lookup(n.Identifier)
	if !ok {
		return text
	}
	if text == "" {
		text = def.Title
	}
	// Definition URLs are emitted as written, never re-encoded.
	return linkText(text, def.URL)
}

func (h *handlers) image(c *stringify.Context, n *ast.Image) string {
	defer c.Enter(stringify.ScopeImage)()
	text := c.PlainText(n)
	if text == "" {
		text = parse.Unescape(n.Title)
	}
	return linkText(text, urlutil.EncodeURI(parse.Unescape(n.Destination)))
}

func (h *handlers) imageReference(c *stringify.Context, n *parse.ImageReference) string {
	defer c.Enter(stringify.ScopeImage)()
	text := c.PlainText(n)
	def, ok := h.defs.Lookup(n.Identifier)
	if !ok {
		return text
	}
	if text == "" {
		text = def.Title
	}
	return linkText(text, def.URL)
}

func (h *handlers) listItem(c *stringify.Context, n *ast.ListItem) string {
	out := c.Default(n)
	if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
		return out
	}
	if strings.HasPrefix(out, string(rune(bullet))) {
		out = h.style.Bullet + out[1:]
	}
	return out
}

// linkText renders a resolved link target. URLs that are not absolute drop
// out and leave the text alone.
func linkText(text, url string) string {
	if !urlutil.IsURL(url) {
		return text
	}
	if text == "" {
		return "\n" + url + "\n"
	}
	return "\n" + text + " (" + url + ")\n"
}
