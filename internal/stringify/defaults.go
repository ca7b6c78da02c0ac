package stringify

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/euforicio/chatmd/internal/parse"
)

const (
	blockSeparator = "\n\n"
	tightSeparator = "\n"
	listIndentStep = 4
)

// Default renders n as Markdown. Children are still dispatched through the
// handler, so a dialect override applies at every depth.
func (c *Context) Default(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Document:
		return c.Flow(node, blockSeparator)
	case *ast.Paragraph, *ast.TextBlock:
		return c.Phrasing(node, Markers{})
	case *ast.Heading:
		defer c.Enter(ScopeHeading)()
		return strings.Repeat("#", node.Level) + " " + c.Phrasing(node, Markers{})
	case *ast.ThematicBreak:
		return "***"
	case *ast.Blockquote:
		return c.blockquote(node)
	case *ast.List:
		return c.list(node)
	case *ast.ListItem:
		return c.listItem(node)
	case *ast.FencedCodeBlock:
		return "```" + string(node.Language(c.source)) + "\n" + c.BlockText(node) + "```"
	case *ast.CodeBlock:
		return indentLines(strings.TrimSuffix(c.BlockText(node), "\n"), "    ", true)
	case *ast.HTMLBlock:
		html := c.BlockText(node)
		if node.HasClosure() {
			html += string(node.ClosureLine.Value(c.source))
		}
		return strings.TrimRight(html, "\n")
	case *parse.Definition:
		return c.definition(node)

	case *ast.Text:
		value := c.TextValue(node)
		if c.InScope(ScopeTableCell) {
			value = strings.ReplaceAll(value, "|", `\|`)
		}
		return value
	case *ast.String:
		return string(node.Value)
	case *ast.Emphasis:
		marker := "_"
		scope := ScopeEmphasis
		if node.Level >= 2 {
			marker, scope = "**", ScopeStrong
		}
		defer c.Enter(scope)()
		return marker + c.Phrasing(node, Markers{}) + marker
	case *east.Strikethrough:
		defer c.Enter(ScopeDelete)()
		return "~~" + c.Phrasing(node, Markers{}) + "~~"
	case *ast.CodeSpan:
		return codeSpan(c.CodeText(node))
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			b.Write(seg.Value(c.source))
		}
		return b.String()
	case *ast.Link:
		defer c.Enter(ScopeLink)()
		return "[" + c.Phrasing(node, Markers{}) + "](" + destination(node.Destination, node.Title) + ")"
	case *ast.Image:
		defer c.Enter(ScopeImage)()
		return "![" + c.PlainText(node) + "](" + destination(node.Destination, node.Title) + ")"
	case *ast.AutoLink:
		return "<" + string(node.URL(c.source)) + ">"
	case *parse.LinkReference:
		defer c.Enter(ScopeLink)()
		return "[" + c.Phrasing(node, Markers{}) + "][" + node.Identifier + "]"
	case *parse.ImageReference:
		defer c.Enter(ScopeImage)()
		return "![" + c.PlainText(node) + "][" + node.Identifier + "]"
	case *east.TaskCheckBox:
		if node.IsChecked {
			return "[x] "
		}
		return "[ ] "

	case *east.Table:
		return c.table(node)
	case *east.TableCell:
		return c.Phrasing(node, Markers{})
	}

	if n.Type() == ast.TypeBlock || n.Type() == ast.TypeDocument {
		return c.Flow(n, blockSeparator)
	}
	return c.Phrasing(n, Markers{})
}

// Flow renders the block children of n and joins the non-empty results.
func (c *Context) Flow(n ast.Node, separator string) string {
	var parts []string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if out := c.Render(child); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, separator)
}

func (c *Context) blockquote(n *ast.Blockquote) string {
	defer c.Enter(ScopeBlockquote)()
	body := c.Flow(n, blockSeparator)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func (c *Context) list(n *ast.List) string {
	separator := blockSeparator
	if n.IsTight {
		separator = tightSeparator
	}
	return c.Flow(n, separator)
}

func (c *Context) listItem(n *ast.ListItem) string {
	defer c.Enter(ScopeListItem)()

	separator := blockSeparator
	list, _ := n.Parent().(*ast.List)
	if list != nil && list.IsTight {
		separator = tightSeparator
	}

	bullet := c.ItemBullet(n)
	width := (len(bullet)/listIndentStep + 1) * listIndentStep
	prefix := bullet + strings.Repeat(" ", width-len(bullet))

	body := c.Flow(n, separator)
	if body == "" {
		return bullet
	}
	return prefix + indentLines(body, strings.Repeat(" ", width), false)
}

// ItemBullet returns the marker the default serializer writes before a list
// item: the configured bullet, or the item's number and delimiter.
func (c *Context) ItemBullet(n *ast.ListItem) string {
	list, ok := n.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return string(c.opts.Bullet)
	}
	number := list.Start
	for sibling := n.PreviousSibling(); sibling != nil; sibling = sibling.PreviousSibling() {
		number++
	}
	return strconv.Itoa(number) + string(list.Marker)
}

func (c *Context) definition(n *parse.Definition) string {
	return "[" + string(n.Label) + "]: " + destination(n.Destination, n.Title)
}

// indentLines prefixes every non-empty line of s with indent, skipping the
// first line unless first is set.
func indentLines(s, indent string, first bool) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" || (i == 0 && !first) {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

func destination(dest, title []byte) string {
	out := string(dest)
	if len(title) > 0 {
		out += ` "` + strings.ReplaceAll(string(title), `"`, `\"`) + `"`
	}
	return out
}

func codeSpan(code string) string {
	fence := "`"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		return fence + " " + code + " " + fence
	}
	return fence + code + fence
}
