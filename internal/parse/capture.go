package parse

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// referencePrefix marks destinations produced by captureContext.Reference.
// NUL cannot appear in a parsed destination, so real links never carry it.
const referencePrefix = "\x00ref:"

// Normalize folds a reference label the way label matching does: trimmed,
// inner whitespace collapsed and case folded.
func Normalize(label []byte) string {
	return util.ToLinkReference(label)
}

// captureContext records every reference added during a paragraph transform
// and hands the inline parser placeholder destinations for resolved labels.
type captureContext struct {
	parser.Context
	pending []parser.Reference
}

func newCaptureContext() *captureContext {
	return &captureContext{Context: parser.NewContext()}
}

func (c *captureContext) AddReference(ref parser.Reference) {
	c.pending = append(c.pending, ref)
	c.Context.AddReference(ref)
}

func (c *captureContext) Reference(label string) (parser.Reference, bool) {
	ref, ok := c.Context.Reference(label)
	if !ok {
		return nil, false
	}
	return parser.NewReference(ref.Label(), []byte(referencePrefix+label), ref.Title()), true
}

func (c *captureContext) drain() []parser.Reference {
	refs := c.pending
	c.pending = nil
	return refs
}

// definitionCapture extracts link reference definitions from a paragraph and
// leaves them in the tree as Definition nodes.
type definitionCapture struct{}

func (definitionCapture) Transform(node *ast.Paragraph, reader text.Reader, pc parser.Context) {
	capture, ok := pc.(*captureContext)
	if !ok {
		return
	}

	parent := node.Parent()
	prev := node.PreviousSibling()
	parser.LinkReferenceParagraphTransformer.Transform(node, reader, pc)

	refs := capture.drain()
	if len(refs) == 0 {
		return
	}

	anchor := ast.Node(node)
	var placeholder ast.Node
	if node.Parent() == nil {
		// The paragraph held only definitions and was swapped for an empty
		// text block in the same position.
		if prev != nil {
			placeholder = prev.NextSibling()
		} else {
			placeholder = parent.FirstChild()
		}
		anchor = placeholder
	}

	for _, ref := range refs {
		def := NewDefinition(ref.Label(), ref.Destination(), ref.Title())
		if anchor != nil {
			parent.InsertBefore(parent, anchor, def)
		} else {
			parent.AppendChild(parent, def)
		}
	}

	if _, ok := placeholder.(*ast.TextBlock); ok && placeholder.ChildCount() == 0 {
		parent.RemoveChild(parent, placeholder)
	}
}

// referenceTransformer swaps links and images that resolved through a
// definition for LinkReference and ImageReference nodes.
type referenceTransformer struct{}

func (referenceTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; {
			next := child.NextSibling()
			if replacement := referenceNode(child); replacement != nil {
				n.ReplaceChild(n, child, replacement)
				child = replacement
			}
			walk(child)
			child = next
		}
	}
	walk(doc)
}

func referenceNode(n ast.Node) ast.Node {
	var dest []byte
	switch node := n.(type) {
	case *ast.Link:
		dest = node.Destination
	case *ast.Image:
		dest = node.Destination
	default:
		return nil
	}
	if !bytes.HasPrefix(dest, []byte(referencePrefix)) {
		return nil
	}
	identifier := string(dest[len(referencePrefix):])

	var replacement ast.Node
	switch n.(type) {
	case *ast.Link:
		replacement = &LinkReference{Identifier: identifier, Label: []byte(identifier)}
	default:
		replacement = &ImageReference{Identifier: identifier, Label: []byte(identifier)}
	}
	moveChildren(n, replacement)
	return replacement
}

func moveChildren(from, to ast.Node) {
	for c := from.FirstChild(); c != nil; {
		next := c.NextSibling()
		from.RemoveChild(from, c)
		to.AppendChild(to, c)
		c = next
	}
}
