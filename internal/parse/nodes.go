package parse

import (
	"github.com/yuin/goldmark/ast"
)

// KindDefinition marks a link reference definition block.
var KindDefinition = ast.NewNodeKind("Definition")

// KindLinkReference marks a link resolved through a definition.
var KindLinkReference = ast.NewNodeKind("LinkReference")

// KindImageReference marks an image resolved through a definition.
var KindImageReference = ast.NewNodeKind("ImageReference")

// Definition is a `[label]: destination "title"` block. goldmark normally
// consumes these into the parser context; Parse keeps them in the tree.
type Definition struct {
	ast.BaseBlock
	Identifier  string
	Label       []byte
	Destination []byte
	Title       []byte
}

// NewDefinition returns a Definition for the given reference.
func NewDefinition(label, destination, title []byte) *Definition {
	return &Definition{
		Identifier:  Normalize(label),
		Label:       label,
		Destination: destination,
		Title:       title,
	}
}

// Kind implements ast.Node.
func (n *Definition) Kind() ast.NodeKind { return KindDefinition }

// Dump implements ast.Node.
func (n *Definition) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Identifier":  n.Identifier,
		"Destination": string(n.Destination),
		"Title":       string(n.Title),
	}, nil)
}

// LinkReference is a `[text][label]`, `[label][]` or `[label]` link whose
// label matched a definition. Children hold the link text.
type LinkReference struct {
	ast.BaseInline
	Identifier string
	Label      []byte
}

// Kind implements ast.Node.
func (n *LinkReference) Kind() ast.NodeKind { return KindLinkReference }

// Dump implements ast.Node.
func (n *LinkReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Identifier": n.Identifier}, nil)
}

// ImageReference is the image form of LinkReference. Children hold the alt text.
type ImageReference struct {
	ast.BaseInline
	Identifier string
	Label      []byte
}

// Kind implements ast.Node.
func (n *ImageReference) Kind() ast.NodeKind { return KindImageReference }

// Dump implements ast.Node.
func (n *ImageReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Identifier": n.Identifier}, nil)
}
