// Package parse builds the goldmark parser used by conversions and exposes a
// document tree in which reference definitions and reference-style links are
// first-class nodes.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkmeta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrUnknownExtension is returned when Options names an extension the parser
// does not provide.
var ErrUnknownExtension = errors.New("unknown markdown extension")

// Options is passed through to the parser untouched by the rendering core.
type Options struct {
	// Extensions lists goldmark extensions by name. Empty means GFM
	// (tables, strikethrough, task lists and autolinks).
	Extensions []string
	// Frontmatter strips a leading YAML block and returns it as metadata.
	Frontmatter bool
}

// Tree is a parsed document together with the source its segments point into.
type Tree struct {
	Document ast.Node
	Metadata map[string]any
	Source   []byte
}

// Parse parses source into a Tree. Reference definitions appear as
// Definition nodes and resolved reference links and images as LinkReference
// and ImageReference nodes.
func Parse(source []byte, opts Options) (*Tree, error) {
	md, err := newEngine(opts)
	if err != nil {
		return nil, err
	}

	pc := newCaptureContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	tree := &Tree{Document: doc, Source: source}
	if opts.Frontmatter {
		meta, err := goldmarkmeta.TryGet(pc)
		if err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
		tree.Metadata = meta
	}
	return tree, nil
}

func newEngine(opts Options) (goldmark.Markdown, error) {
	exts, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}
	if opts.Frontmatter {
		exts = append(exts, goldmarkmeta.Meta)
	}

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			// Runs ahead of goldmark's own link reference transformer (100).
			parser.WithParagraphTransformers(util.Prioritized(definitionCapture{}, 50)),
			parser.WithASTTransformers(util.Prioritized(referenceTransformer{}, 100)),
		),
	), nil
}

// Bare URLs run until whitespace or '<', so paths written in Japanese and
// other non-ASCII scripts stay inside the link. goldmark still trims
// trailing punctuation and unbalanced parentheses after the match.
var (
	linkifyURL = regexp.MustCompile(`^(?:http|https|ftp)://[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-z]+(?::\d+)?(?:[/#?][^\s\p{Z}<]*)?`)
	linkifyWWW = regexp.MustCompile(`^www\.[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-z]+(?:[/#?][^\s\p{Z}<]*)?`)

	linkify = extension.NewLinkify(
		extension.WithLinkifyURLRegexp(linkifyURL),
		extension.WithLinkifyWWWRegexp(linkifyWWW),
	)
	gfm = []goldmark.Extender{linkify, extension.Table, extension.Strikethrough, extension.TaskList}
)

var extensionRegistry = map[string][]goldmark.Extender{
	"gfm":           gfm,
	"table":         {extension.Table},
	"tables":        {extension.Table},
	"strikethrough": {extension.Strikethrough},
	"linkify":       {linkify},
	"autolink":      {linkify},
	"tasklist":      {extension.TaskList},
}

// ValidateExtensions reports an error wrapping ErrUnknownExtension for the
// first name that has no registered extender.
func ValidateExtensions(names []string) error {
	_, err := collectExtensions(names)
	return err
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	if len(names) == 0 {
		return append([]goldmark.Extender(nil), gfm...), nil
	}

	var extenders []goldmark.Extender
	seen := map[goldmark.Extender]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		exts, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, name)
		}
		for _, ext := range exts {
			if _, dup := seen[ext]; dup {
				continue
			}
			seen[ext] = struct{}{}
			extenders = append(extenders, ext)
		}
	}
	return extenders, nil
}

// Unescape resolves backslash escapes and character references in raw
// source bytes, the way goldmark's HTML writer does for text.
func Unescape(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return string(util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b))))
}
