// Package chatmd converts Markdown into the message markup of chat
// platforms.
//
//	out, err := chatmd.Slackify("**deploy** finished, see [logs](https://ci.example.com/1)")
package chatmd

import (
	"fmt"

	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/parse"
	"github.com/euforicio/chatmd/internal/pipeline"
)

// Dialect names a target markup.
type Dialect string

// Supported dialects.
const (
	Chatwork  Dialect = "chatwork"
	Lineworks Dialect = "lineworks"
	Slack     Dialect = "slack"
)

// ErrUnknownDialect is returned for a Dialect that has no handler table.
var ErrUnknownDialect = dialect.ErrUnknownDialect

// ErrUnknownExtension is returned when WithExtensions names an extension the
// parser does not provide.
var ErrUnknownExtension = parse.ErrUnknownExtension

// Document is a converted document.
type Document struct {
	Text     string
	Metadata map[string]any
}

// Option adjusts how the Markdown input is parsed.
type Option func(*parse.Options)

// WithFrontmatter strips a leading YAML front matter block and returns it as
// Document.Metadata.
func WithFrontmatter() Option {
	return func(o *parse.Options) { o.Frontmatter = true }
}

// WithExtensions selects parser extensions by name: gfm, table,
// strikethrough, linkify and tasklist. The default is gfm.
func WithExtensions(names ...string) Option {
	return func(o *parse.Options) { o.Extensions = append(o.Extensions, names...) }
}

// Dialects returns the supported dialects.
func Dialects() []Dialect {
	names := dialect.Names()
	out := make([]Dialect, len(names))
	for i, name := range names {
		out[i] = Dialect(name)
	}
	return out
}

// ParseDialect resolves a dialect name, ignoring case and surrounding space.
func ParseDialect(name string) (Dialect, error) {
	style, ok := dialect.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return Dialect(style.Name), nil
}

// ConvertDocument converts markdown to d and returns the text together with
// any front matter metadata.
func ConvertDocument(markdown []byte, d Dialect, opts ...Option) (Document, error) {
	style, ok := dialect.Lookup(string(d))
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownDialect, d)
	}

	var parseOpts parse.Options
	for _, opt := range opts {
		opt(&parseOpts)
	}

	res, err := pipeline.Run(markdown, style, parseOpts)
	if err != nil {
		return Document{}, err
	}
	return Document{Text: res.Text, Metadata: res.Metadata}, nil
}

// Convert converts markdown to d. The result always ends in exactly one
// newline.
func Convert(markdown string, d Dialect, opts ...Option) (string, error) {
	doc, err := ConvertDocument([]byte(markdown), d, opts...)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Chatworkify converts markdown to Chatwork markup.
func Chatworkify(markdown string, opts ...Option) (string, error) {
	return Convert(markdown, Chatwork, opts...)
}

// Lineworksify converts markdown to LINE WORKS text.
func Lineworksify(markdown string, opts ...Option) (string, error) {
	return Convert(markdown, Lineworks, opts...)
}

// Slackify converts markdown to Slack mrkdwn.
func Slackify(markdown string, opts ...Option) (string, error) {
	return Convert(markdown, Slack, opts...)
}
