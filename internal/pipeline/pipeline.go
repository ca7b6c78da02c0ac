// Package pipeline runs one conversion: parse, collect definitions, prune
// them and serialize with a dialect.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/euforicio/chatmd/internal/definitions"
	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/parse"
	"github.com/euforicio/chatmd/internal/stringify"
)

// Result is the outcome of a conversion.
type Result struct {
	Text        string
	Metadata    map[string]any
	Definitions int
}

// Run converts source to style. All state is local to the call.
func Run(source []byte, style dialect.Style, opts parse.Options) (Result, error) {
	tree, err := parse.Parse(source, opts)
	if err != nil {
		return Result{}, fmt.Errorf("parse markdown: %w", err)
	}

	// The handlers hold the table before it is filled; they only read it
	// once serialization starts.
	table := definitions.NewTable()
	serializeOpts := dialect.New(style, table)
	definitions.Collect(tree.Document, table)
	definitions.Remove(tree.Document)

	out := stringify.Serialize(tree.Document, tree.Source, serializeOpts)
	return Result{
		Text:        Terminate(out),
		Metadata:    normalizeMetadata(tree.Metadata),
		Definitions: table.Len(),
	}, nil
}

// Terminate trims trailing newlines from s and appends exactly one.
func Terminate(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}

// normalizeMetadata converts the map[any]any values YAML decoding produces
// for nested mappings into map[string]any so metadata encodes as JSON.
func normalizeMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMetadata(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
