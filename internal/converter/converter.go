// Package converter wraps the conversion pipeline in a long-lived service
// with logging and a cache keyed by document path and modification time.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/parse"
	"github.com/euforicio/chatmd/internal/pipeline"
)

// ErrUnknownDialect is returned when a conversion names a dialect that is
// not registered.
var ErrUnknownDialect = dialect.ErrUnknownDialect

// Options is passed through to the parser.
type Options = parse.Options

// Metadata captures optional front matter returned alongside a document.
type Metadata struct {
	Raw         map[string]any
	Title       string
	Description string
	Tags        []string
}

// IsZero reports whether the metadata carries any meaningful values.
func (m Metadata) IsZero() bool {
	if m.Title != "" || m.Description != "" || len(m.Tags) > 0 {
		return false
	}
	return len(m.Raw) == 0
}

// Document is a converted markdown document.
//
//nolint:govet // field order optimized for readability, not memory
type Document struct {
	Text        string
	Dialect     string
	Metadata    Metadata
	Definitions int
	Modified    time.Time
}

type cacheEntry struct {
	modTime time.Time
	doc     Document
}

// Service converts markdown documents, caching results for paths whose
// modification time has not changed.
type Service struct {
	logger *slog.Logger
	cache  sync.Map // map[string]cacheEntry
	paths  sync.Map // map[string]map[string]struct{} of cache keys per path
	mu     sync.Mutex
}

// New constructs a Service. If logger is nil, the default slog logger is used.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger.With("component", "converter")}
}

// Render converts content for path, returning the cached document when one
// exists for the same dialect and options with a matching modification time.
func (s *Service) Render(ctx context.Context, path string, modTime time.Time, content []byte, dialectName string, opts Options) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	key := cacheKey(path, dialectName, opts)
	if entry, ok := s.cache.Load(key); ok {
		if cached, ok := entry.(cacheEntry); ok {
			if !cached.modTime.IsZero() && modTime.Equal(cached.modTime) {
				s.logger.Debug("cache hit", "path", path, "dialect", dialectName)
				return cached.doc, nil
			}
		}
	}

	doc, err := s.convert(content, dialectName, opts)
	if err != nil {
		return Document{}, fmt.Errorf("convert %s: %w", path, err)
	}
	doc.Modified = modTime

	s.cache.Store(key, cacheEntry{modTime: modTime, doc: doc})
	s.track(path, key)
	s.logger.Debug("converted document", "path", path, "dialect", doc.Dialect, "definitions", doc.Definitions)
	return doc, nil
}

// Convert converts content without touching the cache.
func (s *Service) Convert(ctx context.Context, content []byte, dialectName string, opts Options) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	return s.convert(content, dialectName, opts)
}

// Invalidate removes every cached entry for path.
// This should be called when a document is updated or deleted to ensure
// the next Render call processes the latest content.
func (s *Service) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.paths.LoadAndDelete(path)
	if !ok {
		return
	}
	for key := range keys.(map[string]struct{}) {
		s.cache.Delete(key)
	}
}

func (s *Service) convert(content []byte, dialectName string, opts Options) (Document, error) {
	style, ok := dialect.Lookup(dialectName)
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownDialect, dialectName)
	}

	res, err := pipeline.Run(content, style, opts)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Text:        res.Text,
		Dialect:     style.Name,
		Metadata:    extractMetadata(res.Metadata),
		Definitions: res.Definitions,
	}, nil
}

func (s *Service) track(path, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.paths.Load(path)
	keys, _ := existing.(map[string]struct{})
	next := make(map[string]struct{}, len(keys)+1)
	for k := range keys {
		next[k] = struct{}{}
	}
	next[key] = struct{}{}
	s.paths.Store(path, next)
}

func cacheKey(path, dialectName string, opts Options) string {
	exts := make([]string, len(opts.Extensions))
	for i, name := range opts.Extensions {
		exts[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return fmt.Sprintf("%s\x00%s\x00%t\x00%s", path, strings.ToLower(dialectName), opts.Frontmatter, strings.Join(exts, ","))
}

func extractMetadata(raw map[string]any) Metadata {
	var meta Metadata
	if len(raw) == 0 {
		return meta
	}

	meta.Raw = raw
	for k, v := range raw {
		switch k {
		case "title":
			if str, ok := toString(v); ok {
				meta.Title = str
			}
		case "description", "summary":
			if str, ok := toString(v); ok {
				meta.Description = str
			}
		case "tags", "keywords":
			meta.Tags = toStringSlice(v)
		}
	}
	return meta
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if str, ok := toString(item); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return append([]string(nil), vv...)
	default:
		if str, ok := toString(v); ok {
			return []string{str}
		}
		return nil
	}
}
