// Package server provides the HTTP API for converting markdown to chat dialects.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/euforicio/chatmd/internal/buildinfo"
	"github.com/euforicio/chatmd/internal/config"
	"github.com/euforicio/chatmd/internal/converter"
	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/metrics"
	"github.com/euforicio/chatmd/internal/parse"
)

// maxBodyBytes bounds request bodies accepted by the conversion endpoint.
const maxBodyBytes = 4 << 20

// Server wraps the HTTP server and configuration for the conversion API.
type Server struct { //nolint:govet // field order favors logical grouping over padding optimizations
	mux        *http.ServeMux
	httpServer *http.Server
	logger     *slog.Logger
	converter  *converter.Service
	metrics    *metrics.Recorder
	registry   *prom.Registry
	cfg        config.Config
}

var errMarkdownRequired = errors.New("markdown is required")

// Markdown is a pointer so an omitted field can be told apart from an empty
// document, which converts like an empty raw body.
type convertRequest struct {
	Markdown    *string  `json:"markdown"`
	Frontmatter *bool    `json:"frontmatter,omitempty"`
	Extensions  []string `json:"extensions,omitempty"`
}

type convertResponse struct {
	Metadata    map[string]any `json:"metadata,omitempty"`
	Dialect     string         `json:"dialect"`
	Text        string         `json:"text"`
	Definitions int            `json:"definitions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New constructs a Server with the provided configuration and converter
// and registers its routes.
func New(cfg config.Config, logger *slog.Logger, svc *converter.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("converter service must be provided")
	}
	if logger == nil {
		logger = slog.Default()
	}

	reg := prom.NewRegistry()
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		logger:    logger.With("component", "http"),
		converter: svc,
		metrics:   metrics.NewRecorder(reg),
		registry:  reg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
	s.mux.HandleFunc("GET /api/dialects", s.handleDialects)
	s.mux.Handle("GET /metrics", metrics.HTTPHandler(s.registry))
	s.mux.HandleFunc("POST /api/convert/{dialect}", s.handleConvert)
	s.mux.HandleFunc("POST /api/convert", s.handleConvert)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		csrfMiddleware,
		bodyLimitMiddleware(maxBodyBytes),
		gzipMiddleware,
		loggingMiddleware(s.logger, s.cfg.Verbose),
	)
}

// Start runs the HTTP server on the configured port, or on a random local
// port when cfg.Port is 0. It blocks until the server stops or ctx is
// canceled, in which case the server is shut down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	if s.cfg.Port == 0 {
		addr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		_ = listener.Close()
		return errors.New("unexpected listener address type")
	}
	serverURL := fmt.Sprintf("http://localhost:%d", tcpAddr.Port)

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if _, err := fmt.Fprintf(os.Stdout, "chatmd server listening on %s\n", serverURL); err != nil {
			s.logger.Warn("failed to announce server address", slog.String("url", serverURL), slog.Any("err", err))
		}
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.ErrorContext(ctx, "graceful shutdown failed", slog.Any("err", err))
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the server with the provided context timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": buildinfo.Summary()})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"dialects": dialect.Names(),
		"default":  s.cfg.Dialect,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	name := strings.TrimSpace(r.PathValue("dialect"))
	if name == "" {
		name = s.cfg.Dialect
	}
	label := "unknown"
	if style, ok := dialect.Lookup(name); ok {
		label = style.Name
	}

	asJSON := isJSONRequest(r)
	content, opts, err := s.readConvertRequest(r, asJSON)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		s.metrics.IncFailure(label, metrics.ResultRejected)
		respondError(w, status, err)
		return
	}

	doc, err := s.converter.Convert(ctx, content, name, opts)
	if err != nil {
		status, result := http.StatusUnprocessableEntity, metrics.ResultFailed
		switch {
		case errors.Is(err, converter.ErrUnknownDialect):
			status, result = http.StatusNotFound, metrics.ResultRejected
		case errors.Is(err, parse.ErrUnknownExtension):
			status, result = http.StatusBadRequest, metrics.ResultRejected
		case errors.Is(err, context.Canceled):
			return
		}
		s.metrics.IncFailure(label, result)
		s.logger.DebugContext(ctx, "conversion failed", slog.String("dialect", name), slog.Any("err", err))
		respondError(w, status, err)
		return
	}
	s.metrics.ObserveConversion(label, time.Since(start), len(doc.Text), doc.Definitions)

	if !asJSON {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, doc.Text); err != nil {
			s.logger.DebugContext(ctx, "write response", slog.Any("err", err))
		}
		return
	}

	respondJSON(w, http.StatusOK, convertResponse{
		Dialect:     doc.Dialect,
		Text:        doc.Text,
		Metadata:    doc.Metadata.Raw,
		Definitions: doc.Definitions,
	})
}

// readConvertRequest extracts the markdown and parser options from a JSON
// body, or from a raw body plus query parameters.
func (s *Server) readConvertRequest(r *http.Request, asJSON bool) ([]byte, converter.Options, error) {
	opts := s.cfg.ParseOptions()

	if asJSON {
		var req convertRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, opts, err
		}
		if req.Markdown == nil {
			return nil, opts, errMarkdownRequired
		}
		if req.Frontmatter != nil {
			opts.Frontmatter = *req.Frontmatter
		}
		if len(req.Extensions) > 0 {
			opts.Extensions = req.Extensions
		}
		return []byte(*req.Markdown), opts, nil
	}

	if r.Body == nil {
		return nil, opts, errMarkdownRequired
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, opts, fmt.Errorf("read body: %w", err)
	}

	query := r.URL.Query()
	if raw := query.Get("frontmatter"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, opts, fmt.Errorf("invalid frontmatter parameter: %w", err)
		}
		opts.Frontmatter = value
	}
	if exts := query["ext"]; len(exts) > 0 {
		opts.Extensions = nil
		for _, ext := range exts {
			opts.Extensions = append(opts.Extensions, strings.Split(ext, ",")...)
		}
	}
	return body, opts, nil
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
