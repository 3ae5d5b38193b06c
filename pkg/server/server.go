// Package server hosts rendered referral trees over HTTP for previewing.
//
// Every request re-runs the pipeline against the configured source, so edits
// to the source show up on reload; the pipeline cache keeps repeated requests
// for an unchanged tree cheap. The server only hosts artifacts: the page it
// serves never calls back into it.
//
// Routes:
//
//	GET /               interactive page (same as /tree.html)
//	GET /tree.html      interactive page
//	GET /tree.svg       static SVG; ?open=<id> draws that tooltip, ?popups=1 embeds all
//	GET /tree.png       PNG
//	GET /tree.dot       Graphviz DOT
//	GET /nodelink.svg   Graphviz node-link diagram
//	GET /layout.json    grid, measured cards and connector paths
//	GET /healthz        liveness
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/observability"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

// RequestIDHeader carries the request id on responses.
const RequestIDHeader = "X-Request-ID"

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// Server serves pipeline artifacts.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
	router chi.Router
}

// New creates a server that renders base's source with runner. Per-request
// query parameters override base.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, base: base, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)

	r.Get("/", s.artifact(pipeline.VizTypeGrid, pipeline.FormatHTML))
	r.Get("/tree.html", s.artifact(pipeline.VizTypeGrid, pipeline.FormatHTML))
	r.Get("/tree.svg", s.artifact(pipeline.VizTypeGrid, pipeline.FormatSVG))
	r.Get("/tree.png", s.artifact(pipeline.VizTypeGrid, pipeline.FormatPNG))
	r.Get("/tree.dot", s.artifact(pipeline.VizTypeGrid, pipeline.FormatDOT))
	r.Get("/nodelink.svg", s.artifact(pipeline.VizTypeNodelink, pipeline.FormatSVG))
	r.Get("/layout.json", s.artifact(pipeline.VizTypeGrid, pipeline.FormatJSON))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

type ctxKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID assigns every request an id, echoes it in the response and
// reports the request to the HTTP hooks.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
	})
}

// artifact renders one format per request.
func (s *Server) artifact(vizType, format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r, vizType, format)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.logger.Warn("render failed", "path", r.URL.Path, "error", err)
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Run-ID", res.RunID)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(res.Artifacts[format])
	}
}

// options derives pipeline options for one request from the base options
// and the query string.
func (s *Server) options(r *http.Request, vizType, format string) (pipeline.Options, error) {
	opts := s.base
	opts.VizType = vizType
	opts.Formats = []string{format}
	opts.Logger = s.logger.With("request", shortID(RequestID(r.Context())))

	q := r.URL.Query()
	if open := strings.TrimSpace(q.Get("open")); open != "" {
		if err := errors.ValidateNodeID(open); err != nil {
			return opts, err
		}
		opts.OpenTooltip = open
	}
	for name, dst := range map[string]*bool{
		"popups":   &opts.Popups,
		"refresh":  &opts.Refresh,
		"detailed": &opts.Detailed,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
		}
		*dst = v
	}
	return opts, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidNodeID, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeEmptyTree, errors.ErrCodeNoRoot, errors.ErrCodeInvalidSource:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case "":
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
