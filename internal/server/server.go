// Package server exposes the compositor over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/logging"
)

// Delivery modes selected with ?output=.
const (
	OutputPNG     = "png"
	OutputDataURL = "dataurl"
	OutputFile    = "file"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 10 << 20

// Renderer produces PNG bytes for a template and data.
type Renderer interface {
	Render(ctx context.Context, def *compose.Definition, data compose.Data) ([]byte, error)
}

// TemplateStore reads and replaces the stored template.
type TemplateStore interface {
	Get(ctx context.Context) (*compose.Definition, error)
	Raw(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, raw []byte) (*compose.Definition, error)
}

// Server serves render, preview and template administration requests.
type Server struct {
	renderer  Renderer
	store     TemplateStore
	metrics   *Metrics
	log       *slog.Logger
	timeout   time.Duration
	outputDir string
	baseURL   string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the collectors; /metrics serves their registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds each render. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithOutputDir sets where file deliveries are written and the URL
// prefix they are served under.
func WithOutputDir(dir, baseURL string) Option {
	return func(s *Server) {
		s.outputDir = dir
		s.baseURL = baseURL
	}
}

// New creates a Server.
func New(r Renderer, st TemplateStore, opts ...Option) *Server {
	s := &Server{
		renderer:  r,
		store:     st,
		log:       logging.NewNop(),
		timeout:   30 * time.Second,
		outputDir: "outputs",
		baseURL:   "/outputs/",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/render", s.handleRender)
	r.Post("/preview", s.handlePreview)
	r.Get("/template", s.handleGetTemplate)
	r.Put("/template", s.handlePutTemplate)
	r.Post("/template", s.handlePutTemplate)
	r.Get("/outputs/{name}", s.handleOutput)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// handleRender renders the stored template with the request body as data.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	mode, ok := deliveryMode(w, r)
	if !ok {
		return
	}
	data, err := decodeData(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	def, err := s.store.Get(r.Context())
	if err != nil {
		s.metrics.observeRender("stored", time.Now(), err)
		writeError(w, statusFor(err), err)
		return
	}
	s.render(w, r, "stored", mode, def, data)
}

type previewRequest struct {
	Template json.RawMessage `json:"template"`
	Data     compose.Data    `json:"data"`
}

// handlePreview renders a template supplied in the request.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	mode, ok := deliveryMode(w, r)
	if !ok {
		return
	}
	var req previewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	def, err := compose.ParseDefinition(req.Template)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.render(w, r, "preview", mode, def, req.Data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, source, mode string, def *compose.Definition, data compose.Data) {
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.renderer.Render(ctx, def, data)
	s.metrics.observeRender(source, start, err)
	if err != nil {
		s.log.Warn("render failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	switch mode {
	case OutputDataURL:
		writeJSON(w, http.StatusOK, map[string]string{
			"dataUrl": "data:image/png;base64," + base64.StdEncoding.EncodeToString(out),
		})
	case OutputFile:
		name, err := s.persist(out)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"name": name,
			"url":  s.baseURL + name,
		})
	default:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", fmt.Sprint(len(out)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

// persist writes a rendered PNG under a fresh name.
func (s *Server) persist(png []byte) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to ensure output directory: %w", err)
	}
	name := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(s.outputDir, name), png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return name, nil
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stem, ok := strings.CutSuffix(name, ".png")
	if _, err := uuid.Parse(stem); !ok || err != nil {
		writeError(w, http.StatusNotFound, errors.New("output not found"))
		return
	}
	path := filepath.Join(s.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, errors.New("output not found"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	raw, err := s.store.Raw(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	def, err := s.store.Put(r.Context(), raw)
	s.metrics.observeTemplateUpdate(err)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.log.Info("template replaced", "elements", len(def.Elements))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"elements": len(def.Elements),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.store.Get(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"template": err == nil,
	})
}

// deliveryMode reads ?output=, writing a 400 for unknown modes.
func deliveryMode(w http.ResponseWriter, r *http.Request) (string, bool) {
	switch mode := strings.ToLower(r.URL.Query().Get("output")); mode {
	case "", OutputPNG:
		return OutputPNG, true
	case OutputDataURL, OutputFile:
		return mode, true
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown output mode %q", mode))
		return "", false
	}
}

// decodeData reads the render data mapping. An empty body is no data.
func decodeData(r *http.Request) (compose.Data, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return compose.Data{}, nil
	}
	var data compose.Data
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if data == nil {
		data = compose.Data{}
	}
	return data, nil
}

// statusFor maps failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, compose.ErrInvalidTemplateShape):
		return http.StatusBadRequest
	case errors.Is(err, compose.ErrTemplateUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
