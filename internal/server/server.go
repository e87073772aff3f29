// Package server exposes the recommendation service as an HTML form and a
// JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/recommend"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	service  *recommend.Service
	logger   *zap.Logger
	validate *validator.Validate
	pages    *template.Template
	metrics  bool
}

type Config struct {
	// Metrics mounts the Prometheus handler on /metrics.
	Metrics bool
}

func New(service *recommend.Service, cfg Config, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("recommend service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pages, err := template.New("pages").Funcs(template.FuncMap{
		"join": strings.Join,
		"has": func(items []string, item string) bool {
			for _, i := range items {
				if i == item {
					return true
				}
			}
			return false
		},
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		service:  service,
		logger:   logger,
		validate: validator.New(),
		pages:    pages,
		metrics:  cfg.Metrics,
	}, nil
}

// Handler returns the routed handler wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleFormSubmit)
	mux.HandleFunc("POST /api/rank", s.handleRank)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/postings/{id}", s.handlePosting)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return Chain(mux, s.middleware()...)
}

// middleware lists the chain outermost first. AccessLog wraps Recover so
// recovered panics are logged with their 500 status.
func (s *Server) middleware() []Middleware {
	return []Middleware{RequestID, AccessLog(s.logger), Recover(s.logger)}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return <-errCh
}
