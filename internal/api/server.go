package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"crypto_converter/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ConversionService resolves conversion requests.
type ConversionService interface {
	Convert(ctx context.Context, req domain.ConversionRequest) (domain.Conversion, error)
}

// Server is the caller-facing HTTP boundary over the conversion resolver.
type Server struct {
	converter ConversionService
	srv       *http.Server
}

// NewServer creates the HTTP server on addr.
func NewServer(addr string, converter ConversionService) *Server {
	s := &Server{converter: converter}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// NewRouter builds the route table.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Get("/health", s.handleHealth)
	r.Get("/convert", s.handleConvert)

	return r
}

// Start runs the listener until it fails or Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP API listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
		)
	})
}
