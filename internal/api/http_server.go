package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"showbook/internal/config"
	"showbook/internal/database"
	"showbook/internal/flags"
	"showbook/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API.
type HTTPServer struct {
	cfg      *config.Config
	bookings *service.BookingService
	models   *flags.Selector
	db       *database.DB
	logger   zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(cfg *config.Config, bookings *service.BookingService, models *flags.Selector, db *database.DB, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		models:   models,
		db:       db,
		logger:   logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/events", srv.handleAdminEvents)
	mux.HandleFunc("/admin/bookings/export", srv.handleExport)
	mux.HandleFunc("/events", srv.handleListEvents)
	mux.HandleFunc("/events/", srv.handleEventBook)
	mux.HandleFunc("/bookings/", srv.handleBooking)
	mux.HandleFunc("/flags/model", srv.handleModel)
	mux.HandleFunc("/healthz", srv.handleHealth)

	timeout := time.Duration(cfg.HTTP.RequestTimeoutSeconds) * time.Second
	handler := srv.loggingMiddleware(
		newRateLimiter(cfg.HTTP.RateLimit).wrap(
			timeoutMiddleware(timeout, mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the configured middleware chain, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
