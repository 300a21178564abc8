package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"parklot/internal/config"
	"parklot/internal/report"
	"parklot/internal/service"

	"github.com/rs/zerolog"
)

// Server is the HTTP front of the reservation system.
type Server struct {
	cfg          config.APIConfig
	reservations *service.ReservationService
	catalog      *service.CatalogService
	reporter     *report.Reporter
	auth         *HTTPAuth
	logger       *zerolog.Logger
	server       *http.Server
}

func NewServer(
	cfg config.APIConfig,
	reservations *service.ReservationService,
	catalog *service.CatalogService,
	reporter *report.Reporter,
	logger *zerolog.Logger,
) *Server {
	srv := &Server{
		cfg:          cfg,
		reservations: reservations,
		catalog:      catalog,
		reporter:     reporter,
		auth:         NewHTTPAuth(cfg),
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/reservations", srv.handleCreateReservation)
	mux.HandleFunc("GET /api/v1/reservations", srv.handleListReservations)
	mux.HandleFunc("GET /api/v1/reservations/{id}", srv.handleGetReservation)
	mux.HandleFunc("DELETE /api/v1/reservations/{id}", srv.handleCancelReservation)
	mux.HandleFunc("GET /api/v1/slots/available", srv.handleAvailableSlots)
	mux.HandleFunc("GET /api/v1/slots", srv.handleListSlots)
	mux.HandleFunc("POST /api/v1/slots", srv.handleCreateSlot)
	mux.HandleFunc("GET /api/v1/floors", srv.handleListFloors)
	mux.HandleFunc("POST /api/v1/floors", srv.handleCreateFloor)
	mux.HandleFunc("GET /api/v1/reports/reservations", srv.handleReservationReport)
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
