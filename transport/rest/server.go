package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Logger     *slog.Logger
	Games      gameManager
	Matchmaker matchmaker
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(recoveryMiddleware(cfg.Logger))

	ping := newPingHandler(cfg.Games, cfg.Matchmaker)
	router.HandleFunc("/ping", ping.Ping).Methods(http.MethodGet)
	router.HandleFunc("/health", ping.Health).Methods(http.MethodGet)

	if cfg.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(loggingMiddleware(cfg.Logger))

	sessions := newSessionHandler(cfg.Games)
	api.HandleFunc("/sessions", sessions.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessions.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessions.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/join", sessions.Join).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/move", sessions.Move).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/leave", sessions.Leave).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/rematch", sessions.Rematch).Methods(http.MethodPost)

	matchmaking := newMatchmakingHandler(cfg.Matchmaker)
	api.HandleFunc("/matchmaking", matchmaking.Enqueue).Methods(http.MethodPost)
	api.HandleFunc("/matchmaking/{player_id}", matchmaking.Status).Methods(http.MethodGet)
	api.HandleFunc("/matchmaking/{player_id}", matchmaking.Leave).Methods(http.MethodDelete)
	api.HandleFunc("/matchmaking/{player_id}/match", matchmaking.Match).Methods(http.MethodPost)

	return router
}

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(logger *slog.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (that *Server) Start() error {
	that.logger.Info("http server listening", "addr", that.srv.Addr)

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
