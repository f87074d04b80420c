package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
	"github.com/rocketscienceinc/tictactoe-arena/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-arena/internal/worker"
	"github.com/rocketscienceinc/tictactoe-arena/transport/rest"
)

const (
	shutdownTimeout = 10 * time.Second
	// matchTTL is how long a match waits for the second player to poll.
	matchTTL = time.Minute
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type repositories struct {
	sessions repository.SessionRepository
	queue    repository.QueueRepository
	close    func()
}

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	repos, err := openRepositories(ctx, log, conf)
	if err != nil {
		return err
	}
	defer repos.close()

	recorder, gatherer := newMetrics(conf)
	clock := pkg.NewClock()

	games := usecase.NewGameManager(logger, repos.sessions, service.NewBotService(nil), clock, recorder, usecase.Options{
		AIMoveDelay: conf.Game.AIMoveDelay,
		SessionTTL:  conf.Game.SessionTTL,
	})
	defer games.Close()

	queue := service.NewMatchmakingService(logger, repos.queue, clock, matchTTL)
	matchmaker := usecase.NewMatchmaker(queue, games, recorder, conf.Game.QueueTTL)

	janitor := worker.NewJanitor(logger, clock, conf.Game.SweepInterval, map[string]worker.Sweeper{
		"sessions": games,
		"queue":    matchmaker,
	})
	go janitor.Run(ctx)

	server := rest.NewServer(logger, conf.HTTPPort, rest.NewRouter(rest.RouterConfig{
		Logger:     logger,
		Games:      games,
		Matchmaker: matchmaker,
		Gatherer:   gatherer,
	}))

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
		if httpErr := server.Start(); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, log *slog.Logger, conf *config.Config) (*repositories, error) {
	if conf.Storage == config.StorageMemory {
		return &repositories{
			sessions: repository.NewMemorySessionRepository(),
			queue:    repository.NewMemoryQueueRepository(),
			close:    func() {},
		}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Addr:     redisAddrString,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return &repositories{
		sessions: repository.NewSessionRepository(redisStorage.Connection),
		queue:    repository.NewQueueRepository(redisStorage.Connection),
		close: func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		},
	}, nil
}

// newMetrics returns a nil recorder and gatherer when metrics are disabled.
func newMetrics(conf *config.Config) (*metrics.Metrics, prometheus.Gatherer) {
	if !conf.Metrics.Enabled {
		return nil, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return metrics.New(metrics.WithNamespace(conf.Metrics.Namespace), metrics.WithRegistry(registry)), registry
}
