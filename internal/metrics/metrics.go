package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModeAI          = "ai"
	ModeHuman       = "human"
	ModeMatchmaking = "matchmaking"

	ActorHuman = "human"
	ActorAI    = "ai"

	EvictedSession    = "session"
	EvictedQueueEntry = "queue_entry"
)

type Config struct {
	Namespace string
	Registry  prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry registers the collectors somewhere other than the default registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics counts what happens to games. All methods are safe on a nil receiver.
type Metrics struct {
	sessionsCreated *prometheus.CounterVec
	moves           *prometheus.CounterVec
	roundsFinished  *prometheus.CounterVec
	matches         prometheus.Counter
	evictions       *prometheus.CounterVec
	queueLength     prometheus.Gauge
}

func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "tictactoe",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		sessionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions created, by mode.",
		}, []string{"mode"}),
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "moves_total",
			Help:      "Moves applied, by actor.",
		}, []string{"actor"}),
		roundsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "rounds_finished_total",
			Help:      "Rounds that ended, by result.",
		}, []string{"result"}),
		matches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "matches_total",
			Help:      "Pairs created by matchmaking.",
		}),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "evictions_total",
			Help:      "Expired sessions and queue entries removed by the sweep.",
		}, []string{"kind"}),
		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "queue_length",
			Help:      "Players waiting in matchmaking at the last sweep.",
		}),
	}
}

func (that *Metrics) SessionCreated(mode string) {
	if that == nil {
		return
	}
	that.sessionsCreated.WithLabelValues(mode).Inc()
}

func (that *Metrics) MoveApplied(actor string) {
	if that == nil {
		return
	}
	that.moves.WithLabelValues(actor).Inc()
}

func (that *Metrics) RoundFinished(result string) {
	if that == nil {
		return
	}
	that.roundsFinished.WithLabelValues(result).Inc()
}

func (that *Metrics) Matched() {
	if that == nil {
		return
	}
	that.matches.Inc()
}

func (that *Metrics) Evicted(kind string, count int) {
	if that == nil || count == 0 {
		return
	}
	that.evictions.WithLabelValues(kind).Add(float64(count))
}

func (that *Metrics) QueueLength(length int) {
	if that == nil {
		return
	}
	that.queueLength.Set(float64(length))
}
