// Package metrics collects run counters in a private registry and pushes them
// to a Prometheus Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	aiRequests      *prometheus.CounterVec
	aiDuration      *prometheus.HistogramVec
	tokensUsed      prometheus.Counter
	speechRequests  *prometheus.CounterVec
	speechDuration  prometheus.Histogram
	stageOutcomes   *prometheus.CounterVec
	validationScore prometheus.Gauge
	runsTotal       *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		logger:   slog.Default().With("component", "metrics"),
		aiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_story_ai_requests_total",
				Help: "Chat completion requests, partitioned by model and status.",
			},
			[]string{"model", "status"},
		),
		aiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "social_story_ai_request_duration_seconds",
				Help:    "Chat completion latency.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
			},
			[]string{"model"},
		),
		tokensUsed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "social_story_ai_tokens_used_total",
				Help: "Tokens consumed by chat completions.",
			},
		),
		speechRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_story_speech_requests_total",
				Help: "Speech synthesis requests, partitioned by status.",
			},
			[]string{"status"},
		),
		speechDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "social_story_speech_request_duration_seconds",
				Help:    "Speech synthesis latency.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 60},
			},
		),
		stageOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_story_stage_outcomes_total",
				Help: "Pipeline stage outcomes, partitioned by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		validationScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "social_story_validation_percentage",
				Help: "Validation percentage of the last generated story.",
			},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_story_runs_total",
				Help: "Pipeline runs, partitioned by result.",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAIRequest(model, status string, duration time.Duration, tokens int) {
	if m == nil {
		return
	}
	m.aiRequests.WithLabelValues(model, status).Inc()
	m.aiDuration.WithLabelValues(model).Observe(duration.Seconds())
	if tokens > 0 {
		m.tokensUsed.Add(float64(tokens))
	}
}

func (m *Metrics) ObserveSpeech(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.speechRequests.WithLabelValues(status).Inc()
	m.speechDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveStage(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageOutcomes.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) SetValidation(percentage float64) {
	if m == nil {
		return
	}
	m.validationScore.Set(percentage)
}

func (m *Metrics) ObserveRun(result string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
}

// Push sends the registry to a Pushgateway, grouped by host and pid.
// An empty url is a no-op.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
		m.logger.Warn("could not get hostname", "error", err)
	}
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	pusher := push.New(url, job).Gatherer(m.registry).Grouping("instance", instanceID)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}

	m.logger.Debug("metrics pushed", "job", job, "instance", instanceID)
	return nil
}
