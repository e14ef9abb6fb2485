package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New()

	m.ObserveAIRequest("gpt-4", "success", 2*time.Second, 150)
	m.ObserveAIRequest("gpt-4", "error", time.Second, 0)
	m.ObserveSpeech("success", time.Second)
	m.ObserveStage("quiz", "skipped")
	m.SetValidation(90)
	m.ObserveRun("passing")

	assert.Equal(t, 1.0, gathered(t, m, "social_story_ai_requests_total", "status", "success"))
	assert.Equal(t, 1.0, gathered(t, m, "social_story_ai_requests_total", "status", "error"))
	assert.Equal(t, 150.0, gathered(t, m, "social_story_ai_tokens_used_total", "", ""))
	assert.Equal(t, 1.0, gathered(t, m, "social_story_stage_outcomes_total", "outcome", "skipped"))
	assert.Equal(t, 90.0, gathered(t, m, "social_story_validation_percentage", "", ""))
	assert.Equal(t, 1.0, gathered(t, m, "social_story_runs_total", "result", "passing"))
}

// gathered sums counter and gauge samples of a family, optionally filtered by one label.
func gathered(t *testing.T, m *Metrics, name, label, value string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, sample := range mf.GetMetric() {
			if label != "" && !hasLabel(sample.GetLabel(), label, value) {
				continue
			}
			total += sample.GetCounter().GetValue() + sample.GetGauge().GetValue()
		}
	}
	return total
}

func hasLabel[L interface {
	GetName() string
	GetValue() string
}](labels []L, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAIRequest("gpt-4", "success", time.Second, 10)
		m.ObserveSpeech("error", time.Second)
		m.ObserveStage("index", "ok")
		m.SetValidation(50)
		m.ObserveRun("failing")
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.Push(context.Background(), "http://localhost:9091", "job"))
}

func TestPush(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		body  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := New()
	m.ObserveRun("passing")

	require.NoError(t, m.Push(context.Background(), server.URL, "social_story_generator"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "/metrics/job/social_story_generator/instance/"), paths[0])
	assert.NotEmpty(t, body)
}

func TestPushEmptyURLIsNoop(t *testing.T) {
	assert.NoError(t, New().Push(context.Background(), "", "job"))
}

func TestPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := New().Push(context.Background(), server.URL, "job")
	assert.Error(t, err)
}
