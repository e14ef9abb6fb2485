package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dotcommander/socialstory/internal/config"
	"github.com/dotcommander/socialstory/internal/metrics"
)

// Speaker turns narration text into an mp3 file.
type Speaker struct {
	api     SpeechCreator
	model   string
	voice   string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type SpeakerOption func(*Speaker)

func WithSpeakerMetrics(m *metrics.Metrics) SpeakerOption {
	return func(s *Speaker) {
		s.metrics = m
	}
}

func WithSpeakerLogger(logger *slog.Logger) SpeakerOption {
	return func(s *Speaker) {
		s.logger = logger
	}
}

func NewSpeaker(api SpeechCreator, cfg config.SpeechConfig, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		api:     api,
		model:   cfg.Model,
		voice:   cfg.Voice,
		timeout: cfg.Timeout,
		logger:  slog.Default().With("component", "speaker"),
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize streams speech for text into dest. dest only appears once the
// whole stream has been written.
func (s *Speaker) Synthesize(ctx context.Context, text, dest string) bool {
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("no narration text", "dest", dest)
		return false
	}

	start := time.Now()
	if err := s.synthesize(ctx, text, dest); err != nil {
		s.logger.Error("speech synthesis failed",
			"dest", dest,
			"status", statusOf(err),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		s.metrics.ObserveSpeech("error", time.Since(start))
		return false
	}

	s.metrics.ObserveSpeech("success", time.Since(start))
	s.logger.Debug("speech written", "dest", dest, "duration_ms", time.Since(start).Milliseconds())
	return true
}

func (s *Speaker) synthesize(ctx context.Context, text, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("requesting speech: %w", err)
	}
	defer resp.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.mp3")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, resp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = fmt.Errorf("empty audio stream")
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing audio: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming audio file: %w", err)
	}
	return nil
}
