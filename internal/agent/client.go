package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/dotcommander/socialstory/internal/config"
	"github.com/dotcommander/socialstory/internal/metrics"
)

// Client calls the chat completion endpoint. It never retries: a failed
// call is logged and reported through the ok result.
type Client struct {
	api         ChatCompleter
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	tokens      TokenCounter
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Client) {
		c.tokens = counter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewOpenAI builds the go-openai client shared by Client and Speaker.
func NewOpenAI(cfg config.AIConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewClient wires a Client from the ai and rate limit sections.
func NewClient(api ChatCompleter, cfg *config.Config, opts ...Option) *Client {
	base := []Option{
		WithTemperature(cfg.AI.Temperature),
		WithTimeout(cfg.AI.Timeout),
		WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
	}
	return New(api, cfg.AI.Model, append(base, opts...)...)
}

func New(api ChatCompleter, model string, opts ...Option) *Client {
	c := &Client{
		api:         api,
		model:       model,
		temperature: 0.7,
		timeout:     120 * time.Second,
		limiter:     rate.NewLimiter(rate.Limit(1), 5), // 60 req/min
		logger:      slog.Default().With("component", "ai_client"),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewTokenEstimator(model)
	}

	c.logger.Debug("AI client initialized",
		"model", c.model,
		"temperature", c.temperature,
		"timeout", c.timeout,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

func (c *Client) Model() string {
	return c.model
}

// Call sends prompt (and system, when non-empty) as one chat completion.
// Every failure yields ("", 0, false).
func (c *Client) Call(ctx context.Context, prompt, system string) (string, int, bool) {
	requestID := fmt.Sprintf("api_%d", time.Now().UnixNano())
	startTime := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error("rate limit wait failed",
			"request_id", requestID,
			"error", err)
		c.metrics.ObserveAIRequest(c.model, "rate_limited", time.Since(startTime), 0)
		return "", 0, false
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("sending chat completion",
		"request_id", requestID,
		"model", c.model,
		"prompt_length", len(prompt),
		"has_system", system != "")

	attemptStart := time.Now()
	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	duration := time.Since(attemptStart)

	if err != nil {
		c.logger.Error("AI request failed",
			"request_id", requestID,
			"duration_ms", duration.Milliseconds(),
			"status", statusOf(err),
			"error", err)
		c.metrics.ObserveAIRequest(c.model, "error", duration, 0)
		return "", 0, false
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("AI returned an empty response",
			"request_id", requestID,
			"duration_ms", duration.Milliseconds())
		c.metrics.ObserveAIRequest(c.model, "error_empty_response", duration, 0)
		return "", 0, false
	}

	text := resp.Choices[0].Message.Content
	tokens := resp.Usage.TotalTokens
	status := "success"
	if tokens == 0 {
		tokens = c.tokens.Count(system, prompt, text)
		status = "success_estimated"
		c.logger.Warn("usage not reported, using estimated token count",
			"request_id", requestID,
			"estimated_tokens", tokens)
	}

	c.metrics.ObserveAIRequest(c.model, status, duration, tokens)
	c.logger.Info("AI request successful",
		"request_id", requestID,
		"duration_ms", duration.Milliseconds(),
		"response_length", len(text),
		"tokens", tokens,
		"total_duration_ms", time.Since(startTime).Milliseconds())

	return text, tokens, true
}

// statusOf extracts the HTTP status from a go-openai error, or 0.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
