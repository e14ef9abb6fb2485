package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTopic        = "A child goes to school for the first time"
	apiKeyPlaceholder   = "${OPENAI_API_KEY}"
	NarrationStructure  = "structure"
	NarrationHTML       = "html"
	defaultConfigEnvVar = "SOCIAL_STORY_CONFIG"
)

// ErrNoAPIKey is returned when generation is requested without credentials.
var ErrNoAPIKey = errors.New("API key not configured")

type Config struct {
	AI      AIConfig      `yaml:"ai" validate:"required"`
	Speech  SpeechConfig  `yaml:"speech" validate:"required"`
	Paths   PathsConfig   `yaml:"paths" validate:"required"`
	Story   StoryConfig   `yaml:"story" validate:"required"`
	Limits  Limits        `yaml:"limits" validate:"required"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type AIConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model" validate:"required"`
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" validate:"required,min=1s,max=1h"`
}

type SpeechConfig struct {
	Model   string        `yaml:"model" validate:"required"`
	Voice   string        `yaml:"voice" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"required,min=1s,max=1h"`
}

type PathsConfig struct {
	StoriesDir string `yaml:"stories_dir" validate:"required"`
}

type StoryConfig struct {
	DefaultTopic        string  `yaml:"default_topic" validate:"required"`
	MinPages            int     `yaml:"min_pages" validate:"required,min=1"`
	MaxPages            int     `yaml:"max_pages" validate:"required,gtefield=MinPages"`
	ValidationThreshold float64 `yaml:"validation_threshold" validate:"gte=0,lte=100"`
	NarrationSource     string  `yaml:"narration_source" validate:"narration_source"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	JobName        string `yaml:"job_name"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns a configuration that only lacks an API key.
func Default() Config {
	return Config{
		AI: AIConfig{
			Model:       "gpt-4",
			BaseURL:     "https://api.openai.com/v1",
			Temperature: 0.7,
			Timeout:     120 * time.Second,
		},
		Speech: SpeechConfig{
			Model:   "tts-1",
			Voice:   "alloy",
			Timeout: 60 * time.Second,
		},
		Paths: PathsConfig{
			StoriesDir: "stories",
		},
		Story: StoryConfig{
			DefaultTopic:        DefaultTopic,
			MinPages:            5,
			MaxPages:            8,
			ValidationThreshold: 70,
			NarrationSource:     NarrationStructure,
		},
		Limits: DefaultLimits(),
		Metrics: MetricsConfig{
			JobName: "social_story_generator",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration for a generation run. An API key is mandatory.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("validating config: %w (set OPENAI_API_KEY)", ErrNoAPIKey)
	}
	return cfg, nil
}

// LoadForValidation reads configuration for commands that never call the AI service.
func LoadForValidation(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(defaultConfigEnvVar)
	}
	if path != "" {
		data, err := os.ReadFile(expandTilde(path))
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.APIKey == "" || c.AI.APIKey == apiKeyPlaceholder {
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("STORY_TOPIC"); v != "" {
		c.Story.DefaultTopic = v
	}
	if v := os.Getenv("STORIES_DIR"); v != "" {
		c.Paths.StoriesDir = v
	}
	if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate() error {
	c.Paths.StoriesDir = expandTilde(c.Paths.StoriesDir)
	if c.Story.NarrationSource == "" {
		c.Story.NarrationSource = NarrationStructure
	}

	validate := validator.New()
	validate.RegisterValidation("narration_source", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case NarrationStructure, NarrationHTML:
			return true
		}
		return false
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Topic picks the run topic: CLI words first, then the configured default.
func (c *Config) Topic(args []string) string {
	if topic := strings.TrimSpace(strings.Join(args, " ")); topic != "" {
		return topic
	}
	return c.Story.DefaultTopic
}

// NewLogger builds the process logger from the log section.
func (c *Config) NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
