package config

import "time"

type Limits struct {
	PageWorkers  int             `yaml:"page_workers" validate:"required,min=1,max=32"`
	AudioWorkers int             `yaml:"audio_workers" validate:"required,min=1,max=32"`
	TotalTimeout time.Duration   `yaml:"total_timeout" validate:"required,min=1m,max=24h"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		PageWorkers:  4,
		AudioWorkers: 4,
		TotalTimeout: 2 * time.Hour,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         5,
		},
	}
}
