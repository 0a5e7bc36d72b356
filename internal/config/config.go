package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwillemsen/baanradar/internal/geo"
	"github.com/jwillemsen/baanradar/internal/scheduler"
)

// Config is the root configuration for the BaanRadar pipeline.
type Config struct {
	DBPath       string
	HTTPTimeout  time.Duration
	Schedule     ScheduleConfig
	Brokers      []BrokerConfig
	Geocoder     GeocoderConfig
	Skills       SkillsConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Home         *HomeConfig
}

// ScheduleConfig holds the daily wall-clock times for the scrape and sweep jobs.
type ScheduleConfig struct {
	ScrapeTimes []scheduler.TimeOfDay
	SweepTimes  []scheduler.TimeOfDay
}

// BrokerConfig enables or disables a single broker scraper.
type BrokerConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// GeocoderConfig configures the MapQuest geocoding client.
type GeocoderConfig struct {
	BaseURL string // defaults to the MapQuest open Nominatim endpoint
	APIKey  string // expanded from env var by Load
}

// SkillsConfig holds the skill catalog and the optional LLM matcher settings.
type SkillsConfig struct {
	Catalog []string
	AI      AIConfig
}

// AIConfig controls the optional OpenAI skill matcher.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// RateLimitConfig controls broker-level rate limiting.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same broker
	BrokerOverrides map[string]time.Duration // per-broker overrides, keyed by broker name
}

// MinDelayFor returns the configured delay for the given broker, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(broker string) time.Duration {
	if d, ok := r.BrokerOverrides[broker]; ok {
		return d
	}
	return r.MinDelay
}

// RetryConfig controls the retry decorator around each scraper.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// HomeConfig is the commute reference point shown in the browse view.
type HomeConfig struct {
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	DBPath       string             `yaml:"db_path"`
	HTTPTimeout  string             `yaml:"http_timeout"`
	Schedule     rawScheduleConfig  `yaml:"schedule"`
	Brokers      []BrokerConfig     `yaml:"brokers"`
	Geocoder     rawGeocoderConfig  `yaml:"geocoder"`
	Skills       rawSkillsConfig    `yaml:"skills"`
	Notification NotificationConfig `yaml:"notification"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Home         *HomeConfig        `yaml:"home"`
}

type rawScheduleConfig struct {
	ScrapeTimes []string `yaml:"scrape_times"`
	SweepTimes  []string `yaml:"sweep_times"`
}

type rawGeocoderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type rawSkillsConfig struct {
	Catalog []string    `yaml:"catalog"`
	AI      rawAIConfig `yaml:"ai"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	BrokerOverrides map[string]string `yaml:"broker_overrides"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = "baanradar.db"
	}

	httpTimeout := 30 * time.Second // default
	if raw.HTTPTimeout != "" {
		httpTimeout, err = time.ParseDuration(raw.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse http_timeout %q: %w", raw.HTTPTimeout, err)
		}
	}

	scrapeTimes, err := parseTimes(raw.Schedule.ScrapeTimes, []string{"12:00", "18:00"})
	if err != nil {
		return nil, fmt.Errorf("parse schedule.scrape_times: %w", err)
	}
	sweepTimes, err := parseTimes(raw.Schedule.SweepTimes, []string{"11:30", "17:30"})
	if err != nil {
		return nil, fmt.Errorf("parse schedule.sweep_times: %w", err)
	}

	geocoderBaseURL := raw.Geocoder.BaseURL
	if geocoderBaseURL == "" {
		geocoderBaseURL = geo.DefaultMapQuestURL
	}

	rateLimitDelay := 2 * time.Second // default
	if raw.RateLimit.MinDelay != "" {
		rateLimitDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	brokerOverrides := make(map[string]time.Duration)
	for broker, rawDelay := range raw.RateLimit.BrokerOverrides {
		d, err := time.ParseDuration(rawDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.broker_overrides[%q]: %w", broker, err)
		}
		brokerOverrides[broker] = d
	}

	maxRetries := 2 // default
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}
	retryBaseDelay := 5 * time.Second // default
	if raw.Retry.BaseDelay != "" {
		retryBaseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	aiTimeout := 30 * time.Second // default
	if raw.Skills.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.Skills.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse skills.ai.timeout %q: %w", raw.Skills.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.Skills.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	cfg := &Config{
		DBPath:      dbPath,
		HTTPTimeout: httpTimeout,
		Schedule: ScheduleConfig{
			ScrapeTimes: scrapeTimes,
			SweepTimes:  sweepTimes,
		},
		Brokers:  raw.Brokers,
		Geocoder: GeocoderConfig{BaseURL: geocoderBaseURL, APIKey: raw.Geocoder.APIKey},
		Skills: SkillsConfig{
			Catalog: raw.Skills.Catalog,
			AI: AIConfig{
				Enabled: raw.Skills.AI.Enabled,
				BaseURL: aiBaseURL,
				Model:   raw.Skills.AI.Model,
				APIKey:  raw.Skills.AI.APIKey,
				Timeout: aiTimeout,
			},
		},
		Notification: raw.Notification,
		RateLimit: RateLimitConfig{
			MinDelay:        rateLimitDelay,
			BrokerOverrides: brokerOverrides,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  retryBaseDelay,
		},
		Home: raw.Home,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseTimes(raw, defaults []string) ([]scheduler.TimeOfDay, error) {
	if len(raw) == 0 {
		raw = defaults
	}
	times := make([]scheduler.TimeOfDay, len(raw))
	for i, s := range raw {
		t, err := scheduler.ParseTimeOfDay(s)
		if err != nil {
			return nil, err
		}
		times[i] = t
	}
	return times, nil
}

func validate(cfg *Config) error {
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}

	enabled := 0
	for _, b := range cfg.Brokers {
		if b.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one broker must be enabled")
	}

	if cfg.Geocoder.APIKey == "" {
		return fmt.Errorf("geocoder.api_key is required")
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	ai := cfg.Skills.AI
	if ai.Enabled {
		if ai.APIKey == "" {
			return fmt.Errorf("skills.ai.api_key is required when skills.ai.enabled is true")
		}
		if ai.Model == "" {
			return fmt.Errorf("skills.ai.model is required when skills.ai.enabled is true")
		}
		if len(cfg.Skills.Catalog) == 0 {
			return fmt.Errorf("skills.catalog must not be empty when skills.ai.enabled is true")
		}
	}

	return nil
}
