// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/chatflow/pkg/graph"
	"github.com/aretw0/chatflow/pkg/history"
	"github.com/aretw0/chatflow/pkg/suggest"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Self-loop policies accepted by the self_loops setting.
const (
	SelfLoopsAllow  = "allow"
	SelfLoopsReject = "reject"
)

// Config is the full service configuration.
type Config struct {
	Addr         string        `yaml:"addr" validate:"required"`
	LogLevel     string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	HistoryLimit int           `yaml:"history_limit" validate:"gte=1"`
	BurstWindow  time.Duration `yaml:"burst_window" validate:"gt=0"`
	SelfLoops    string        `yaml:"self_loops" validate:"oneof=allow reject"`
	Suggest      Suggest       `yaml:"suggest"`
}

// Suggest configures the suggestion provider.
type Suggest struct {
	Delay   time.Duration `yaml:"delay" validate:"gte=0"`
	Breaker Breaker       `yaml:"breaker"`
}

// Breaker configures the circuit breaker around the provider.
type Breaker struct {
	MaxRequests      uint32        `yaml:"max_requests" validate:"gte=1"`
	Interval         time.Duration `yaml:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" validate:"gte=1"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	b := suggest.DefaultBreakerSettings()
	return &Config{
		Addr:         ":8080",
		LogLevel:     "info",
		HistoryLimit: history.DefaultLimit,
		BurstWindow:  history.DefaultBurstWindow,
		SelfLoops:    SelfLoopsAllow,
		Suggest: Suggest{
			Delay: suggest.DefaultMockDelay,
			Breaker: Breaker{
				MaxRequests:      b.MaxRequests,
				Interval:         b.Interval,
				Timeout:          b.Timeout,
				FailureThreshold: b.FailureThreshold,
				MinRequests:      b.MinRequests,
			},
		},
	}
}

// Load reads path over the defaults, applies CHATFLOW_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CHATFLOW_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("CHATFLOW_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("CHATFLOW_HISTORY_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHATFLOW_HISTORY_LIMIT: %w", err)
		}
		c.HistoryLimit = n
	}
	if v, ok := lookup("CHATFLOW_SELF_LOOPS"); ok && v != "" {
		c.SelfLoops = strings.ToLower(v)
	}
	return nil
}

// Validate checks the struct rules.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Policy returns the connection policy selected by SelfLoops.
func (c *Config) Policy() graph.Policy {
	return graph.Policy{RejectSelfLoops: c.SelfLoops == SelfLoopsReject}
}

// BreakerSettings converts the breaker section for suggest.NewBreaker.
func (c *Config) BreakerSettings() suggest.BreakerSettings {
	s := suggest.DefaultBreakerSettings()
	s.MaxRequests = c.Suggest.Breaker.MaxRequests
	s.Interval = c.Suggest.Breaker.Interval
	s.Timeout = c.Suggest.Breaker.Timeout
	s.FailureThreshold = c.Suggest.Breaker.FailureThreshold
	s.MinRequests = c.Suggest.Breaker.MinRequests
	return s
}
