// Package config loads shared runtime settings for the preparation CLIs.
// Dataset-specific parameters come from CLI flags in cmd/; everything ambient
// (logging, timeouts, optional notifications) is configured here from an
// optional YAML file overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds process-wide configuration shared by both pipelines.
type Settings struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// ProbeTimeout bounds the HEAD existence probes during URL resolution;
	// DownloadTimeout bounds the full streamed download.
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`

	// NotifyBrokers enables the Kafka artifact-published notifier when
	// non-empty. Left empty in normal CLI use.
	NotifyBrokers []string `yaml:"notify_brokers"`
	NotifyTopic   string   `yaml:"notify_topic"`
}

// Load builds Settings from defaults, an optional YAML file named by
// NAVIGATOR_CONFIG, and environment variable overrides, in that order.
func Load() (*Settings, error) {
	s := &Settings{
		LogLevel:        "info",
		LogFormat:       "text",
		ProbeTimeout:    10 * time.Second,
		DownloadTimeout: 5 * time.Minute,
		NotifyTopic:     "prepared-artifacts",
	}

	if path := os.Getenv("NAVIGATOR_CONFIG"); path != "" {
		if err := loadFile(s, path); err != nil {
			return nil, err
		}
	}

	s.LogLevel = envOrDefault("LOG_LEVEL", s.LogLevel)
	s.LogFormat = envOrDefault("LOG_FORMAT", s.LogFormat)

	var err error
	if s.ProbeTimeout, err = envDuration("PROBE_TIMEOUT", s.ProbeTimeout); err != nil {
		return nil, err
	}
	if s.DownloadTimeout, err = envDuration("DOWNLOAD_TIMEOUT", s.DownloadTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("NOTIFY_KAFKA_BROKERS"); v != "" {
		s.NotifyBrokers = parseBrokers(v)
	}
	s.NotifyTopic = envOrDefault("NOTIFY_KAFKA_TOPIC", s.NotifyTopic)

	if s.ProbeTimeout <= 0 {
		return nil, errors.New("PROBE_TIMEOUT must be positive")
	}
	if s.DownloadTimeout <= 0 {
		return nil, errors.New("DOWNLOAD_TIMEOUT must be positive")
	}
	if len(s.NotifyBrokers) > 0 && s.NotifyTopic == "" {
		return nil, errors.New("NOTIFY_KAFKA_TOPIC is required when brokers are configured")
	}

	return s, nil
}

// NotifyEnabled reports whether the artifact notifier should be constructed.
func (s *Settings) NotifyEnabled() bool {
	return len(s.NotifyBrokers) > 0
}

func loadFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func parseBrokers(v string) []string {
	parts := strings.Split(v, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
