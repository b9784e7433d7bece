package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
// Immutable after Load; passed into constructors, never mutated globally.
type Config struct {
	Providers      []string
	RunInterval    time.Duration
	RunOnce        bool
	CaptureTimeout time.Duration
	ViewportWidth  int
	ViewportHeight int
	DataDir        string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Classifier saturation/value floors on the legend's 0–255 scale,
	// stored normalized to 0–1.
	ClassifierSatMin float64
	ClassifierValMin float64

	// Kafka alert publishing configuration.
	KafkaBrokers        []string
	KafkaAlertTopic     string
	KafkaPublishEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	runInterval, err := parseDurationEnv("RUN_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	captureTimeout, err := parseDurationEnv("CAPTURE_TIMEOUT", "90s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	viewportWidth, err := parseIntEnv("VIEWPORT_WIDTH", 1920)
	if err != nil {
		return nil, err
	}
	viewportHeight, err := parseIntEnv("VIEWPORT_HEIGHT", 1080)
	if err != nil {
		return nil, err
	}

	satMin, err := parseByteScaleEnv("CLASSIFIER_SAT_MIN", 100)
	if err != nil {
		return nil, err
	}
	valMin, err := parseByteScaleEnv("CLASSIFIER_VAL_MIN", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Providers:      splitList(envOrDefault("PROVIDERS", "windy,govmap")),
		RunInterval:    runInterval,
		RunOnce:        os.Getenv("RUN_ONCE") == "true",
		CaptureTimeout: captureTimeout,
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		DataDir:        envOrDefault("DATA_DIR", "data"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ClassifierSatMin: satMin,
		ClassifierValMin: valMin,

		KafkaBrokers:        splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic:     envOrDefault("KAFKA_ALERT_TOPIC", "radar-alerts"),
		KafkaPublishEnabled: os.Getenv("KAFKA_PUBLISH_ENABLED") == "true",
	}

	if len(cfg.Providers) == 0 {
		return nil, errors.New("PROVIDERS is required")
	}
	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.KafkaPublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_PUBLISH_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaPublishEnabled && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_PUBLISH_ENABLED is true but KAFKA_ALERT_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseByteScaleEnv reads a 0–255 threshold and normalizes it to 0–1.
func parseByteScaleEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback / 255.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 255 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v / 255.0, nil
}
