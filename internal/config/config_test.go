package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so tests see real defaults even
// when the host environment is populated.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROVIDERS", "RUN_INTERVAL", "RUN_ONCE", "CAPTURE_TIMEOUT",
		"VIEWPORT_WIDTH", "VIEWPORT_HEIGHT", "DATA_DIR",
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
		"CLASSIFIER_SAT_MIN", "CLASSIFIER_VAL_MIN",
		"KAFKA_BROKERS", "KAFKA_ALERT_TOPIC", "KAFKA_PUBLISH_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"windy", "govmap"}, cfg.Providers)
	assert.Equal(t, 10*time.Minute, cfg.RunInterval)
	assert.False(t, cfg.RunOnce)
	assert.Equal(t, 90*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 1920, cfg.ViewportWidth)
	assert.Equal(t, 1080, cfg.ViewportHeight)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 100.0/255.0, cfg.ClassifierSatMin, 1e-9)
	assert.InDelta(t, 100.0/255.0, cfg.ClassifierValMin, 1e-9)
	assert.False(t, cfg.KafkaPublishEnabled)
	assert.Equal(t, "radar-alerts", cfg.KafkaAlertTopic)
}

func TestLoadCustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDERS", "govmap, windy ,")
	t.Setenv("RUN_INTERVAL", "2m")
	t.Setenv("RUN_ONCE", "true")
	t.Setenv("CAPTURE_TIMEOUT", "30s")
	t.Setenv("VIEWPORT_WIDTH", "1280")
	t.Setenv("VIEWPORT_HEIGHT", "720")
	t.Setenv("DATA_DIR", "/var/lib/radar")
	t.Setenv("CLASSIFIER_SAT_MIN", "128")
	t.Setenv("KAFKA_PUBLISH_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"govmap", "windy"}, cfg.Providers)
	assert.Equal(t, 2*time.Minute, cfg.RunInterval)
	assert.True(t, cfg.RunOnce)
	assert.Equal(t, 30*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 1280, cfg.ViewportWidth)
	assert.Equal(t, 720, cfg.ViewportHeight)
	assert.Equal(t, "/var/lib/radar", cfg.DataDir)
	assert.InDelta(t, 128.0/255.0, cfg.ClassifierSatMin, 1e-9)
	assert.True(t, cfg.KafkaPublishEnabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "malformed interval", key: "RUN_INTERVAL", value: "soon"},
		{name: "zero interval", key: "RUN_INTERVAL", value: "0s"},
		{name: "negative timeout", key: "CAPTURE_TIMEOUT", value: "-5s"},
		{name: "non-numeric viewport", key: "VIEWPORT_WIDTH", value: "wide"},
		{name: "zero viewport", key: "VIEWPORT_HEIGHT", value: "0"},
		{name: "saturation above byte range", key: "CLASSIFIER_SAT_MIN", value: "300"},
		{name: "negative value floor", key: "CLASSIFIER_VAL_MIN", value: "-1"},
		{name: "empty provider list", key: "PROVIDERS", value: " , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPublishRequiresBrokers(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_PUBLISH_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	assert.ErrorContains(t, err, "KAFKA_BROKERS")
}
