//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/rainalert/radar-monitor/internal/adapter/kafka"
	"github.com/rainalert/radar-monitor/internal/config"
	"github.com/rainalert/radar-monitor/internal/domain"
)

const testAlertTopic = "test-radar-alerts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a topic through the controller broker.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func sampleResult(stamp time.Time, alert domain.AlertLevel) domain.AggregateResult {
	yellow, _ := domain.BandByColor("yellow")
	orange, _ := domain.BandByColor("orange")
	red, _ := domain.BandByColor("red")
	analysis := domain.SourceAnalysis{
		Provider:  domain.ProviderWindy,
		Timestamp: stamp,
		Measurements: []domain.ColorBandMeasurement{
			domain.NewMeasurement(yellow, 1.62),
			domain.NewMeasurement(orange, 0.31),
			domain.NewMeasurement(red, 0),
		},
		AlertLevel:         alert,
		HasSignificantRain: alert != domain.AlertNone,
	}
	return domain.AggregateResult{
		Timestamp: stamp,
		Sources: map[string]domain.SourceResult{
			domain.ProviderWindy: {
				Screenshot: "data/screenshots/windy_20260115_083000.png",
				Analysis:   &analysis,
			},
		},
	}
}

// TestPublisherEndToEnd verifies that a published aggregate result round-trips
// through a real broker with its key and headers intact.
func TestPublisherEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAlertTopic: testAlertTopic,
	}

	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	stamp := time.Date(2026, time.January, 15, 8, 30, 0, 0, time.UTC)
	want := sampleResult(stamp, domain.AlertWarning)
	require.NoError(t, publisher.Publish(ctx, want))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alert topic")

	assert.Equal(t, "latest", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "warning", headers["alert_level"])
	assert.Equal(t, stamp.Format(time.RFC3339), headers["captured_at"])

	var got domain.AggregateResult
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, want.Timestamp, got.Timestamp)
	require.Contains(t, got.Sources, domain.ProviderWindy)

	entry := got.Sources[domain.ProviderWindy]
	require.NotNil(t, entry.Analysis)
	assert.Equal(t, domain.AlertWarning, entry.Analysis.AlertLevel)
	assert.True(t, entry.Analysis.HasSignificantRain)

	yellow, ok := entry.Analysis.Measurement("yellow")
	require.True(t, ok)
	assert.Equal(t, 1.62, yellow.Percent)
	assert.Equal(t, "35-40", yellow.DBZRange())
}

// TestPublisherSupersedingResults verifies that successive runs publish under
// the same key so a compacted topic converges on the newest result.
func TestPublisherSupersedingResults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAlertTopic: testAlertTopic,
	}

	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	first := time.Date(2026, time.January, 15, 8, 30, 0, 0, time.UTC)
	second := first.Add(10 * time.Minute)
	require.NoError(t, publisher.Publish(ctx, sampleResult(first, domain.AlertSevere)))
	require.NoError(t, publisher.Publish(ctx, sampleResult(second, domain.AlertNone)))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var keys []string
	var last kafkago.Message
	for i := 0; i < 2; i++ {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err)
		keys = append(keys, string(msg.Key))
		last = msg
	}

	assert.Equal(t, []string{"latest", "latest"}, keys)

	var got domain.AggregateResult
	require.NoError(t, json.Unmarshal(last.Value, &got))
	assert.Equal(t, second, got.Timestamp, "newest publish wins under compaction")
}
