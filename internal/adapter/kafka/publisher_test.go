package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/laguna-water-quality/internal/config"
	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

func summary(now time.Time) dashboard.PeriodSummary {
	ph := 7.5
	return dashboard.PeriodSummary{
		DatasetVersion: "abc123",
		Period:         "LagunaLakeStations_Q1_2024",
		Quarter:        "Q1",
		Year:           "2024",
		KPIs: domain.AggregateResult{
			Period:        "LagunaLakeStations_Q1_2024",
			Month:         "Mar",
			Scope:         "all",
			Stations:      5,
			MeanPH:        &ph,
			CompliancePct: 60,
		},
		GeneratedAt: now,
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	msg, err := serializeToMessage(summary(now))
	require.NoError(t, err)

	assert.Equal(t, []byte("LagunaLakeStations_Q1_2024"), msg.Key)
	assert.Contains(t, string(msg.Value), `"compliance_pct":60`)
	assert.Contains(t, string(msg.Value), `"mean_ph":7.5`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "dataset_version", msg.Headers[0].Key)
	assert.Equal(t, []byte("abc123"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var back dashboard.PeriodSummary
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, "Q1", back.Quarter)
	assert.Nil(t, back.KPIs.MeanDO)
}

func TestNewPublisher_UsesConfig(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"broker-1:9092"}, KafkaSummaryTopic: "summaries"}

	p := NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	assert.Equal(t, "summaries", p.writer.Topic)
	assert.Equal(t, "broker-1:9092", p.writer.Addr.String())
	assert.Equal(t, kafkago.RequireAll, p.writer.RequiredAcks)
}

func TestPublish_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaSummaryTopic: "summaries"}
	p := NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	assert.NoError(t, p.Publish(context.Background(), nil))
}
