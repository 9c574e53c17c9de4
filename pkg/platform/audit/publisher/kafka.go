package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "surety/pkg/platform/audit"
)

// Kafka publishes audit events to per-category topics
// (<prefix>.compliance, <prefix>.security, <prefix>.operations).
// Compliance-category events are produced synchronously: the caller blocks
// until the broker acknowledges, because regulatory events must not be lost.
// Other categories are produced asynchronously with logged failures.
type Kafka struct {
	client      *kgo.Client
	topicPrefix string
	logger      *slog.Logger
}

// KafkaOption configures the Kafka publisher.
type KafkaOption func(*Kafka)

// WithLogger sets a logger for async produce failures.
func WithLogger(logger *slog.Logger) KafkaOption {
	return func(k *Kafka) {
		k.logger = logger
	}
}

// WithTopicPrefix overrides the default "surety.audit" topic prefix.
func WithTopicPrefix(prefix string) KafkaOption {
	return func(k *Kafka) {
		k.topicPrefix = prefix
	}
}

// NewKafka creates a Kafka-backed audit publisher.
func NewKafka(brokers []string, opts ...KafkaOption) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	k := &Kafka{
		client:      client,
		topicPrefix: "surety.audit",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Emit publishes the event to its category topic, keyed by subject so all
// events for one policy or account land in one partition, in order.
func (k *Kafka) Emit(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: fmt.Sprintf("%s.%s", k.topicPrefix, event.Category),
		Key:   []byte(event.Subject),
		Value: payload,
	}

	if event.Category == audit.CategoryCompliance {
		if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce compliance audit event: %w", err)
		}
		return nil
	}

	k.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			k.logger.Warn("audit event publish failed",
				"topic", r.Topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and releases the client.
func (k *Kafka) Close() {
	_ = k.client.Flush(context.Background())
	k.client.Close()
}
