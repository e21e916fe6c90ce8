package record

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes entries to a Kafka topic for downstream consumers
// (dashboards, long-term stores). Produces are asynchronous; Close flushes
// what is still in flight.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the given seed brokers.
func NewKafkaSink(seeds []string, topic string) (*KafkaSink, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka sink: topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka sink: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

// Record implements Sink. The activity ID keys the record so all results for
// one activity land in the same partition, in order.
func (s *KafkaSink) Record(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(entry.ActivityID),
		Value: payload,
	}
	s.client.Produce(ctx, rec, nil)
	return nil
}

// Close flushes outstanding produces and releases the client.
func (s *KafkaSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.client.Flush(ctx)
	s.client.Close()
	return err
}
