// Package kafka publishes audit events to a Kafka topic. The topic is the
// durable audit log; querying happens downstream where a consumer
// materializes events, so this sink is write-only.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "nestly/pkg/platform/audit"
	"nestly/pkg/platform/sentinel"
)

// Store implements audit.Store by producing JSON records keyed by agreement
// ID, so all events for one agreement land in the same partition in order.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects to the given brokers and produces to topic.
func New(brokers []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

// recordPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by the consumer.
type recordPayload struct {
	Category    string `json:"Category"`
	Timestamp   string `json:"Timestamp"`
	AgreementID string `json:"AgreementID"`
	MatchID     string `json:"MatchID,omitempty"`
	ActorID     string `json:"ActorID,omitempty"`
	Action      string `json:"Action"`
	Detail      string `json:"Detail,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload := recordPayload{
		Category:    string(event.Category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		AgreementID: event.AgreementID.String(),
		Action:      event.Action,
		Detail:      event.Detail,
		RequestID:   event.RequestID,
	}
	if !event.MatchID.IsNil() {
		payload.MatchID = event.MatchID.String()
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.AgreementID.String()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// ListByAgreement is not supported: Kafka is write-only from this side.
func (s *Store) ListByAgreement(context.Context, string) ([]audit.Event, error) {
	return nil, fmt.Errorf("kafka audit store is write-only: %w", sentinel.ErrUnavailable)
}

// Close flushes pending produce buffers and releases the client.
func (s *Store) Close() {
	s.client.Close()
}
