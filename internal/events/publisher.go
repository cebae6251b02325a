package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"notion-forms/internal/config"
)

const TypeRecordCreated = "record.created"

// RecordCreated is published after a submission was written to Notion.
type RecordCreated struct {
	Type         string    `json:"type"`
	SubmissionID string    `json:"submission_id"`
	DatabaseID   string    `json:"database_id"`
	PageID       string    `json:"page_id"`
	URL          string    `json:"url"`
	UserID       string    `json:"user_id,omitempty"`
	Workspace    string    `json:"workspace,omitempty"`
	TraceID      string    `json:"trace_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher announces created records to downstream consumers.
type Publisher interface {
	PublishRecordCreated(ctx context.Context, ev RecordCreated) error
	Close() error
}

// New returns a Kafka publisher when events are enabled, else a no-op one.
func New(cfg config.EventsConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events enabled but no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("events enabled but no topic configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
	}
	log.Printf("events: publishing to %s on %v", cfg.Topic, brokers)
	return NewKafkaPublisher(w), nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by database id so
// records of one database stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishRecordCreated(ctx context.Context, ev RecordCreated) error {
	if ev.Type == "" {
		ev.Type = TypeRecordCreated
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.DatabaseID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if ev.TraceID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "trace_id", Value: []byte(ev.TraceID)})
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishRecordCreated(context.Context, RecordCreated) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }
