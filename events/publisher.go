package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"usuarios-api/config"
	"usuarios-api/models"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

// Publisher announces user lifecycle changes to other services.
type Publisher interface {
	Publish(ctx context.Context, event models.UserEvent) error
	Close() error
}

// New returns a Kafka publisher when brokers are configured and a no-op one
// otherwise.
func New(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		return NopPublisher{}
	}
	return NewKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	})
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish writes one message keyed by user id so events for the same user
// land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.UserEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: data,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.UserEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
