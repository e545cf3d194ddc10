package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/outbox"
	"github.com/segmentio/kafka-go"
)

// Producer writes outbox messages to Kafka synchronously, so a message is
// only acknowledged once every in-sync replica has it.
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	slog.Info("Kafka producer configured", "brokers", brokers)

	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

// Publish sends the message to its topic keyed by Key, which keeps the
// events of one order on one partition.
func (p *Producer) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.Key),
		Value: msg.Payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(msg.ContentType)},
			{Key: "event-type", Value: []byte(msg.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
