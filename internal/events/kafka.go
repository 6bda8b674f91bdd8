package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishAttempts = 3

// KafkaPublisher writes events to a single Kafka topic, keyed by event type.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	env, err := json.Marshal(Envelope{Type: eventType, At: time.Now().UTC(), Payload: body})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	msg := kafka.Message{Key: []byte(eventType), Value: env}
	for i := 0; i < publishAttempts; i++ {
		if err = p.writer.WriteMessages(ctx, msg); err == nil {
			return nil
		}
		p.log.Warnw("kafka publish failed", "type", eventType, "attempt", i+1, "err", err)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("publish %s after %d attempts: %w", eventType, publishAttempts, err)
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
