package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes user-action events (login, request created, ...) to a
// Kafka topic. It is best-effort: a broker outage never fails the user action.
// A nil *Producer is valid and drops everything, so callers don't branch on
// whether events are configured.
type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

type Event struct {
	Action string         `json:"action"`
	UserID uint           `json:"user_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	At     time.Time      `json:"at"`
}

func NewProducer(brokers []string, topic string, log *slog.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, action string, userID uint, data map[string]any) {
	if p == nil {
		return
	}
	ev := Event{Action: action, UserID: userID, Data: data, At: time.Now().UTC()}
	value, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event_encode_failed", "action", action, "error", err)
		return
	}
	msg := kafka.Message{Key: []byte(action), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("event_publish_failed", "action", action, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
