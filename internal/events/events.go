package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	Type       string       `json:"type"`
	Code       string       `json:"code"`
	Status     order.Status `json:"status"`
	Kind       order.Kind   `json:"kind"`
	Price      int64        `json:"price"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func NewEvent(typ string, o order.Order, at time.Time) Event {
	return Event{
		Type:       typ,
		Code:       o.Code,
		Status:     o.Status,
		Kind:       o.Category.Kind,
		Price:      o.Price,
		OccurredAt: at.UTC(),
	}
}

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events keyed by order code, so one order's events stay ordered.
type Publisher struct {
	writer messageWriter
}

func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func NewPublisherWith(w messageWriter) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Code),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
