package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/clorindastore/storefront-backend/internal/logging"
	"github.com/clorindastore/storefront-backend/internal/order"
)

// Topic carries the order lifecycle stream consumed by downstream
// services (fulfilment, analytics).
const Topic = "storefront.orders"

const publishTimeout = 5 * time.Second

// OrderEvent is the wire shape of one lifecycle event.
type OrderEvent struct {
	Type        string `json:"type"`
	OrderNumber string `json:"orderNumber"`
	UserID      int    `json:"userId"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurredAt"`
}

// Publisher emits order lifecycle events to Kafka. Publishing is
// fire-and-forget: a broker outage is logged and never fails the
// request that produced the event.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a publisher from a comma separated broker list.
// An empty list returns a disabled publisher whose methods no-op.
func NewPublisher(brokersCSV string) *Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool { return p.writer != nil }

func (p *Publisher) OrderCreated(ord *order.Order) {
	p.publish("order.created", ord)
}

func (p *Publisher) OrderPaid(ord *order.Order) {
	p.publish("order.paid", ord)
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) publish(eventType string, ord *order.Order) {
	if p.writer == nil {
		return
	}
	evt := OrderEvent{
		Type:        eventType,
		OrderNumber: ord.OrderNumber,
		UserID:      ord.UserID,
		TotalAmount: ord.TotalAmount,
		Status:      string(ord.OrderStatus),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		logging.Log(logging.Event{Service: "events", Event: "publish_failed", OrderNumber: ord.OrderNumber, Error: err.Error()})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ord.OrderNumber),
			Value: data,
			Time:  time.Now().UTC(),
		})
		if err != nil {
			logging.Log(logging.Event{Service: "events", Event: "publish_failed", OrderNumber: ord.OrderNumber, Error: err.Error()})
		}
	}()
}
