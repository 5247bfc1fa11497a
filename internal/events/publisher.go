package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishCartCheckedOut(ctx context.Context, meta EventMeta, payload CartCheckedOutPayload) error
	Close() error
}

type RabbitPublisher struct {
	ch       Channel
	seq      Sequencer
	producer string
}

func NewRabbitPublisher(conn *amqp.Connection, seq Sequencer) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newRabbitPublisher(ch, seq, StorefrontProducer)
}

func newRabbitPublisher(ch Channel, seq Sequencer, producer string) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, seq: seq, producer: producer}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, meta EventMeta, payload CartCheckedOutPayload) error {
	seq, err := p.seq.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	ev := newCartCheckedOutEvent(meta, seq, p.producer, payload, time.Now().UTC())
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	return p.publishJSON(ctx, CartCheckedOutRoutingKey, ev.EventID, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// NoopPublisher drops events. Used when publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishCartCheckedOut(context.Context, EventMeta, CartCheckedOutPayload) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
