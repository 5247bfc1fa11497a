package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchema       = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
)

type CartCheckedOutEvent struct {
	EventEnvelope
	Payload CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	OrderID     string               `json:"orderId"`
	CartKey     string               `json:"cartKey"`
	UserID      string               `json:"userId"`
	Items       []CartCheckedOutItem `json:"items"`
	Subtotal    int64                `json:"subtotal"`
	Tax         int64                `json:"tax"`
	TotalAmount int64                `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

func newCartCheckedOutEvent(meta EventMeta, seq int64, producer string, payload CartCheckedOutPayload, occurredAt time.Time) CartCheckedOutEvent {
	if payload.Items == nil {
		payload.Items = []CartCheckedOutItem{}
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = occurredAt
	}
	return CartCheckedOutEvent{
		EventEnvelope: EventEnvelope{
			EventName:     CartCheckedOutEventName,
			EventVersion:  CartCheckedOutEventVersion,
			EventID:       uuid.NewString(),
			CorrelationID: meta.CorrelationID,
			CausationID:   meta.CausationID,
			Producer:      producer,
			PartitionKey:  meta.PartitionKey,
			Sequence:      seq,
			OccurredAt:    occurredAt,
			Schema:        CartCheckedOutSchema,
		},
		Payload: payload,
	}
}
