package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventTypeOrderCompleted = "OrderCompleted"

// OrderCompletedEvent is published once per committed order. It carries
// everything an invoice renderer needs.
type OrderCompletedEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	OwnerID   int64           `json:"owner_id"`
	OwnerName string          `json:"owner_name"`
	Total     decimal.Decimal `json:"total"`
	Lines     []OrderLine     `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewOrderCompletedEvent(o *Order) OrderCompletedEvent {
	return OrderCompletedEvent{
		OrderID:   o.ID,
		OwnerID:   o.OwnerID,
		OwnerName: o.OwnerName,
		Total:     o.Total,
		Lines:     o.Lines,
		CreatedAt: o.CreatedAt,
	}
}
