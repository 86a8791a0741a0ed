package orders

import (
	"encoding/json"
	"time"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	FlowerID int64 `json:"flower_id"`
	Quantity int   `json:"quantity"`
}

type OrderPlacedPayload struct {
	OrderID  int64     `json:"order_id"`
	AuthorID int64     `json:"author_id"`
	Items    []ItemQty `json:"items"`
	Total    string    `json:"total"`
	Currency string    `json:"currency"`
	Date     string    `json:"date"` // YYYY-MM-DD, the statistics bucket date
}

func orderPlacedPayload(o Order) OrderPlacedPayload {
	items := make([]ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemQty{FlowerID: it.FlowerID, Quantity: it.Quantity})
	}
	return OrderPlacedPayload{
		OrderID:  o.ID,
		AuthorID: o.AuthorID,
		Items:    items,
		Total:    o.Total.StringFixed(2),
		Currency: o.Currency.String(),
		Date:     o.CreatedAt.Format(time.DateOnly),
	}
}
