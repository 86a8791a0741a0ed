package orders

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Flower is the catalog product an order line points at.
type Flower struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Cashback int // percent of the line amount returned to the buyer
	InStock  bool
}

type Order struct {
	ID              int64
	AuthorID        int64
	RecipientID     *int64
	StatusDeliverID *int64
	FullName        string
	Address         string
	Flat            string
	Comment         string
	Comment2        string
	IsCall          bool
	IsPromoCode     bool
	Total           decimal.Decimal
	Cashback        decimal.Decimal
	DeliverPrice    decimal.Decimal
	Currency        currency.Unit
	Items           []OrderItem
	CreatedAt       time.Time // server-local calendar day, stored as UTC midnight
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	FlowerID  int64
	Quantity  int
	CreatedAt time.Time
}

// PlaceOrderRequest is the checkout payload. Monetary fields are not accepted from the
// client; they are computed from catalog prices when the order is stored.
type PlaceOrderRequest struct {
	RecipientID     *int64          `json:"recipient" validate:"omitempty,gt=0"`
	StatusDeliverID *int64          `json:"status_deliver" validate:"omitempty,gt=0"`
	FullName        string          `json:"full_name" validate:"max=250"`
	Address         string          `json:"adress" validate:"max=250"`
	Flat            string          `json:"flat" validate:"max=250"`
	Comment         string          `json:"comment" validate:"max=250"`
	Comment2        string          `json:"comment2" validate:"max=250"`
	IsCall          bool            `json:"is_call"`
	IsPromoCode     bool            `json:"is_promo_code"`
	Items           []LineItemInput `json:"order_flower_data" validate:"required,dive"`
}

type LineItemInput struct {
	FlowerID int64 `json:"flower" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0,lte=2147483647"`
}

// Translated is a reference row (recipient type, delivery slot) with its titles keyed by
// language code.
type Translated struct {
	ID     int64
	Titles map[string]string
}

// dateOf keeps the calendar day of t in t's own location (the server's local zone for
// time.Now) and stamps it as UTC midnight, the form DATE columns round-trip as.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
