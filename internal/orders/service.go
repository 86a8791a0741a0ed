package orders

import (
	"context"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-flower-shop/internal/kafka"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/text/currency"
)

type Store interface {
	CreateOrderTx(ctx context.Context, draft Order, items []LineItemInput, deliverPrice decimal.Decimal) (Order, error)
	ListRecipients(ctx context.Context) ([]Translated, error)
	ListDeliverySlots(ctx context.Context) ([]Translated, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store         Store
	Events        Publisher // optional
	Currency      currency.Unit
	DeliveryPrice decimal.Decimal
	ServiceName   string
	Now           func() time.Time
}

// PlaceOrder validates the payload, stores the order with its lines atomically and
// announces it. Identical payloads produce distinct orders.
func (s *Service) PlaceOrder(ctx context.Context, authorID int64, req PlaceOrderRequest, traceID string) (Order, error) {
	if err := req.Validate(); err != nil {
		return Order{}, err
	}

	draft := Order{
		AuthorID:        authorID,
		RecipientID:     req.RecipientID,
		StatusDeliverID: req.StatusDeliverID,
		FullName:        req.FullName,
		Address:         req.Address,
		Flat:            req.Flat,
		Comment:         req.Comment,
		Comment2:        req.Comment2,
		IsCall:          req.IsCall,
		IsPromoCode:     req.IsPromoCode,
		Currency:        s.Currency,
		CreatedAt:       dateOf(s.now()),
	}

	order, err := s.Store.CreateOrderTx(ctx, draft, req.Items, s.DeliveryPrice)
	if err != nil {
		return Order{}, fmt.Errorf("Store.CreateOrderTx: %w", err)
	}

	s.publishPlaced(order, traceID)
	return order, nil
}

func (s *Service) ListRecipients(ctx context.Context) ([]Translated, error) {
	return s.Store.ListRecipients(ctx)
}

func (s *Service) ListDeliverySlots(ctx context.Context) ([]Translated, error) {
	return s.Store.ListDeliverySlots(ctx)
}

func (s *Service) publishPlaced(o Order, traceID string) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: fmt.Sprint(o.ID),
		Payload:       kafkax.MustMarshal(orderPlacedPayload(o)),
	}
	s.Events.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
