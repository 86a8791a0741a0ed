package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, authorID int64, req orders.PlaceOrderRequest, traceID string) (orders.Order, error)
	ListRecipients(ctx context.Context) ([]orders.Translated, error)
	ListDeliverySlots(ctx context.Context) ([]orders.Translated, error)
}

type OrdersHandler struct {
	Orders OrderService
	Auth   Authenticator
}

type orderItemResp struct {
	ID       int64 `json:"id"`
	Flower   int64 `json:"flower"`
	Quantity int   `json:"quantity"`
}

type orderResp struct {
	ID              int64                  `json:"id"`
	Recipient       *int64                 `json:"recipient"`
	StatusDeliver   *int64                 `json:"status_deliver"`
	Author          int64                  `json:"author"`
	FullName        string                 `json:"full_name"`
	Address         string                 `json:"adress"`
	Flat            string                 `json:"flat"`
	Comment         string                 `json:"comment"`
	Comment2        string                 `json:"comment2"`
	IsCall          bool                   `json:"is_call"`
	IsPromoCode     bool                   `json:"is_promo_code"`
	Total           json.Number            `json:"total"`
	Cashback        json.Number            `json:"cashback"`
	DeliverPrice    json.Number            `json:"deliver_price"`
	Currency        string                 `json:"currency"`
	CreatedAt       string                 `json:"created_at"`
	OrderFlower     []orderItemResp        `json:"order_flower"`
	OrderFlowerData []orders.LineItemInput `json:"order_flower_data"`
}

type translatedResp struct {
	ID           int64                        `json:"id"`
	Title        string                       `json:"title"`
	Translations map[string]map[string]string `json:"translations"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/type-recipients", h.listRecipients)
	r.Get("/status-delivers", h.listDeliverySlots)
	r.With(RequireUser(h.Auth)).Post("/place-order", h.placeOrder)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		var ve *orders.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, ve.Fields)
			return
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	uid, ok := UserID(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.PlaceOrder(ctx, uid, req, middleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResp(order, req.Items))
}

func (h *OrdersHandler) listRecipients(w http.ResponseWriter, r *http.Request) {
	h.listTranslated(w, r, h.Orders.ListRecipients)
}

func (h *OrdersHandler) listDeliverySlots(w http.ResponseWriter, r *http.Request) {
	h.listTranslated(w, r, h.Orders.ListDeliverySlots)
}

func (h *OrdersHandler) listTranslated(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]orders.Translated, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := list(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	accept := r.Header.Get("Accept-Language")
	out := make([]translatedResp, 0, len(rows))
	for _, row := range rows {
		tr := make(map[string]map[string]string, len(row.Titles))
		for lang, title := range row.Titles {
			tr[lang] = map[string]string{"title": title}
		}
		out = append(out, translatedResp{ID: row.ID, Title: row.Title(accept), Translations: tr})
	}
	writeJSON(w, http.StatusOK, out)
}

func toOrderResp(o orders.Order, submitted []orders.LineItemInput) orderResp {
	items := make([]orderItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResp{ID: it.ID, Flower: it.FlowerID, Quantity: it.Quantity})
	}
	return orderResp{
		ID:              o.ID,
		Recipient:       o.RecipientID,
		StatusDeliver:   o.StatusDeliverID,
		Author:          o.AuthorID,
		FullName:        o.FullName,
		Address:         o.Address,
		Flat:            o.Flat,
		Comment:         o.Comment,
		Comment2:        o.Comment2,
		IsCall:          o.IsCall,
		IsPromoCode:     o.IsPromoCode,
		Total:           money(o.Total),
		Cashback:        money(o.Cashback),
		DeliverPrice:    money(o.DeliverPrice),
		Currency:        o.Currency.String(),
		CreatedAt:       o.CreatedAt.Format(time.DateOnly),
		OrderFlower:     items,
		OrderFlowerData: submitted,
	}
}

// money renders an amount as a JSON number, not decimal's default quoted string.
func money(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(2)) }
