package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/orders"
	"github.com/ariefcatur/go-flower-shop/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	goodToken = "s3cr3t"
	userID    = int64(7)
)

type fakeAuth struct{ err error }

func (a fakeAuth) Authenticate(_ context.Context, token string) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	if token != goodToken {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

type fakeOrders struct {
	place      func(authorID int64, req orders.PlaceOrderRequest) (orders.Order, error)
	recipients []orders.Translated
	slots      []orders.Translated
	err        error
}

func (f *fakeOrders) PlaceOrder(_ context.Context, authorID int64, req orders.PlaceOrderRequest, _ string) (orders.Order, error) {
	if err := req.Validate(); err != nil {
		return orders.Order{}, err
	}
	return f.place(authorID, req)
}

func (f *fakeOrders) ListRecipients(context.Context) ([]orders.Translated, error) {
	return f.recipients, f.err
}

func (f *fakeOrders) ListDeliverySlots(context.Context) ([]orders.Translated, error) {
	return f.slots, f.err
}

type fakeStats struct {
	windows  stats.Windows
	flowerID *int64
	report   stats.Report
	sales    []stats.MonthlySales
	err      error
}

func (f *fakeStats) Report(_ context.Context, w stats.Windows, flowerID *int64) (stats.Report, error) {
	f.windows, f.flowerID = w, flowerID
	return f.report, f.err
}

func (f *fakeStats) MonthlySales(_ context.Context, flowerID *int64) ([]stats.MonthlySales, error) {
	f.flowerID = flowerID
	return f.sales, f.err
}

func newTestRouter(o OrderService, s StatsService, auth Authenticator) chi.Router {
	r := NewRouter()
	(&OrdersHandler{Orders: o, Auth: auth}).Register(r)
	(&StatsHandler{Stats: s, Auth: auth}).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var authed = map[string]string{"Authorization": "Bearer " + goodToken, "Content-Type": "application/json"}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func placed(authorID int64, req orders.PlaceOrderRequest) (orders.Order, error) {
	items := make([]orders.OrderItem, 0, len(req.Items))
	for i, in := range req.Items {
		items = append(items, orders.OrderItem{ID: int64(i + 1), OrderID: 10, FlowerID: in.FlowerID, Quantity: in.Quantity})
	}
	return orders.Order{
		ID:           10,
		AuthorID:     authorID,
		FullName:     req.FullName,
		Address:      req.Address,
		Total:        decimal.RequireFromString("320.00"),
		Cashback:     decimal.RequireFromString("12.00"),
		DeliverPrice: decimal.RequireFromString("150.00"),
		Currency:     currency.MustParseISO("KGS"),
		Items:        items,
		CreatedAt:    time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC),
	}, nil
}

func TestPlaceOrderCreated(t *testing.T) {
	r := newTestRouter(&fakeOrders{place: placed}, &fakeStats{}, fakeAuth{})
	body := `{"full_name":"Aida","adress":"Chui 1","order_flower_data":[{"flower":1,"quantity":2},{"flower":2,"quantity":1}]}`

	for _, path := range []string{"/place-order", "/place-order/"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, path, body, authed)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			got := decode[map[string]any](t, rec)
			assert.EqualValues(t, 10, got["id"])
			assert.EqualValues(t, userID, got["author"])
			assert.Equal(t, "Chui 1", got["adress"])
			assert.Equal(t, float64(320), got["total"])
			assert.Equal(t, float64(12), got["cashback"])
			assert.Equal(t, float64(150), got["deliver_price"])
			assert.Contains(t, rec.Body.String(), `"total":320.00`)
			assert.Equal(t, "KGS", got["currency"])
			assert.Equal(t, "2026-03-08", got["created_at"])
			assert.Len(t, got["order_flower"], 2)
			assert.Equal(t, []any{
				map[string]any{"flower": float64(1), "quantity": float64(2)},
				map[string]any{"flower": float64(2), "quantity": float64(1)},
			}, got["order_flower_data"])
		})
	}
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		headers  map[string]string
		auth     Authenticator
		placeErr error
		wantCode int
		wantBody string
	}{
		{
			name:     "no credentials",
			body:     `{"order_flower_data":[]}`,
			headers:  map[string]string{},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"detail":"Authentication credentials were not provided."}`,
		},
		{
			name:     "unknown token",
			body:     `{"order_flower_data":[]}`,
			headers:  map[string]string{"Authorization": "Bearer nope"},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"detail":"Invalid token."}`,
		},
		{
			name:     "session store down",
			body:     `{"order_flower_data":[]}`,
			auth:     fakeAuth{err: errors.New("dial tcp: refused")},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"detail":"Authentication is temporarily unavailable."}`,
		},
		{
			name:     "malformed json",
			body:     `{"order_flower_data":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong type",
			body:     `{"is_call":"yes","order_flower_data":[]}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"is_call":["Incorrect type. Expected bool."]}`,
		},
		{
			name:     "missing lines",
			body:     `{"full_name":"Aida"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"order_flower_data":["This field is required."]}`,
		},
		{
			name:     "bad quantity",
			body:     `{"order_flower_data":[{"flower":1,"quantity":0}]}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"order_flower_data[0].quantity":["This field is required."]}`,
		},
		{
			name:     "missing flower",
			body:     `{"order_flower_data":[{"flower":1,"quantity":1},{"flower":99,"quantity":1}]}`,
			placeErr: orders.ErrFlowerNotFound,
			wantCode: http.StatusNotFound,
			wantBody: `{"detail":"Not found."}`,
		},
		{
			name:     "author vanished",
			body:     `{"order_flower_data":[{"flower":1,"quantity":1}]}`,
			placeErr: orders.ErrUnknownAuthor,
			wantCode: http.StatusUnauthorized,
			wantBody: `{"detail":"Invalid token."}`,
		},
		{
			name:     "store failure",
			body:     `{"order_flower_data":[{"flower":1,"quantity":1}]}`,
			placeErr: errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"detail":"A server error occurred."}`,
		},
		{
			name:     "store timeout",
			body:     `{"order_flower_data":[{"flower":1,"quantity":1}]}`,
			placeErr: context.DeadlineExceeded,
			wantCode: http.StatusGatewayTimeout,
			wantBody: `{"detail":"Request timed out."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOrders{place: func(authorID int64, req orders.PlaceOrderRequest) (orders.Order, error) {
				if tt.placeErr != nil {
					return orders.Order{}, tt.placeErr
				}
				return placed(authorID, req)
			}}
			auth := tt.auth
			if auth == nil {
				auth = fakeAuth{}
			}
			headers := tt.headers
			if headers == nil {
				headers = authed
			}

			rec := do(t, newTestRouter(svc, &fakeStats{}, auth), http.MethodPost, "/place-order", tt.body, headers)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, decode[map[string]string](t, rec)["detail"], "JSON parse error")
			}
		})
	}
}

func TestListTranslated(t *testing.T) {
	rows := []orders.Translated{
		{ID: 1, Titles: map[string]string{"ru": "Маме", "en": "For mom", "ky": "Апама"}},
		{ID: 2, Titles: map[string]string{"ru": "Другу"}},
	}
	svc := &fakeOrders{recipients: rows, slots: []orders.Translated{}}
	r := newTestRouter(svc, &fakeStats{}, fakeAuth{})

	tests := []struct {
		name   string
		accept string
		want   []string
	}{
		{name: "english preferred", accept: "en-US,en;q=0.9", want: []string{"For mom", "Другу"}},
		{name: "kyrgyz preferred", accept: "ky", want: []string{"Апама", "Другу"}},
		{name: "no header falls back to russian", want: []string{"Маме", "Другу"}},
		{name: "unknown language falls back to russian", accept: "de", want: []string{"Маме", "Другу"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, "/type-recipients/", "", map[string]string{"Accept-Language": tt.accept})
			require.Equal(t, http.StatusOK, rec.Code)

			got := decode[[]translatedResp](t, rec)
			require.Len(t, got, 2)
			assert.Equal(t, tt.want, []string{got[0].Title, got[1].Title})
			assert.Equal(t, map[string]string{"title": "For mom"}, got[0].Translations["en"])
		})
	}

	t.Run("empty list", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/status-delivers", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestStatisticsFlowers(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantWin    stats.Windows
		wantFlower *int64
	}{
		{name: "no flags", query: ""},
		{name: "day only", query: "?day=true", wantWin: stats.Windows{Day: true}},
		{name: "flags are case insensitive", query: "?month=True&year=TRUE", wantWin: stats.Windows{Month: true, Year: true}},
		{name: "anything else is false", query: "?day=1&six_month=yes", wantWin: stats.Windows{}},
		{name: "flower filter", query: "?six_month=true&flower_id=3", wantWin: stats.Windows{SixMonth: true}, wantFlower: ptr(int64(3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeStats{}
			r := newTestRouter(&fakeOrders{}, svc, fakeAuth{})

			rec := do(t, r, http.MethodGet, "/statistics_flowers"+tt.query, "", authed)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantWin, svc.windows)
			assert.Equal(t, tt.wantFlower, svc.flowerID)
		})
	}
}

func TestStatisticsBadFlowerID(t *testing.T) {
	for _, path := range []string{"/statistics_flowers?day=true&flower_id=rose", "/statistics_flowers_by_months?flower_id=1.5"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, newTestRouter(&fakeOrders{}, &fakeStats{}, fakeAuth{}), http.MethodGet, path, "", authed)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"flower_id":["A valid integer is required."]}`, rec.Body.String())
		})
	}
}

func TestStatisticsRequireAuth(t *testing.T) {
	r := newTestRouter(&fakeOrders{}, &fakeStats{}, fakeAuth{})

	for _, path := range []string{"/statistics_flowers", "/statistics_flowers_by_months/"} {
		rec := do(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestStatisticsByMonths(t *testing.T) {
	svc := &fakeStats{sales: []stats.MonthlySales{
		{Month: "February 2026", TotalSales: 10},
		{Month: "March 2026", TotalSales: 15, Change: 50},
	}}
	r := newTestRouter(&fakeOrders{}, svc, fakeAuth{})

	rec := do(t, r, http.MethodGet, "/statistics_flowers_by_months/?flower_id=4", "", authed)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ptr(int64(4)), svc.flowerID)
	assert.JSONEq(t, `[
		{"month":"February 2026","total_sales":10,"change":0},
		{"month":"March 2026","total_sales":15,"change":50}
	]`, rec.Body.String())
}

func TestStatisticsServiceError(t *testing.T) {
	r := newTestRouter(&fakeOrders{}, &fakeStats{err: errors.New("boom")}, fakeAuth{})

	rec := do(t, r, http.MethodGet, "/statistics_flowers?day=true", "", authed)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, NewRouter(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func ptr[T any](v T) *T { return &v }
