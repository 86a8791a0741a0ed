package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/stats"
	"github.com/go-chi/chi/v5"
)

type StatsService interface {
	Report(ctx context.Context, w stats.Windows, flowerID *int64) (stats.Report, error)
	MonthlySales(ctx context.Context, flowerID *int64) ([]stats.MonthlySales, error)
}

type StatsHandler struct {
	Stats StatsService
	Auth  Authenticator
}

func (h *StatsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireUser(h.Auth))
		r.Get("/statistics_flowers", h.report)
		r.Get("/statistics_flowers_by_months", h.monthlySales)
	})
}

func (h *StatsHandler) report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	flowerID, ok := parseFlowerID(w, q)
	if !ok {
		return
	}
	windows := stats.Windows{
		Day:      queryFlag(q, "day"),
		Month:    queryFlag(q, "month"),
		SixMonth: queryFlag(q, "six_month"),
		Year:     queryFlag(q, "year"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Stats.Report(ctx, windows, flowerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *StatsHandler) monthlySales(w http.ResponseWriter, r *http.Request) {
	flowerID, ok := parseFlowerID(w, r.URL.Query())
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sales, err := h.Stats.MonthlySales(ctx, flowerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func queryFlag(q url.Values, name string) bool {
	return strings.ToLower(q.Get(name)) == "true"
}

// parseFlowerID writes a 400 itself when flower_id is present but not an integer.
func parseFlowerID(w http.ResponseWriter, q url.Values) (*int64, bool) {
	raw := q.Get("flower_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"flower_id": {"A valid integer is required."}})
		return nil, false
	}
	return &id, true
}
