package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Windows selects which sections a flexible report contains.
type Windows struct {
	Day      bool
	Month    bool
	SixMonth bool
	Year     bool
}

func (w Windows) Any() bool { return w.Day || w.Month || w.SixMonth || w.Year }

// LineRecord is one stored order line joined with its flower.
type LineRecord struct {
	FlowerID  int64
	Flower    string
	Quantity  int
	UnitPrice decimal.Decimal
	Date      time.Time
}

// Record is the reported view of a line: price is unit price times quantity.
type Record struct {
	Flower   string          `json:"flower"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     string          `json:"date"`
}

// MarshalJSON writes price as a JSON number with two decimals, the storefront's wire
// format. Decoding accepts it through decimal's own UnmarshalJSON.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(r), Price: json.Number(r.Price.StringFixed(2))})
}

type MonthGroup struct {
	MonthName  string   `json:"month_name"`
	Year       int      `json:"year"`
	Statistics []Record `json:"statistics"`
}

// Report holds only the requested windows; a requested window with no data is an
// empty list.
type Report struct {
	Day      []Record     `json:"day,omitzero"`
	Month    []Record     `json:"month,omitzero"`
	SixMonth []MonthGroup `json:"six_month,omitzero"`
	Year     []MonthGroup `json:"year,omitzero"`
}

type MonthlySales struct {
	Month      string  `json:"month"`
	TotalSales int     `json:"total_sales"`
	Change     float64 `json:"change"`
}

// YearMonth is a calendar month; it orders chronologically across years.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth { return YearMonth{Year: t.Year(), Month: t.Month()} }

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) AddMonths(n int) YearMonth {
	return YearMonthOf(ym.First().AddDate(0, n, 0))
}

func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) Last() time.Time { return ym.First().AddDate(0, 1, -1) }

func (ym YearMonth) String() string { return fmt.Sprintf("%s %d", ym.Month, ym.Year) }

// Range is an inclusive date range; a zero To leaves it open-ended.
type Range struct {
	From time.Time
	To   time.Time
}

// dateOf keeps the calendar day of t in t's own location (the server's local zone for
// time.Now) and stamps it as UTC midnight, the form DATE columns round-trip as.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
