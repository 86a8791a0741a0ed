package stats

import (
	"math"
	"sort"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/config"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const sixMonthDays = 180

func dayRange(today time.Time) Range { return Range{From: today, To: today} }

func monthRange(today time.Time) Range {
	ym := YearMonthOf(today)
	return Range{From: ym.First(), To: ym.Last()}
}

func sixMonthRange(today time.Time) Range {
	return Range{From: today.AddDate(0, 0, -sixMonthDays)}
}

func yearRange(today time.Time) Range {
	return Range{
		From: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

func ToRecords(lines []LineRecord) []Record {
	return lo.Map(lines, func(l LineRecord, _ int) Record {
		return Record{
			Flower:   l.Flower,
			Quantity: l.Quantity,
			Price:    l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
			Date:     l.Date.Format(time.DateOnly),
		}
	})
}

// GroupByMonth buckets lines by calendar month (year included) and orders the
// buckets chronologically. Lines keep their input order inside a bucket.
func GroupByMonth(lines []LineRecord) []MonthGroup {
	groups := lo.GroupBy(lines, func(l LineRecord) YearMonth { return YearMonthOf(l.Date) })

	months := lo.Keys(groups)
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthGroup, 0, len(months))
	for _, ym := range months {
		out = append(out, MonthGroup{
			MonthName:  ym.Month.String(),
			Year:       ym.Year,
			Statistics: ToRecords(groups[ym]),
		})
	}
	return out
}

// BuildMonthlySales lays out the last n months ending at current. totals must also
// hold the month before the first reported one so its change can be computed.
func BuildMonthlySales(totals map[YearMonth]int, current YearMonth, n int, mode config.ChangeMode) []MonthlySales {
	out := make([]MonthlySales, 0, n)
	for i := n - 1; i >= 0; i-- {
		ym := current.AddMonths(-i)
		curr := totals[ym]
		out = append(out, MonthlySales{
			Month:      ym.String(),
			TotalSales: curr,
			Change:     change(curr, totals[ym.AddMonths(-1)], mode),
		})
	}
	return out
}

func change(curr, prev int, mode config.ChangeMode) float64 {
	if mode == config.ChangeLegacy {
		return round2(float64(curr) * 0.10)
	}
	if prev == 0 {
		return 0
	}
	return round2(float64(curr-prev) / float64(prev) * 100)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
