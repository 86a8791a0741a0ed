package stats

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/config"
)

// ReportMonths is how many calendar months the monthly sales report covers,
// the current one included.
const ReportMonths = 5

type Store interface {
	LineItems(ctx context.Context, rng Range, flowerID *int64) ([]LineRecord, error)
	MonthlyQuantities(ctx context.Context, from time.Time, flowerID *int64) (map[YearMonth]int, error)
}

// Cache stores rendered reports. Get resolves the entry key once and returns it even on
// a miss; a report loaded after the lookup must be stored under that key, never under a
// freshly resolved one. Lookups that fail are treated as misses and leave key empty.
type Cache interface {
	Get(ctx context.Context, kind, date, flower string, dst any) (key string, ok bool, err error)
	Set(ctx context.Context, key string, v any) error
}

type Service struct {
	Store      Store
	Cache      Cache // optional
	ChangeMode config.ChangeMode
	Now        func() time.Time
}

// Report builds the requested windows relative to today's date on the server clock.
func (s *Service) Report(ctx context.Context, w Windows, flowerID *int64) (Report, error) {
	today := dateOf(s.now())

	var (
		rep Report
		err error
	)
	if w.Day {
		if rep.Day, err = s.records(ctx, "day", dayRange(today), today, flowerID); err != nil {
			return Report{}, err
		}
	}
	if w.Month {
		if rep.Month, err = s.records(ctx, "month", monthRange(today), today, flowerID); err != nil {
			return Report{}, err
		}
	}
	if w.SixMonth {
		if rep.SixMonth, err = s.groups(ctx, "six_month", sixMonthRange(today), today, flowerID); err != nil {
			return Report{}, err
		}
	}
	if w.Year {
		if rep.Year, err = s.groups(ctx, "year", yearRange(today), today, flowerID); err != nil {
			return Report{}, err
		}
	}
	return rep, nil
}

// MonthlySales reports total quantities of the last ReportMonths months with the
// change figure selected by ChangeMode.
func (s *Service) MonthlySales(ctx context.Context, flowerID *int64) ([]MonthlySales, error) {
	today := dateOf(s.now())
	current := YearMonthOf(today)

	return cached(ctx, s, "monthly", today, flowerID, func() ([]MonthlySales, error) {
		// one extra month so the oldest reported month has a predecessor
		from := current.AddMonths(-ReportMonths).First()
		totals, err := s.Store.MonthlyQuantities(ctx, from, flowerID)
		if err != nil {
			return nil, fmt.Errorf("Store.MonthlyQuantities: %w", err)
		}
		return BuildMonthlySales(totals, current, ReportMonths, s.ChangeMode), nil
	})
}

func (s *Service) records(ctx context.Context, kind string, rng Range, today time.Time, flowerID *int64) ([]Record, error) {
	return cached(ctx, s, kind, today, flowerID, func() ([]Record, error) {
		lines, err := s.Store.LineItems(ctx, rng, flowerID)
		if err != nil {
			return nil, fmt.Errorf("Store.LineItems[%s]: %w", kind, err)
		}
		return ToRecords(lines), nil
	})
}

func (s *Service) groups(ctx context.Context, kind string, rng Range, today time.Time, flowerID *int64) ([]MonthGroup, error) {
	return cached(ctx, s, kind, today, flowerID, func() ([]MonthGroup, error) {
		lines, err := s.Store.LineItems(ctx, rng, flowerID)
		if err != nil {
			return nil, fmt.Errorf("Store.LineItems[%s]: %w", kind, err)
		}
		return GroupByMonth(lines), nil
	})
}

func cached[T any](ctx context.Context, s *Service, kind string, today time.Time, flowerID *int64, load func() ([]T, error)) ([]T, error) {
	if s.Cache == nil {
		return load()
	}

	date, flower := today.Format(time.DateOnly), flowerKey(flowerID)
	var hit []T
	key, ok, err := s.Cache.Get(ctx, kind, date, flower, &hit)
	if err != nil {
		log.Printf("stats cache get %s: %v", kind, err)
	}
	if ok && hit != nil {
		return hit, nil
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return out, nil
	}
	if err := s.Cache.Set(ctx, key, out); err != nil {
		log.Printf("stats cache set %s: %v", key, err)
	}
	return out, nil
}

func flowerKey(flowerID *int64) string {
	if flowerID == nil {
		return "all"
	}
	return strconv.FormatInt(*flowerID, 10)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
