package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// LineItems returns order lines dated within rng, optionally for one flower, oldest first.
func (r *Repo) LineItems(ctx context.Context, rng Range, flowerID *int64) ([]LineRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.flower_id, f.name, oi.quantity, f.price, oi.created_at
		FROM order_items oi
		JOIN flowers f ON f.id = oi.flower_id
		WHERE oi.created_at >= $1
		  AND ($2::date IS NULL OR oi.created_at <= $2)
		  AND ($3::bigint IS NULL OR oi.flower_id = $3)
		ORDER BY oi.created_at, oi.id`,
		rng.From, upperBound(rng), flowerID)
	if err != nil {
		return nil, fmt.Errorf("DB.Query: %w", err)
	}

	lines, err := pgx.CollectRows(rows, pgx.RowToStructByPos[LineRecord])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return lines, nil
}

// MonthlyQuantities sums line quantities per calendar month from the given date on.
func (r *Repo) MonthlyQuantities(ctx context.Context, from time.Time, flowerID *int64) (map[YearMonth]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT date_trunc('month', oi.created_at)::date AS month, SUM(oi.quantity)::bigint
		FROM order_items oi
		WHERE oi.created_at >= $1
		  AND ($2::bigint IS NULL OR oi.flower_id = $2)
		GROUP BY 1
		ORDER BY 1`,
		from, flowerID)
	if err != nil {
		return nil, fmt.Errorf("DB.Query: %w", err)
	}
	defer rows.Close()

	out := map[YearMonth]int{}
	for rows.Next() {
		var (
			month time.Time
			total int64
		)
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		out[YearMonthOf(month)] = int(total)
	}
	return out, rows.Err()
}

func upperBound(rng Range) *time.Time {
	if rng.To.IsZero() {
		return nil
	}
	return &rng.To
}
