package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const pgForeignKeyViolation = "23503"

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx stores the header and its lines in one transaction. Every referenced
// flower must exist; otherwise nothing is written and ErrFlowerNotFound is returned.
// Money fields of draft are overwritten with values computed from catalog prices.
func (r *Repo) CreateOrderTx(ctx context.Context, draft Order, items []LineItemInput, deliverPrice decimal.Decimal) (Order, error) {
	order, err := withTx(ctx, r.DB, func(tx pgx.Tx) (Order, error) {
		ids := lo.Uniq(lo.Map(items, func(it LineItemInput, _ int) int64 { return it.FlowerID }))
		flowers, err := lookupFlowers(ctx, tx, ids)
		if err != nil {
			return Order{}, fmt.Errorf("lookupFlowers: %w", err)
		}

		lines := make([]PricedLine, 0, len(items))
		for _, it := range items {
			f, ok := flowers[it.FlowerID]
			if !ok {
				return Order{}, fmt.Errorf("flower %d: %w", it.FlowerID, ErrFlowerNotFound)
			}
			lines = append(lines, PricedLine{Flower: f, Quantity: it.Quantity})
		}

		o := draft
		totals := ComputeTotals(lines, deliverPrice)
		if err := totals.Check(); err != nil {
			return Order{}, err
		}
		o.Total, o.Cashback, o.DeliverPrice = totals.Total, totals.Cashback, totals.DeliverPrice

		err = tx.QueryRow(ctx, `
			INSERT INTO orders(author_id, recipient_id, status_deliver_id, full_name, address, flat,
			                   comment, comment2, is_call, is_promo_code, total, cashback,
			                   deliver_price, currency, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			RETURNING id`,
			o.AuthorID, o.RecipientID, o.StatusDeliverID, o.FullName, o.Address, o.Flat,
			o.Comment, o.Comment2, o.IsCall, o.IsPromoCode, o.Total, o.Cashback,
			o.DeliverPrice, o.Currency.String(), o.CreatedAt,
		).Scan(&o.ID)
		if err != nil {
			return Order{}, insertOrderErr(err, o)
		}

		o.Items = make([]OrderItem, 0, len(lines))
		for _, l := range lines {
			item := OrderItem{OrderID: o.ID, FlowerID: l.Flower.ID, Quantity: l.Quantity, CreatedAt: o.CreatedAt}
			err := tx.QueryRow(ctx, `
				INSERT INTO order_items(order_id, flower_id, quantity, created_at)
				VALUES ($1,$2,$3,$4)
				RETURNING id`,
				item.OrderID, item.FlowerID, item.Quantity, item.CreatedAt,
			).Scan(&item.ID)
			if err != nil {
				return Order{}, fmt.Errorf("insert order item: %w", err)
			}
			o.Items = append(o.Items, item)
		}

		return o, nil
	})
	if err != nil {
		return Order{}, fmt.Errorf("withTx: %w", err)
	}
	return order, nil
}

// lookupFlowers share-locks the rows so a concurrent delete cannot orphan the new lines.
func lookupFlowers(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]Flower, error) {
	out := make(map[int64]Flower, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, price, cashback, in_stock
		FROM flowers WHERE id = ANY($1)
		FOR SHARE`, ids)
	if err != nil {
		return nil, fmt.Errorf("tx.Query: %w", err)
	}

	flowers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Flower])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	for _, f := range flowers {
		out[f.ID] = f
	}
	return out, nil
}

func insertOrderErr(err error, o Order) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return fmt.Errorf("insert order: %w", err)
	}

	switch pgErr.ConstraintName {
	case "orders_author_id_fkey":
		return fmt.Errorf("author %d: %w", o.AuthorID, ErrUnknownAuthor)
	case "orders_recipient_id_fkey":
		ve := &ValidationError{}
		ve.Add("recipient", invalidPK(o.RecipientID))
		return ve
	case "orders_status_deliver_id_fkey":
		ve := &ValidationError{}
		ve.Add("status_deliver", invalidPK(o.StatusDeliverID))
		return ve
	}
	return fmt.Errorf("insert order: %w", err)
}

func invalidPK(id *int64) string {
	return fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, lo.FromPtr(id))
}

func (r *Repo) ListRecipients(ctx context.Context) ([]Translated, error) {
	return r.listTranslated(ctx, `
		SELECT r.id, t.language_code, t.title
		FROM type_recipients r
		LEFT JOIN type_recipient_translations t ON t.recipient_id = r.id
		ORDER BY r.id, t.language_code`)
}

func (r *Repo) ListDeliverySlots(ctx context.Context) ([]Translated, error) {
	return r.listTranslated(ctx, `
		SELECT s.id, t.language_code, t.title
		FROM status_delivers s
		LEFT JOIN status_deliver_translations t ON t.status_id = s.id
		ORDER BY s.id, t.language_code`)
}

func (r *Repo) listTranslated(ctx context.Context, query string) ([]Translated, error) {
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("DB.Query: %w", err)
	}
	defer rows.Close()

	out := []Translated{}
	for rows.Next() {
		var (
			id          int64
			lang, title *string
		)
		if err := rows.Scan(&id, &lang, &title); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, Translated{ID: id, Titles: map[string]string{}})
		}
		if lang != nil {
			out[len(out)-1].Titles[*lang] = lo.FromPtr(title)
		}
	}
	return out, rows.Err()
}
