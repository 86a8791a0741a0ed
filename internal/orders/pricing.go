package orders

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// maxAmount is the first value that no longer fits the NUMERIC(12,2) money columns.
	maxAmount = decimal.New(1, 10)
)

// PricedLine is a requested line with its flower resolved from the catalog.
type PricedLine struct {
	Flower   Flower
	Quantity int
}

func (l PricedLine) Amount() decimal.Decimal {
	return l.Flower.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal     decimal.Decimal
	Cashback     decimal.Decimal
	DeliverPrice decimal.Decimal
	Total        decimal.Decimal
}

// ComputeTotals derives the order money figures from catalog prices. Cashback is the
// flower's percentage of each line amount; the delivery price is added to the total.
func ComputeTotals(lines []PricedLine, deliverPrice decimal.Decimal) Totals {
	subtotal, cashback := decimal.Zero, decimal.Zero
	for _, l := range lines {
		amount := l.Amount()
		subtotal = subtotal.Add(amount)
		cashback = cashback.Add(amount.Mul(decimal.NewFromInt(int64(l.Flower.Cashback))).Div(hundred))
	}
	return Totals{
		Subtotal:     subtotal.Round(2),
		Cashback:     cashback.Round(2),
		DeliverPrice: deliverPrice.Round(2),
		Total:        subtotal.Add(deliverPrice).Round(2),
	}
}

// Check rejects totals the money columns cannot store.
func (t Totals) Check() error {
	for _, amount := range []decimal.Decimal{t.Total, t.Cashback, t.DeliverPrice} {
		if amount.Abs().GreaterThanOrEqual(maxAmount) {
			ve := &ValidationError{}
			ve.Add("order_flower_data", "Ensure that there are no more than 12 digits in total.")
			return ve
		}
	}
	return nil
}
