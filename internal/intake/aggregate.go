package intake

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

// Aggregate computes one total per detail row, in input order. Lines with a
// missing or non-finite price count as zero and rows without lines total zero.
func Aggregate(rows []domain.OrderDetailRow) []domain.OrderTotal {
	totals := make([]domain.OrderTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.OrderTotal{
			OrderID: row.OrderID,
			Total:   orderTotal(row.OrderItems),
		})
	}
	return totals
}

func orderTotal(items []domain.DetailItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromInt(int64(item.Quantity)).Mul(unitPrice(item))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}

func unitPrice(item domain.DetailItem) decimal.Decimal {
	if item.ItemPrice == nil {
		return decimal.Zero
	}
	p := *item.ItemPrice
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(p)
}
