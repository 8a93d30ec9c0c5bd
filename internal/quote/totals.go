package quote

import (
	"github.com/shopspring/decimal"

	"github.com/opentechiz/express-checkout/pkg/db/models"
)

// CollectTotals recomputes row totals and quote aggregates from the line
// items. Child items contribute through their parent's row total, so only
// visible items are summed.
func CollectTotals(q *models.Quote) {
	subtotal := decimal.Zero
	for i := range q.Items {
		item := &q.Items[i]
		rowTotal := decimal.NewFromInt(item.UnitPriceCents).
			Mul(decimal.NewFromInt(int64(item.Qty)))
		item.RowTotalCents = rowTotal.IntPart()
		if item.ParentItemID == nil {
			subtotal = subtotal.Add(rowTotal)
		}
	}
	q.SubtotalCents = subtotal.IntPart()
	q.GrandTotalCents = subtotal.IntPart()
}
