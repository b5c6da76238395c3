package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/okampen/invoice-reconciler/constants"
	"github.com/okampen/invoice-reconciler/internal/entity"
)

// Result holds the three classified row sets of one reconciliation run.
type Result struct {
	Deviations  []entity.ReconciliationRow
	InvoiceOnly []entity.ReconciliationRow
	Clean       []entity.ReconciliationRow
}

// Total returns the number of rows across all three sets.
func (r Result) Total() int {
	return len(r.Deviations) + len(r.InvoiceOnly) + len(r.Clean)
}

// Reconcile outer-joins invoice items against offer items by item number and
// classifies every joined row. The invoice side keys on (invoice id, item
// number); the offer side on item number alone — the same offer line may
// legitimately be delivered across several invoices, so offer lines are
// never consumed and each invoice item yields its own row against the same
// offer line. Pure function: no state survives the call.
func Reconcile(offerItems, invoiceItems []entity.LineItem) Result {
	var res Result

	offerByNumber := make(map[string]entity.LineItem, len(offerItems))
	for _, o := range offerItems {
		if _, dup := offerByNumber[o.ItemNumber]; !dup {
			offerByNumber[o.ItemNumber] = o
		}
	}

	matched := make(map[string]bool, len(offerItems))
	for _, inv := range invoiceItems {
		o, ok := offerByNumber[inv.ItemNumber]
		if !ok {
			row := joinRow(nil, &inv)
			row.Status = constants.RowInvoiceOnly
			res.InvoiceOnly = append(res.InvoiceOnly, row)
			continue
		}
		matched[inv.ItemNumber] = true

		row := joinRow(&o, &inv)
		qtyDelta := inv.Quantity.Sub(o.Quantity)
		priceDelta := inv.UnitPrice.Sub(o.UnitPrice)
		row.QuantityDelta = valid(qtyDelta)
		row.UnitPriceDelta = valid(priceDelta)
		if o.UnitPrice.IsZero() {
			// percent change against a zero offer price is not applicable,
			// never a division fault
			row.UnitPricePctChange = decimal.NullDecimal{}
		} else {
			pct := priceDelta.Div(o.UnitPrice).Mul(decimal.NewFromInt(100))
			row.UnitPricePctChange = valid(pct)
		}

		if !qtyDelta.IsZero() || !priceDelta.IsZero() {
			row.Status = constants.RowDeviation
			res.Deviations = append(res.Deviations, row)
		} else {
			row.Status = constants.RowClean
			res.Clean = append(res.Clean, row)
		}
	}

	// Offer lines with no invoice match are retained with the invoice side
	// absent; their deltas are undefined, so they classify as clean.
	for _, o := range offerItems {
		if matched[o.ItemNumber] {
			continue
		}
		row := joinRow(&o, nil)
		row.Status = constants.RowClean
		res.Clean = append(res.Clean, row)
	}

	return res
}

func joinRow(o, inv *entity.LineItem) entity.ReconciliationRow {
	var row entity.ReconciliationRow
	if o != nil {
		row.ItemNumber = o.ItemNumber
		row.Key = o.Key()
		row.OfferDescription = o.Description
		row.Unit = o.Unit
		row.OfferQuantity = valid(o.Quantity)
		row.OfferUnitPrice = valid(o.UnitPrice)
		row.OfferTotal = valid(o.TotalPrice)
	}
	if inv != nil {
		row.ItemNumber = inv.ItemNumber
		row.InvoiceID = inv.InvoiceID
		row.Key = inv.Key()
		row.InvoiceDescription = inv.Description
		if inv.Unit != "" {
			row.Unit = inv.Unit
		}
		row.InvoiceQuantity = valid(inv.Quantity)
		row.InvoiceUnitPrice = valid(inv.UnitPrice)
		row.InvoiceTotal = valid(inv.TotalPrice)
	}
	return row
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
