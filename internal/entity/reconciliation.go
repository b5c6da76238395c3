package entity

import (
	"github.com/shopspring/decimal"

	"github.com/okampen/invoice-reconciler/constants"
)

// ReconciliationRow joins one offer line with zero-or-one matching invoice
// line (or an invoice line with no offer match). Absent sides and undefined
// derived metrics are represented as invalid NullDecimals, never as zero.
// Rows are computed fresh per reconciliation run and never persisted.
type ReconciliationRow struct {
	ItemNumber string
	InvoiceID  string
	Key        string

	OfferDescription   string
	InvoiceDescription string
	Unit               string

	OfferQuantity    decimal.NullDecimal
	OfferUnitPrice   decimal.NullDecimal
	OfferTotal       decimal.NullDecimal
	InvoiceQuantity  decimal.NullDecimal
	InvoiceUnitPrice decimal.NullDecimal
	InvoiceTotal     decimal.NullDecimal

	QuantityDelta      decimal.NullDecimal
	UnitPriceDelta     decimal.NullDecimal
	UnitPricePctChange decimal.NullDecimal

	Status constants.RowStatus
}
