package entity

import (
	"github.com/shopspring/decimal"

	"github.com/okampen/invoice-reconciler/constants"
)

// LineItem is the atomic reconciliation unit: one article's quantity/price
// record, extracted from an invoice document or loaded from an offer table.
type LineItem struct {
	ItemNumber   string
	Description  string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal // percentage; zero when no discount applies
	TotalPrice   decimal.Decimal
	DocumentType constants.DocumentType
	InvoiceID    string // empty when no identifier was found in the source document
}

// Key returns the globally unique join key for the item. Invoice items carry
// their document identifier so the same article on two invoices stays distinct;
// offer items (and invoices without an identifier) key on item number alone.
func (li LineItem) Key() string {
	if li.InvoiceID != "" {
		return li.InvoiceID + "_" + li.ItemNumber
	}
	return li.ItemNumber
}

// Complete reports whether all mandatory fields are populated. Incomplete
// accumulations must never be emitted by the assembler.
func (li LineItem) Complete() bool {
	return li.ItemNumber != "" &&
		li.Description != "" &&
		!li.Quantity.IsZero() &&
		!li.UnitPrice.IsZero() &&
		!li.TotalPrice.IsZero()
}
