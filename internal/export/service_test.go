package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/okampen/invoice-reconciler/constants"
	"github.com/okampen/invoice-reconciler/internal/entity"
	"github.com/okampen/invoice-reconciler/internal/reconcile"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestExportXLSX(t *testing.T) {
	result := reconcile.Result{
		Deviations: []entity.ReconciliationRow{{
			ItemNumber:         "1001",
			InvoiceID:          "900001",
			Key:                "900001_1001",
			OfferDescription:   "Widget A",
			InvoiceDescription: "Widget A",
			Unit:               "pcs",
			OfferQuantity:      nd("10"),
			InvoiceQuantity:    nd("12"),
			QuantityDelta:      nd("2"),
			OfferUnitPrice:     nd("5"),
			InvoiceUnitPrice:   nd("5"),
			UnitPriceDelta:     nd("0"),
			UnitPricePctChange: nd("0"),
			Status:             constants.RowDeviation,
		}},
		InvoiceOnly: []entity.ReconciliationRow{{
			ItemNumber:         "2002",
			InvoiceID:          "900001",
			Key:                "900001_2002",
			InvoiceDescription: "Widget B",
			InvoiceQuantity:    nd("1"),
			InvoiceUnitPrice:   nd("9"),
			InvoiceTotal:       nd("9"),
			Status:             constants.RowInvoiceOnly,
		}},
	}

	data, err := NewService(nil).ExportXLSX(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{SheetDeviations, SheetInvoiceOnly, SheetClean}, f.GetSheetList())

	rows, err := f.GetRows(SheetDeviations)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, headers, rows[0][:len(headers)])
	assert.Equal(t, "1001", rows[1][0])
	assert.Equal(t, "900001", rows[1][1])
	assert.Equal(t, "2", rows[1][7])

	// absent offer side renders as empty cells, never zero
	invRows, err := f.GetRows(SheetInvoiceOnly)
	require.NoError(t, err)
	require.Len(t, invRows, 2)
	assert.Equal(t, "2002", invRows[1][0])
	assert.Empty(t, invRows[1][5], "offer quantity cell must be empty")
	assert.Empty(t, invRows[1][8], "offer unit price cell must be empty")

	// empty classification sets still get a header row
	cleanRows, err := f.GetRows(SheetClean)
	require.NoError(t, err)
	require.NotEmpty(t, cleanRows)
	assert.Equal(t, headers[0], cleanRows[0][0])
}
