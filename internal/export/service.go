package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/okampen/invoice-reconciler/internal/entity"
	"github.com/okampen/invoice-reconciler/internal/reconcile"
)

// Service produces XLSX bytes for reconciliation results. Presentation only;
// all classification happened in the engine.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Sheet names, one per classification set.
const (
	SheetDeviations  = "Avvik"
	SheetInvoiceOnly = "KunFaktura"
	SheetClean       = "OK"
)

var headers = []string{
	"Varenummer",
	"Fakturanummer",
	"Beskrivelse Tilbud",
	"Beskrivelse Faktura",
	"Enhet",
	"Antall Tilbud",
	"Antall Faktura",
	"Antall Avvik",
	"Enhetspris Tilbud",
	"Enhetspris Faktura",
	"Enhetspris Avvik",
	"Enhetspris Avvik %",
	"Beløp Tilbud",
	"Beløp Faktura",
}

// ExportXLSX returns a workbook with one sheet per classification set.
func (s *Service) ExportXLSX(result reconcile.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheets := []struct {
		name string
		rows []entity.ReconciliationRow
	}{
		{SheetDeviations, result.Deviations},
		{SheetInvoiceOnly, result.InvoiceOnly},
		{SheetClean, result.Clean},
	}

	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, sheet.name, sheet.rows); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet.name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if index, err := f.GetSheetIndex(SheetDeviations); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"deviations", len(result.Deviations),
		"invoice_only", len(result.InvoiceOnly),
		"clean", len(result.Clean),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows []entity.ReconciliationRow) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for rowIdx, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.ItemNumber)
		write(2, r.InvoiceID)
		write(3, r.OfferDescription)
		write(4, r.InvoiceDescription)
		write(5, r.Unit)
		write(6, ndString(r.OfferQuantity))
		write(7, ndString(r.InvoiceQuantity))
		write(8, ndString(r.QuantityDelta))
		write(9, ndString(r.OfferUnitPrice))
		write(10, ndString(r.InvoiceUnitPrice))
		write(11, ndString(r.UnitPriceDelta))
		write(12, ndString(r.UnitPricePctChange))
		write(13, ndString(r.OfferTotal))
		write(14, ndString(r.InvoiceTotal))
	}

	// Widen the text-heavy columns
	_ = f.SetColWidth(sheet, "A", "B", 14)
	_ = f.SetColWidth(sheet, "C", "D", 36)
	_ = f.SetColWidth(sheet, "F", "N", 16)
	return nil
}

// ndString renders an absent value as an empty cell, never as zero.
func ndString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
