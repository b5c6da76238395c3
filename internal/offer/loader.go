package offer

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/okampen/invoice-reconciler/constants"
	"github.com/okampen/invoice-reconciler/internal/common"
	"github.com/okampen/invoice-reconciler/internal/entity"
)

// Canonical column roles of an offer table.
const (
	roleItemNumber  = "item_number"
	roleDescription = "description"
	roleQuantity    = "quantity"
	roleUnit        = "unit"
	roleUnitPrice   = "unit_price"
	roleTotalPrice  = "total_price"
)

// columnAliases maps source workbook headers to canonical roles. The
// Norwegian names are the ones the supplier's offer exports use; English
// equivalents are accepted for manually prepared tables.
var columnAliases = map[string]string{
	"VARENR":      roleItemNumber,
	"ART.NR.":     roleItemNumber,
	"ARTNR":       roleItemNumber,
	"ITEM NUMBER": roleItemNumber,
	"ITEM":        roleItemNumber,

	"BESKRIVELSE": roleDescription,
	"DESCRIPTION": roleDescription,

	"ANTALL":   roleQuantity,
	"QUANTITY": roleQuantity,
	"QTY":      roleQuantity,

	"ENHET": roleUnit,
	"UNIT":  roleUnit,

	"ENHETSPRIS": roleUnitPrice,
	"UNIT PRICE": roleUnitPrice,

	"TOTALPRIS":   roleTotalPrice,
	"TOTAL PRICE": roleTotalPrice,
	"TOTAL":       roleTotalPrice,
	"BELØP":       roleTotalPrice,
}

// Loader reads an offer workbook into an ordered LineItem sequence keyed by
// item number. Translating the source schema to canonical roles happens
// here, not in the reconciliation core.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load parses the first sheet of the XLSX workbook in data. Rows with an
// empty item number or unparseable mandatory numerics are skipped with a
// warning; a workbook without the required columns is an error.
func (l *Loader) Load(data []byte) ([]entity.LineItem, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, common.NewAppError("DOCUMENT_UNREADABLE",
			fmt.Sprintf("open offer workbook: %v", err), common.ErrDocumentUnreadable)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.Warn("close offer workbook", "err", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, common.NewAppError("DOCUMENT_UNREADABLE",
			"offer workbook has no sheets", common.ErrDocumentUnreadable)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, common.WrapError(err, "read offer rows")
	}
	if len(rows) == 0 {
		return nil, nil, common.NewAppError("NO_ITEMS_EXTRACTED",
			"offer workbook is empty", common.ErrNoItemsExtracted)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var items []entity.LineItem
	var warnings []string
	for i, row := range rows[1:] {
		item, err := rowToItem(row, cols)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("offer row %d: %v", i+2, err))
			l.logger.Warn("skipping offer row", "row", i+2, "err", err)
			continue
		}
		if item == nil {
			continue // blank row
		}
		items = append(items, *item)
	}

	l.logger.Info("offer loaded", "sheet", sheets[0], "items", len(items), "skipped", len(warnings))
	return items, warnings, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		role, ok := columnAliases[strings.ToUpper(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := cols[role]; !dup {
			cols[role] = i
		}
	}
	for _, required := range []string{roleItemNumber, roleQuantity, roleUnitPrice} {
		if _, ok := cols[required]; !ok {
			return nil, common.NewAppError("OFFER_SCHEMA",
				fmt.Sprintf("offer workbook is missing a %s column", required), common.ErrInvalidInput)
		}
	}
	return cols, nil
}

func rowToItem(row []string, cols map[string]int) (*entity.LineItem, error) {
	itemNumber := strings.TrimSpace(cell(row, cols, roleItemNumber))
	if itemNumber == "" {
		return nil, nil
	}

	qty, err := parseCell(cell(row, cols, roleQuantity))
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	price, err := parseCell(cell(row, cols, roleUnitPrice))
	if err != nil {
		return nil, fmt.Errorf("unit price: %w", err)
	}

	item := entity.LineItem{
		ItemNumber:   itemNumber,
		Description:  strings.TrimSpace(cell(row, cols, roleDescription)),
		Quantity:     qty,
		Unit:         strings.TrimSpace(cell(row, cols, roleUnit)),
		UnitPrice:    price,
		DocumentType: constants.Offer,
	}
	if raw := strings.TrimSpace(cell(row, cols, roleTotalPrice)); raw != "" {
		total, err := parseCell(raw)
		if err != nil {
			return nil, fmt.Errorf("total price: %w", err)
		}
		item.TotalPrice = total
	} else {
		item.TotalPrice = qty.Mul(price)
	}
	return &item, nil
}

func cell(row []string, cols map[string]int, role string) string {
	i, ok := cols[role]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseCell normalizes a spreadsheet cell to a decimal. Cells may carry
// either locale depending on how the workbook was produced, so both
// "1.234,56" and "1,234.56" resolve to 1234.56.
func parseCell(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewAppError("MALFORMED_NUMBER",
			fmt.Sprintf("cell %q", s), common.ErrMalformedNumber)
	}
	return d, nil
}
