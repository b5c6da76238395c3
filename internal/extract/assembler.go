package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okampen/invoice-reconciler/constants"
	"github.com/okampen/invoice-reconciler/internal/common"
	"github.com/okampen/invoice-reconciler/internal/entity"
	"github.com/okampen/invoice-reconciler/internal/segment"
)

// Result is the extraction outcome for one document.
type Result struct {
	InvoiceID string
	Items     []entity.LineItem
	Warnings  []string
}

// Assembler drives the classifier and item parser across the lines of one
// document. All read state (header seen, in-progress item, current discount)
// lives in the call frame, so assembling the same input twice is identical
// and a literal list of lines is enough to exercise it.
type Assembler struct {
	layout Layout
	logger *slog.Logger
}

func NewAssembler(layout Layout, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{layout: layout, logger: logger}
}

// Assemble extracts the invoice identifier and all line items from the
// ordered pages of one document. A missing identifier is reported as a
// warning; extraction continues with item-number-only keys.
func (a *Assembler) Assemble(pages []segment.RawPage, docType constants.DocumentType) (Result, error) {
	invoiceID, found := ExtractInvoiceID(pages)

	var lines []string
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		lines = append(lines, strings.Split(p.Text, "\n")...)
	}

	res, err := a.AssembleLines(lines, docType, invoiceID)
	if !found {
		res.Warnings = append([]string{common.ErrIdentifierNotFound.Error()}, res.Warnings...)
	}
	return res, err
}

// AssembleLines runs the line state machine over trimmed document lines.
// Line-level problems become warnings and never abort the scan; only a
// document that yields zero complete items fails, wrapped around
// ErrNoItemsExtracted.
func (a *Assembler) AssembleLines(lines []string, docType constants.DocumentType, invoiceID string) (Result, error) {
	res := Result{InvoiceID: invoiceID}
	cls := &classifier{layout: a.layout}
	var cur *partialItem
	currentDiscount := decimal.Zero

	flush := func() {
		if cur == nil {
			return
		}
		if !cur.complete() {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("discarding incomplete item %s", cur.itemNumber))
			a.logger.Warn("discarding incomplete item", "item_number", cur.itemNumber)
			cur = nil
			return
		}
		res.Items = append(res.Items, cur.finalize(docType, invoiceID))
		cur = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch cls.classify(line, cur != nil) {
		case classHeader, classNoise:
			// header line is consumed, never data; noise is dropped

		case classDiscount:
			tok, ok := discountValue(line)
			if !ok {
				continue
			}
			d, err := ParseNumeric(tok, a.layout)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("discount line %q: %v", line, err))
				continue
			}
			currentDiscount = d

		case classItemStart:
			flush()
			cur = parseItemStart(strings.Fields(line), a.layout)
			cur.runningDiscount = currentDiscount

		case classContinuation:
			if err := a.absorb(cur, line); err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("skipping line %q: %v", line, err))
				a.logger.Warn("skipping malformed line", "line", line, "err", err)
			}
		}
	}
	flush()

	if len(res.Items) == 0 {
		return res, common.NewAppError("NO_ITEMS_EXTRACTED",
			"document yielded no line items", common.ErrNoItemsExtracted)
	}
	return res, nil
}

// absorb folds a continuation line into the in-progress item: a line opening
// with a numeric token fills the next missing tail fields in column order,
// anything else extends the description.
func (a *Assembler) absorb(cur *partialItem, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	if _, err := ParseNumeric(tokens[0], a.layout); err == nil {
		return cur.fillTail(tokens, a.layout)
	}
	cur.appendDescription(tokens)
	return nil
}

// finalize freezes the accumulated fields into an immutable LineItem. An
// explicit discount column wins over the running document discount.
func (p *partialItem) finalize(docType constants.DocumentType, invoiceID string) entity.LineItem {
	item := entity.LineItem{
		ItemNumber:   p.itemNumber,
		Description:  strings.Join(p.description, " "),
		Quantity:     p.values[fieldQuantity],
		Unit:         p.unit,
		UnitPrice:    p.values[fieldPrice],
		TotalPrice:   p.values[fieldTotal],
		DocumentType: docType,
		InvoiceID:    invoiceID,
	}
	if d, ok := p.values[fieldDiscount]; ok && !d.IsZero() {
		item.Discount = d
	} else {
		item.Discount = p.runningDiscount
	}
	return item
}
