package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okampen/invoice-reconciler/internal/common"
)

// ParseNumeric normalizes a source token to a canonical decimal value.
// Decimal-comma layouts treat '.' as a thousands separator and ',' as the
// decimal mark ("1.234,56" -> 1234.56); dot-decimal layouts are the reverse.
// A token that still fails to parse yields ErrMalformedNumber, which callers
// must contain at the line level.
func ParseNumeric(token string, layout Layout) (decimal.Decimal, error) {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if layout.DecimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewAppError("MALFORMED_NUMBER",
			fmt.Sprintf("token %q", token), common.ErrMalformedNumber)
	}
	return d, nil
}

// trailing field identifiers, in the fixed column order of the numeric tail.
const (
	fieldQuantity = "quantity"
	fieldUnit     = "unit"
	fieldPrice    = "unit_price"
	fieldDiscount = "discount"
	fieldTotal    = "total_price"
)

// fieldOrder returns the tail column order for the layout.
func fieldOrder(layout Layout) []string {
	order := []string{fieldQuantity}
	if layout.HasUnit {
		order = append(order, fieldUnit)
	}
	order = append(order, fieldPrice)
	if layout.HasDiscount {
		order = append(order, fieldDiscount)
	}
	return append(order, fieldTotal)
}

// partialItem accumulates one in-progress line item. Which tail fields are
// already populated decides how the next continuation line is interpreted.
type partialItem struct {
	itemNumber  string
	description []string
	order       []string
	values      map[string]decimal.Decimal
	unit        string
	nextField   int

	// document discount in force when this item started; an explicit
	// discount column on the item itself wins over it
	runningDiscount decimal.Decimal
}

func newPartialItem(itemNumber string, layout Layout) *partialItem {
	return &partialItem{
		itemNumber: itemNumber,
		order:      fieldOrder(layout),
		values:     make(map[string]decimal.Decimal),
	}
}

func (p *partialItem) complete() bool {
	return p.nextField == len(p.order) && len(p.description) > 0
}

func (p *partialItem) appendDescription(tokens []string) {
	p.description = append(p.description, tokens...)
}

// fillTail assigns tokens to the remaining tail fields in order. It returns
// an error on a malformed numeric token; the caller then discards the whole
// line so no partially-wrong values leak into the item.
func (p *partialItem) fillTail(tokens []string, layout Layout) error {
	// Validate into a scratch copy first; commit only when every token fits.
	values := make(map[string]decimal.Decimal, len(tokens))
	unit := p.unit
	next := p.nextField
	for _, tok := range tokens {
		if next >= len(p.order) {
			return common.NewAppError("MALFORMED_NUMBER",
				fmt.Sprintf("unexpected trailing token %q", tok), common.ErrMalformedNumber)
		}
		field := p.order[next]
		if field == fieldUnit {
			unit = tok
			next++
			continue
		}
		d, err := ParseNumeric(tok, layout)
		if err != nil {
			return err
		}
		values[field] = d
		next++
	}
	for k, v := range values {
		p.values[k] = v
	}
	p.unit = unit
	p.nextField = next
	return nil
}

// parseItemStart splits an item-start line into item number, description and
// numeric tail. Fully-delimited rows carry the whole tail on one line; block
// layouts put only the description here and the tail on later lines, so a
// line whose trailing tokens do not parse as a tail is kept as description.
func parseItemStart(tokens []string, layout Layout) *partialItem {
	p := newPartialItem(tokens[0], layout)
	rest := tokens[1:]
	trailing := layout.TrailingFields()

	if len(rest) > trailing {
		tail := rest[len(rest)-trailing:]
		if err := p.fillTail(tail, layout); err == nil {
			p.appendDescription(rest[:len(rest)-trailing])
			return p
		}
	}
	p.appendDescription(rest)
	return p
}
