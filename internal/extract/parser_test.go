package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okampen/invoice-reconciler/internal/common"
)

func mustLayout(t *testing.T, name string) Layout {
	t.Helper()
	layout, err := LayoutByName(name)
	require.NoError(t, err)
	return layout
}

func TestParseNumericDecimalComma(t *testing.T) {
	layout := mustLayout(t, "standard")

	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"5,50", "5.50"},
		{"55,00", "55.00"},
		{"12", "12"},
		{"0,5", "0.5"},
	}
	for _, tc := range tests {
		got, err := ParseNumeric(tc.in, layout)
		require.NoError(t, err, "token %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"token %q: got %s, want %s", tc.in, got, tc.want)
	}
}

func TestParseNumericDotDecimal(t *testing.T) {
	layout := mustLayout(t, "dotdecimal")

	got, err := ParseNumeric("1,234.56", layout)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("1234.56")))
}

func TestParseNumericMalformed(t *testing.T) {
	layout := mustLayout(t, "standard")

	for _, tok := range []string{"abc", "5,5x", "", "-"} {
		_, err := ParseNumeric(tok, layout)
		require.Error(t, err, "token %q", tok)
		assert.True(t, errors.Is(err, common.ErrMalformedNumber), "token %q", tok)
	}
}

func TestParseItemStartFullyDelimited(t *testing.T) {
	layout := mustLayout(t, "standard")

	p := parseItemStart(strings.Fields("1234567 Widget A 10 pcs 5,50 55,00"), layout)
	require.True(t, p.complete())
	assert.Equal(t, "1234567", p.itemNumber)
	assert.Equal(t, "Widget A", strings.Join(p.description, " "))
	assert.Equal(t, "pcs", p.unit)
	assert.True(t, p.values[fieldQuantity].Equal(decimal.NewFromInt(10)))
	assert.True(t, p.values[fieldPrice].Equal(decimal.RequireFromString("5.50")))
	assert.True(t, p.values[fieldTotal].Equal(decimal.RequireFromString("55.00")))
}

func TestParseItemStartBlockLayout(t *testing.T) {
	layout := mustLayout(t, "standard")

	// Description-only start line: the numeric tail arrives on later lines.
	p := parseItemStart(strings.Fields("1234567 Widget A"), layout)
	require.False(t, p.complete())
	assert.Equal(t, "Widget A", strings.Join(p.description, " "))

	require.NoError(t, p.fillTail(strings.Fields("10 pcs 5,50 55,00"), layout))
	assert.True(t, p.complete())
	assert.Equal(t, "pcs", p.unit)
}

func TestFillTailMalformedCommitsNothing(t *testing.T) {
	layout := mustLayout(t, "standard")

	p := parseItemStart(strings.Fields("1234567 Widget A"), layout)
	err := p.fillTail(strings.Fields("10 pcs 5,xx 55,00"), layout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedNumber))

	// the failed line must not leave partially-filled values behind
	assert.Empty(t, p.values)
	assert.Equal(t, 0, p.nextField)

	require.NoError(t, p.fillTail(strings.Fields("10 pcs 5,50 55,00"), layout))
	assert.True(t, p.complete())
}

func TestParseItemStartDiscountColumn(t *testing.T) {
	layout := mustLayout(t, "discount")

	p := parseItemStart(strings.Fields("1234567 Widget A 10 pcs 5,50 10,00 49,50"), layout)
	require.True(t, p.complete())
	assert.True(t, p.values[fieldDiscount].Equal(decimal.RequireFromString("10.00")))
	assert.True(t, p.values[fieldTotal].Equal(decimal.RequireFromString("49.50")))
}

func TestTrailingFieldsPerLayout(t *testing.T) {
	assert.Equal(t, 4, mustLayout(t, "standard").TrailingFields())
	assert.Equal(t, 5, mustLayout(t, "discount").TrailingFields())
	assert.Equal(t, 3, mustLayout(t, "nounit").TrailingFields())
}
