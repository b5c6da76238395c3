package extract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okampen/invoice-reconciler/internal/common"
)

//go:embed layout_schema.json
var layoutSchemaJSON []byte

// Layout is the line-shape descriptor for one invoice layout: which tokens
// mark the column header, what an item number looks like, which locale the
// numbers use, and which optional columns the numeric tail carries. Observed
// layouts differ in column count, so the trailing-field shape is data here,
// not a constant.
type Layout struct {
	Name              string   `json:"name"`
	ItemNumberPattern string   `json:"item_number_pattern"`
	HeaderTokens      []string `json:"header_tokens"`
	DecimalComma      bool     `json:"decimal_comma"`
	HasUnit           bool     `json:"has_unit"`
	HasDiscount       bool     `json:"has_discount"`

	itemNumberRe *regexp.Regexp
}

var defaultHeaderTokens = []string{"Art.Nr.", "Beskrivelse", "Ant.", "Enhet", "Pris", "Beløp"}

var builtinLayouts = map[string]Layout{
	"standard": {
		Name:              "standard",
		ItemNumberPattern: `^\d{7}$`,
		HeaderTokens:      defaultHeaderTokens,
		DecimalComma:      true,
		HasUnit:           true,
	},
	"discount": {
		Name:              "discount",
		ItemNumberPattern: `^\d{7}$`,
		HeaderTokens:      defaultHeaderTokens,
		DecimalComma:      true,
		HasUnit:           true,
		HasDiscount:       true,
	},
	"nounit": {
		Name:              "nounit",
		ItemNumberPattern: `^\d{7}$`,
		HeaderTokens:      defaultHeaderTokens,
		DecimalComma:      true,
	},
	"dotdecimal": {
		Name:              "dotdecimal",
		ItemNumberPattern: `^\d{7}$`,
		HeaderTokens:      defaultHeaderTokens,
		HasUnit:           true,
	},
	"lenient": {
		Name:              "lenient",
		ItemNumberPattern: `^[A-Za-z0-9][A-Za-z0-9-]{2,}$`,
		HeaderTokens:      defaultHeaderTokens,
		DecimalComma:      true,
		HasUnit:           true,
	},
}

// LayoutByName returns a compiled built-in layout.
func LayoutByName(name string) (Layout, error) {
	l, ok := builtinLayouts[name]
	if !ok {
		return Layout{}, common.NewAppError("LAYOUT_UNKNOWN",
			fmt.Sprintf("no built-in layout %q", name), common.ErrInvalidInput)
	}
	if err := l.compile(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LayoutNames lists the built-in layout names.
func LayoutNames() []string {
	names := make([]string, 0, len(builtinLayouts))
	for n := range builtinLayouts {
		names = append(names, n)
	}
	return names
}

// LoadLayout reads a JSON layout descriptor from path, validates it against
// the embedded schema and compiles the item-number pattern.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, common.WrapError(err, "read layout file")
	}
	if err := validateLayoutJSON(data); err != nil {
		return Layout{}, common.NewAppError("LAYOUT_INVALID",
			fmt.Sprintf("layout descriptor %s", path), err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, common.WrapError(err, "decode layout file")
	}
	if err := l.compile(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func validateLayoutJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("layout.schema.json", bytes.NewReader(layoutSchemaJSON)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("layout.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("layout does not match schema: %w", err)
	}
	return nil
}

func (l *Layout) compile() error {
	re, err := regexp.Compile(l.ItemNumberPattern)
	if err != nil {
		return common.WrapError(err, "compile item number pattern")
	}
	l.itemNumberRe = re
	return nil
}

// TrailingFields returns the number of columns after the description:
// quantity, unit (optional), unit price, discount (optional), total.
func (l Layout) TrailingFields() int {
	n := 3
	if l.HasUnit {
		n++
	}
	if l.HasDiscount {
		n++
	}
	return n
}

// MatchItemNumber reports whether token has the layout's item-number shape.
func (l Layout) MatchItemNumber(token string) bool {
	return l.itemNumberRe != nil && l.itemNumberRe.MatchString(token)
}

// IsHeader reports whether line contains any of the column-header tokens.
func (l Layout) IsHeader(line string) bool {
	for _, tok := range l.HeaderTokens {
		if strings.Contains(line, tok) {
			return true
		}
	}
	return false
}
