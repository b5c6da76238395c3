package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutByNameUnknown(t *testing.T) {
	_, err := LayoutByName("nope")
	require.Error(t, err)
}

func TestLayoutMatchItemNumber(t *testing.T) {
	standard := mustLayout(t, "standard")
	assert.True(t, standard.MatchItemNumber("1234567"))
	assert.False(t, standard.MatchItemNumber("123456"))
	assert.False(t, standard.MatchItemNumber("12345678"))
	assert.False(t, standard.MatchItemNumber("AB-1001"))

	lenient := mustLayout(t, "lenient")
	assert.True(t, lenient.MatchItemNumber("AB-1001"))
	assert.True(t, lenient.MatchItemNumber("1234567"))
	assert.False(t, lenient.MatchItemNumber("12,5%"))
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	descriptor := `{
		"name": "supplier-x",
		"item_number_pattern": "^\\d{5}$",
		"header_tokens": ["Item", "Description", "Qty", "Price"],
		"decimal_comma": false,
		"has_unit": false,
		"has_discount": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))

	layout, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, "supplier-x", layout.Name)
	assert.Equal(t, 4, layout.TrailingFields())
	assert.True(t, layout.MatchItemNumber("12345"))
	assert.True(t, layout.IsHeader("Item Description Qty Price"))
}

func TestLoadLayoutRejectsInvalidDescriptor(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		json string
	}{
		{"missing name", `{"item_number_pattern": "^\\d+$", "header_tokens": ["Item"]}`},
		{"empty header tokens", `{"name": "x", "item_number_pattern": "^\\d+$", "header_tokens": []}`},
		{"unknown field", `{"name": "x", "item_number_pattern": "^\\d+$", "header_tokens": ["Item"], "bogus": 1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tc.json), 0644))
			_, err := LoadLayout(path)
			require.Error(t, err)
		})
	}
}

func TestLoadLayoutRejectsBadPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	descriptor := `{"name": "x", "item_number_pattern": "([", "header_tokens": ["Item"]}`
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))

	_, err := LoadLayout(path)
	require.Error(t, err)
}
