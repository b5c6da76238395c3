package constants

import "strings"

// DocumentType tags the provenance of a line item.
type DocumentType string

const (
	Invoice DocumentType = "INVOICE"
	Offer   DocumentType = "OFFER"
)

// RowStatus classifies a reconciliation row.
type RowStatus string

const (
	RowDeviation   RowStatus = "DEVIATION"
	RowInvoiceOnly RowStatus = "INVOICE_ONLY"
	RowClean       RowStatus = "CLEAN"
)

// AllowedExtensions holds the file extensions accepted for invoice documents.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
