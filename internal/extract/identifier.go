package extract

import (
	"regexp"

	"github.com/okampen/invoice-reconciler/internal/segment"
)

// invoiceIDPatterns match an invoice-number label loosely followed by a run
// of at least six digits. The first pattern covers the Norwegian documents
// the extractor targets, the second their English-labelled variants.
var invoiceIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Faktura(?:nummer)?[:\s]*\b(\d{6,})\b`),
	regexp.MustCompile(`(?i)Invoice(?:\s*(?:number|no\.?))?[:\s#]*\b(\d{6,})\b`),
}

// ExtractInvoiceID scans pages in order and returns the first identifier
// match. The first page is the canonical location, but later pages are
// checked too. Absence is a normal outcome, not an error: reconciliation can
// proceed with item-number-only keys.
func ExtractInvoiceID(pages []segment.RawPage) (string, bool) {
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		for _, re := range invoiceIDPatterns {
			if m := re.FindStringSubmatch(page.Text); len(m) > 1 {
				return m[1], true
			}
		}
	}
	return "", false
}
