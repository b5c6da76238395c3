package entity

import "github.com/google/uuid"

// DocumentResult is the per-document outcome of a batch extraction run.
// Err is set for document-level failures (unreadable input, zero items);
// page- and line-level problems are reported through Warnings instead so
// one bad page never costs the rest of the document.
type DocumentResult struct {
	JobID     uuid.UUID
	Path      string
	InvoiceID string
	Items     []LineItem
	Pages     int
	Warnings  []string
	Err       error
}
