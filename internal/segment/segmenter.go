package segment

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/okampen/invoice-reconciler/internal/common"
)

// RawPage is one page's extracted text in reading order. Text is empty when
// the page had no extractable text; that is a recoverable condition recorded
// as a warning, not a failure.
type RawPage struct {
	Index int
	Text  string
}

// Result holds the ordered page texts of one document plus per-page warnings.
type Result struct {
	Pages    []RawPage
	Warnings []string
}

type Segmenter struct {
	logger *slog.Logger
}

func NewSegmenter(logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{logger: logger}
}

// Segment opens documentBytes as a PDF and extracts each page's text in page
// order. A page that yields no text is skipped with a warning; only a document
// that cannot be opened at all fails, wrapped around ErrDocumentUnreadable.
func (s *Segmenter) Segment(ctx context.Context, data []byte) (Result, error) {
	var res Result

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, common.NewAppError("DOCUMENT_UNREADABLE",
			fmt.Sprintf("open pdf: %v", err), common.ErrDocumentUnreadable)
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		text, err := s.pageText(reader, i)
		if err != nil || strings.TrimSpace(text) == "" {
			msg := fmt.Sprintf("page %d: %v", i, common.ErrPageTextUnavailable)
			if err != nil {
				msg = fmt.Sprintf("page %d: %v: %v", i, common.ErrPageTextUnavailable, err)
			}
			res.Warnings = append(res.Warnings, msg)
			s.logger.Warn("page text unavailable", "page", i, "err", err)
			res.Pages = append(res.Pages, RawPage{Index: i - 1})
			continue
		}
		res.Pages = append(res.Pages, RawPage{Index: i - 1, Text: text})
	}
	return res, nil
}

// pageText extracts one page's text row by row. The pdf library panics on
// some malformed content streams, so the recover turns that into a page-level
// error instead of taking down the whole document.
func (s *Segmenter) pageText(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf content stream: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		for i, word := range row.Content {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(word.S)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
