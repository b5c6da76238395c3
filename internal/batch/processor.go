package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okampen/invoice-reconciler/constants"
	"github.com/okampen/invoice-reconciler/internal/common"
	"github.com/okampen/invoice-reconciler/internal/entity"
	"github.com/okampen/invoice-reconciler/internal/extract"
	"github.com/okampen/invoice-reconciler/internal/segment"
)

// Stats aggregates a batch run.
type Stats struct {
	Scanned    uint32
	Matched    uint32
	Parsed     uint32
	Failed     uint32
	ItemsTotal int
}

// Processor parses a batch of invoice documents. Each document is parsed
// start-to-finish with no shared mutable state, so files run in parallel and
// the independent results are concatenated in input order afterwards.
type Processor struct {
	logger      *slog.Logger
	segmenter   *segment.Segmenter
	assembler   *extract.Assembler
	maxParallel int
}

func NewProcessor(segmenter *segment.Segmenter, assembler *extract.Assembler, maxParallel int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Processor{
		logger:      logger,
		segmenter:   segmenter,
		assembler:   assembler,
		maxParallel: maxParallel,
	}
}

// ProcessDirectory walks root, filters on the allowed extensions, skips
// hidden entries and processes every matching file. Walk errors on single
// entries are recorded as failed documents, not batch failures.
func (p *Processor) ProcessDirectory(ctx context.Context, root string) ([]entity.DocumentResult, Stats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, Stats{}, common.NewAppError("CONFIG_ERROR",
			"directory is required", common.ErrInvalidInput)
	}

	var paths []string
	var failed []entity.DocumentResult
	var scanned uint32

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		scanned++
		if walkErr != nil {
			failed = append(failed, entity.DocumentResult{
				JobID: uuid.New(), Path: path,
				Err: common.WrapError(walkErr, "walk"),
			})
			return nil // continue walking
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, Stats{}, common.WrapError(err, "walk directory")
	}

	results, stats := p.ProcessFiles(ctx, paths)
	results = append(results, failed...)
	stats.Scanned = scanned
	stats.Failed += uint32(len(failed))
	return results, stats, nil
}

// ProcessFiles parses every path, fanning out across files up to the
// configured parallelism. A document-level failure is stored in its result;
// it never aborts the other documents. Cancelling ctx stops unstarted work.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) ([]entity.DocumentResult, Stats) {
	results := make([]entity.DocumentResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = entity.DocumentResult{JobID: uuid.New(), Path: path, Err: err}
				return nil
			}
			results[i] = p.processOne(gctx, path)
			return nil
		})
	}
	_ = g.Wait() // workers record errors in their result slot

	stats := Stats{Scanned: uint32(len(paths)), Matched: uint32(len(paths))}
	missingID := 0
	for i := range results {
		if results[i].Err != nil {
			stats.Failed++
			continue
		}
		stats.Parsed++
		stats.ItemsTotal += len(results[i].Items)
		if results[i].InvoiceID == "" {
			missingID++
		}
	}

	// Multi-invoice batches need the identifier for globally unique keys;
	// flag the documents where reconciliation will fall back to item number.
	if len(paths) > 1 && missingID > 0 {
		for i := range results {
			if results[i].Err == nil && results[i].InvoiceID == "" {
				results[i].Warnings = append(results[i].Warnings,
					"no invoice identifier: items from this document may collide with other invoices on item number")
			}
		}
		p.logger.Warn("batch documents missing invoice identifier", "count", missingID)
	}

	return results, stats
}

func (p *Processor) processOne(ctx context.Context, path string) entity.DocumentResult {
	res := entity.DocumentResult{JobID: uuid.New(), Path: path}
	p.logger.Info("processing document", "job_id", res.JobID, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = common.NewAppError("DOCUMENT_UNREADABLE",
			fmt.Sprintf("read %s", path), common.ErrDocumentUnreadable)
		return res
	}

	seg, err := p.segmenter.Segment(ctx, data)
	res.Pages = len(seg.Pages)
	res.Warnings = append(res.Warnings, seg.Warnings...)
	if err != nil {
		res.Err = err
		return res
	}

	asm, err := p.assembler.Assemble(seg.Pages, constants.Invoice)
	res.InvoiceID = asm.InvoiceID
	res.Items = asm.Items
	res.Warnings = append(res.Warnings, asm.Warnings...)
	if err != nil {
		res.Err = err
		return res
	}

	p.logger.Info("document parsed",
		"job_id", res.JobID,
		"invoice_id", res.InvoiceID,
		"pages", res.Pages,
		"items", len(res.Items),
		"warnings", len(res.Warnings),
	)
	return res
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
