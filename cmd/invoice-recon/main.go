package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/okampen/invoice-reconciler/internal/batch"
	"github.com/okampen/invoice-reconciler/internal/common"
	"github.com/okampen/invoice-reconciler/internal/entity"
	"github.com/okampen/invoice-reconciler/internal/export"
	"github.com/okampen/invoice-reconciler/internal/extract"
	"github.com/okampen/invoice-reconciler/internal/offer"
	"github.com/okampen/invoice-reconciler/internal/reconcile"
	"github.com/okampen/invoice-reconciler/internal/segment"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }
func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var (
		offerPath  = flag.String("offer", "", "offer workbook (XLSX) to reconcile against (required)")
		dir        = flag.String("invoices", "", "directory of invoice PDFs")
		out        = flag.String("out", "", "output XLSX file path (defaults next to the offer file)")
		layoutName = flag.String("layout", "", "built-in invoice layout name")
		layoutFile = flag.String("layout-file", "", "JSON layout descriptor file (overrides -layout)")
		parallel   = flag.Int("parallel", 0, "max documents parsed in parallel")
	)
	var files fileList
	flag.Var(&files, "file", "invoice PDF path (repeatable)")
	flag.Parse()

	if *offerPath == "" {
		printError("Error: -offer is required\n")
		os.Exit(1)
	}
	if *dir == "" && len(files) == 0 {
		printError("Error: -invoices or at least one -file is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*offerPath), "avvik.xlsx")
	}

	// .env is optional; real env always wins
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if *layoutName != "" {
		cfg.Extract.LayoutName = *layoutName
	}
	if *layoutFile != "" {
		cfg.Extract.LayoutFile = *layoutFile
	}
	if *parallel > 0 {
		cfg.Batch.MaxParallel = *parallel
	}

	// Setup logger
	level := slog.LevelInfo
	if cfg.Log.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	layout, err := resolveLayout(cfg)
	if err != nil {
		logger.Error("failed to resolve layout", "error", err,
			"builtin", strings.Join(extract.LayoutNames(), ","))
		os.Exit(1)
	}
	logger.Info("using layout", "name", layout.Name)

	ctx := context.Background()

	// Load the offer table
	offerBytes, err := os.ReadFile(*offerPath)
	if err != nil {
		logger.Error("failed to read offer workbook", "path", *offerPath, "error", err)
		os.Exit(1)
	}
	loader := offer.NewLoader(logger)
	offerItems, offerWarnings, err := loader.Load(offerBytes)
	if err != nil {
		logger.Error("failed to load offer workbook", "path", *offerPath, "error", err)
		os.Exit(1)
	}
	for _, w := range offerWarnings {
		logger.Warn("offer", "warning", w)
	}

	// Parse the invoice documents
	segmenter := segment.NewSegmenter(logger)
	assembler := extract.NewAssembler(layout, logger)
	processor := batch.NewProcessor(segmenter, assembler, cfg.Batch.MaxParallel, logger)

	var results []entity.DocumentResult
	var stats batch.Stats
	if *dir != "" {
		results, stats, err = processor.ProcessDirectory(ctx, *dir)
		if err != nil {
			logger.Error("failed to process invoice directory", "dir", *dir, "error", err)
			os.Exit(1)
		}
	} else {
		results, stats = processor.ProcessFiles(ctx, files)
	}

	var invoiceItems []entity.LineItem
	for _, r := range results {
		if r.Err != nil {
			logger.Error("document failed", "path", r.Path, "job_id", r.JobID, "error", r.Err)
			continue
		}
		for _, w := range r.Warnings {
			logger.Warn("document", "path", r.Path, "warning", w)
		}
		invoiceItems = append(invoiceItems, r.Items...)
	}
	if len(invoiceItems) == 0 {
		logger.Error("no line items extracted from any invoice",
			"failed_documents", stats.Failed)
		os.Exit(1)
	}

	// Reconcile and export
	result := reconcile.Reconcile(offerItems, invoiceItems)
	xlsxBytes, err := export.NewService(logger).ExportXLSX(result)
	if err != nil {
		logger.Error("failed to export reconciliation result", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("reconciliation complete",
		"documents_parsed", stats.Parsed,
		"documents_failed", stats.Failed,
		"invoice_items", len(invoiceItems),
		"offer_items", len(offerItems),
		"deviations", len(result.Deviations),
		"invoice_only", len(result.InvoiceOnly),
		"clean", len(result.Clean),
		"output_file", *out,
	)

	fmt.Printf("Reconciliation complete!\n")
	fmt.Printf("- Documents parsed: %d (failed: %d)\n", stats.Parsed, stats.Failed)
	fmt.Printf("- Deviations: %d\n", len(result.Deviations))
	fmt.Printf("- Invoice-only items: %d\n", len(result.InvoiceOnly))
	fmt.Printf("- Clean rows: %d\n", len(result.Clean))
	fmt.Printf("- Output: %s\n", *out)
}

func resolveLayout(cfg *common.Config) (extract.Layout, error) {
	if cfg.Extract.LayoutFile != "" {
		return extract.LoadLayout(cfg.Extract.LayoutFile)
	}
	return extract.LayoutByName(cfg.Extract.LayoutName)
}
