package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okampen/invoice-reconciler/internal/common"
	"github.com/okampen/invoice-reconciler/internal/extract"
	"github.com/okampen/invoice-reconciler/internal/segment"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	layout, err := extract.LayoutByName("standard")
	require.NoError(t, err)
	return NewProcessor(segment.NewSegmenter(nil), extract.NewAssembler(layout, nil), 2, nil)
}

func TestProcessFilesMissingFile(t *testing.T) {
	p := newTestProcessor(t)

	results, stats := p.ProcessFiles(context.Background(), []string{"/nonexistent/invoice.pdf"})
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), stats.Failed)
	assert.Equal(t, uint32(0), stats.Parsed)

	res := results[0]
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, common.ErrDocumentUnreadable))
	assert.NotEqual(t, "", res.JobID.String())
}

func TestProcessFilesGarbageDocumentDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0644))

	p := newTestProcessor(t)
	results, stats := p.ProcessFiles(context.Background(), []string{bad, filepath.Join(dir, "missing.pdf")})
	require.Len(t, results, 2)
	assert.Equal(t, uint32(2), stats.Scanned)
	assert.Equal(t, uint32(2), stats.Failed)
	for _, res := range results {
		require.Error(t, res.Err)
	}
}

func TestProcessDirectoryFiltersEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.pdf"), []byte("skip me"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("not a pdf"), 0644))

	p := newTestProcessor(t)
	results, stats, err := p.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	// only bad.pdf matched the extension filter; it fails but is recorded
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), stats.Matched)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Error(t, results[0].Err)
	assert.True(t, errors.Is(results[0].Err, common.ErrDocumentUnreadable))
}

func TestProcessDirectoryRequiresPath(t *testing.T) {
	p := newTestProcessor(t)
	_, _, err := p.ProcessDirectory(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestProcessFilesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProcessor(t)
	results, stats := p.ProcessFiles(ctx, []string{"/tmp/never-read.pdf"})
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Error(t, results[0].Err)
}
