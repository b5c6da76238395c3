package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okampen/invoice-reconciler/internal/common"
)

func TestSegmentUnreadableDocument(t *testing.T) {
	s := NewSegmenter(nil)

	for _, data := range [][]byte{
		nil,
		[]byte(""),
		[]byte("this is not a pdf"),
		[]byte("%PDF-1.4 truncated garbage"),
	} {
		_, err := s.Segment(context.Background(), data)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrDocumentUnreadable), "input %q", data)
	}
}
