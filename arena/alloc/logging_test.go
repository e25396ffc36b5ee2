package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/backing"
	"github.com/joshuapare/heapkit/internal/logger"
)

func TestLogger_RecordsAllocatorEvents(t *testing.T) {
	var out bytes.Buffer
	log := logger.New(logger.Options{Enabled: true, Output: &out, Level: slog.LevelDebug})

	fa, err := Init(4096, &Options{Source: backing.Heap{}, Logger: log})
	require.NoError(t, err)
	defer fa.Close()

	a, _, err := fa.Alloc(24)
	require.NoError(t, err)
	b, _, err := fa.Alloc(24)
	require.NoError(t, err)
	require.NoError(t, fa.Free(a))
	require.NoError(t, fa.Free(b))
	_ = fa.Free(b)

	got := out.String()
	assert.Contains(t, got, "alloc: split")
	assert.Contains(t, got, "alloc: coalesce left")
	assert.Contains(t, got, "alloc: coalesce right")
	assert.Contains(t, got, "alloc: fatal")
}
