package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/backing"
	"github.com/joshuapare/heapkit/internal/format"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// chunkSpec describes one chunk of a hand-built layout.
type chunkSpec struct {
	status format.Status
	size   int
}

func F(size int) chunkSpec { return chunkSpec{format.StatusFree, size} }
func A(size int) chunkSpec { return chunkSpec{format.StatusAllocated, size} }

// newTestAllocator creates an allocator over a fresh heap-backed arena.
func newTestAllocator(t testing.TB, size int) *BestFit {
	t.Helper()
	fa, err := Init(size, &Options{Source: backing.Heap{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fa.Close() })
	return fa
}

// newTestAllocatorWithLayout writes layout into a 4096-byte arena and builds
// an allocator over it. The layout must cover the arena exactly.
func newTestAllocatorWithLayout(t testing.TB, layout []chunkSpec) *BestFit {
	t.Helper()

	a, err := arena.New(format.MinArenaSize, backing.Heap{})
	require.NoError(t, err)

	off := 0
	for _, c := range layout {
		require.NoError(t, a.SetHeader(off, format.Header{Status: c.status, Size: uint32(c.size)}))
		off += c.size
	}
	require.Equal(t, a.Size(), off, "layout must tile the arena")

	fa, err := New(a, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fa.Close() })
	return fa
}

// ============================================================================
// Inspection Utilities
// ============================================================================

// assertInvariants fails the test if tiling, registry mirror, conservation
// or coalescing is broken.
func assertInvariants(t testing.TB, fa *BestFit) {
	t.Helper()
	require.NoError(t, fa.Verify())
}

// headerAt reads the header at off.
func headerAt(t testing.TB, fa *BestFit, off int) format.Header {
	t.Helper()
	h, err := fa.Arena().Header(off)
	require.NoError(t, err)
	return h
}

// snapshot copies the arena bytes and registry for no-mutation checks.
func snapshot(fa *BestFit) ([]byte, []int) {
	return append([]byte(nil), fa.Arena().Bytes()...), fa.FreeOffsets()
}

func requireUnchanged(t testing.TB, fa *BestFit, bytes []byte, offsets []int) {
	t.Helper()
	require.Equal(t, bytes, fa.Arena().Bytes(), "arena bytes changed")
	require.Equal(t, offsets, fa.FreeOffsets(), "registry changed")
}
