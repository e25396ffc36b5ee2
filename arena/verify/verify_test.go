package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/backing"
	"github.com/joshuapare/heapkit/internal/format"
)

type chunkSpec struct {
	status format.Status
	size   uint32
}

// newArenaWithLayout writes the given chunks back to back from offset 0.
// The sizes must sum to 4096.
func newArenaWithLayout(t *testing.T, layout []chunkSpec) *arena.Arena {
	t.Helper()
	a, err := arena.New(4096, backing.Heap{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	off := 0
	for _, c := range layout {
		require.NoError(t, a.SetHeader(off, format.Header{Status: c.status, Size: c.size}))
		off += int(c.size)
	}
	return a
}

func TestAllInvariants_FreshArena(t *testing.T) {
	a := newArenaWithLayout(t, []chunkSpec{{format.StatusFree, 4096}})
	require.NoError(t, AllInvariants(a, []int{0}))
}

func TestAllInvariants_Mixed(t *testing.T) {
	a := newArenaWithLayout(t, []chunkSpec{
		{format.StatusAllocated, 64},
		{format.StatusFree, 32},
		{format.StatusAllocated, 1000},
		{format.StatusFree, 3000},
	})
	require.NoError(t, AllInvariants(a, []int{64, 1096}))

	l, err := Scan(a)
	require.NoError(t, err)
	require.Equal(t, 1064, l.AllocatedBytes)
	require.Equal(t, 3032, l.FreeBytes)
}

func TestRegistryMirror_Violations(t *testing.T) {
	a := newArenaWithLayout(t, []chunkSpec{
		{format.StatusFree, 32},
		{format.StatusAllocated, 32},
		{format.StatusFree, 4032},
	})

	tests := []struct {
		name     string
		registry []int
		contains string
	}{
		{"missing entry", []int{0}, "1 entries"},
		{"unsorted", []int{64, 0}, "strictly ascending"},
		{"duplicate", []int{0, 0}, "strictly ascending"},
		{"allocated offset", []int{0, 32}, "free chunk is at 0x40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RegistryMirror(a, tt.registry)
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, "RegistryMirror", verr.Type)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
	require.NoError(t, RegistryMirror(a, []int{0, 64}))
}

func TestTiling_Corruption(t *testing.T) {
	a := newArenaWithLayout(t, []chunkSpec{
		{format.StatusAllocated, 64},
		{format.StatusFree, 4032},
	})
	format.PutU32(a.Bytes(), 64, 0)

	err := Tiling(a)
	require.Error(t, err)
	require.ErrorIs(t, err, arena.ErrCorruptedHeap)
	require.Contains(t, err.Error(), "Tiling at offset 0x40")
}

func TestCoalesced(t *testing.T) {
	a := newArenaWithLayout(t, []chunkSpec{
		{format.StatusFree, 32},
		{format.StatusFree, 32},
		{format.StatusAllocated, 4032},
	})
	err := Coalesced(a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "adjacent")
	require.NoError(t, Conservation(a))
}
