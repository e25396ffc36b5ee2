package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func newTestRegistry(capacity int) *registry {
	return newRegistry(make([]byte, capacity*format.RegistryEntrySize), capacity)
}

// rawSlot reads slot i regardless of count.
func rawSlot(r *registry, i int) uint32 {
	return format.ReadU32(r.slots, i*format.RegistryEntrySize)
}

func TestRegistry_EmptySlotsHoldSentinel(t *testing.T) {
	r := newTestRegistry(4)
	require.Equal(t, 0, r.Len())
	require.Equal(t, 4, r.Cap())
	for i := range 4 {
		require.Equal(t, uint32(format.InvalidOffset), rawSlot(r, i))
	}
}

func TestRegistry_InsertKeepsAscendingOrder(t *testing.T) {
	r := newTestRegistry(8)
	for _, off := range []int{512, 64, 1024, 0, 96} {
		_, err := r.insert(off)
		require.NoError(t, err)
	}
	require.Equal(t, []int{0, 64, 96, 512, 1024}, r.Offsets())
	require.Equal(t, uint32(format.InvalidOffset), rawSlot(r, 5))
}

func TestRegistry_InsertReturnsIndex(t *testing.T) {
	r := newTestRegistry(8)
	for _, off := range []int{0, 100, 200} {
		_, err := r.insert(off)
		require.NoError(t, err)
	}
	idx, err := r.insert(150)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
}

func TestRegistry_InsertRejectsDuplicateAndOverflow(t *testing.T) {
	r := newTestRegistry(2)
	_, err := r.insert(32)
	require.NoError(t, err)

	_, err = r.insert(32)
	require.Error(t, err)

	_, err = r.insert(64)
	require.NoError(t, err)
	_, err = r.insert(128)
	require.Error(t, err)
	require.Equal(t, []int{32, 64}, r.Offsets())
}

func TestRegistry_RemoveAtCompacts(t *testing.T) {
	r := newTestRegistry(4)
	for _, off := range []int{0, 32, 64, 96} {
		_, err := r.insert(off)
		require.NoError(t, err)
	}

	r.removeAt(1)
	require.Equal(t, []int{0, 64, 96}, r.Offsets())
	require.Equal(t, uint32(format.InvalidOffset), rawSlot(r, 3))

	r.removeAt(2)
	require.Equal(t, []int{0, 64}, r.Offsets())

	r.removeAt(0)
	r.removeAt(0)
	require.Equal(t, 0, r.Len())
	for i := range 4 {
		require.Equal(t, uint32(format.InvalidOffset), rawSlot(r, i))
	}
}

func TestRegistry_Search(t *testing.T) {
	r := newTestRegistry(8)
	for _, off := range []int{32, 64, 128} {
		_, err := r.insert(off)
		require.NoError(t, err)
	}
	tests := []struct {
		off  int
		want int
	}{
		{0, 0},
		{32, 0},
		{33, 1},
		{128, 2},
		{4096, 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, r.search(tt.off), "off=%d", tt.off)
	}
}

func TestRegistry_ReplaceAt(t *testing.T) {
	r := newTestRegistry(4)
	for _, off := range []int{0, 200} {
		_, err := r.insert(off)
		require.NoError(t, err)
	}
	r.replaceAt(0, 44)
	require.Equal(t, []int{44, 200}, r.Offsets())
}
