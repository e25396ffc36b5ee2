package alloc

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/internal/format"
)

// allocatorStats holds internal call counters.
type allocatorStats struct {
	AllocCalls     int   // Total Alloc() calls
	FreeCalls      int   // Total Free() calls
	FailedAllocs   int   // Alloc() calls that returned an error
	FailedFrees    int   // Free() calls rejected by validation
	Splits         int   // Allocations that split a free chunk
	WholeClaims    int   // Allocations that took a free chunk whole
	CoalesceLeft   int   // Merges into the preceding free chunk
	CoalesceRight  int   // Merges of the following free chunk
	BytesAllocated int64 // Total chunk bytes handed out, headers included
	BytesFreed     int64 // Total chunk bytes released
}

// Stats is a snapshot of allocator counters and arena usage.
type Stats struct {
	allocatorStats

	ArenaSize       int
	AllocatedChunks int
	AllocatedBytes  int // Headers included
	FreeChunks      int
	FreeBytes       int // Headers included
	LargestFree     int
	RegistryLen     int
	RegistryCap     int
}

// Fragmentation is 1 - LargestFree/FreeBytes: 0 when all free space is one
// chunk, approaching 1 as it scatters.
func (s Stats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// Stats walks the arena and returns a snapshot. If a header is corrupt the
// usage fields cover the chunks before it.
func (fa *BestFit) Stats() Stats {
	s := Stats{allocatorStats: fa.stats}
	if fa.closed {
		return s
	}
	s.ArenaSize = fa.a.Size()
	s.RegistryLen = fa.reg.Len()
	s.RegistryCap = fa.reg.Cap()
	_ = fa.a.Walk(func(c format.Chunk) error {
		if c.Free() {
			s.FreeChunks++
			s.FreeBytes += c.Size
			s.LargestFree = max(s.LargestFree, c.Size)
		} else {
			s.AllocatedChunks++
			s.AllocatedBytes += c.Size
		}
		return nil
	})
	return s
}

// PrintStats writes a formatted stats report to w.
func (fa *BestFit) PrintStats(w io.Writer) error {
	return fa.Stats().Print(w)
}

// Print writes s to w with thousands separators.
func (s Stats) Print(w io.Writer) error {
	p := message.NewPrinter(language.English)
	lines := []struct {
		format string
		args   []any
	}{
		{"Arena:          %d bytes\n", []any{s.ArenaSize}},
		{"Allocated:      %d bytes in %d chunks\n", []any{s.AllocatedBytes, s.AllocatedChunks}},
		{"Free:           %d bytes in %d chunks (largest %d)\n", []any{s.FreeBytes, s.FreeChunks, s.LargestFree}},
		{"Fragmentation:  %.1f%%\n", []any{s.Fragmentation() * 100}},
		{"Registry:       %d / %d slots\n", []any{s.RegistryLen, s.RegistryCap}},
		{"Alloc calls:    %d (%d failed, %d split, %d whole)\n", []any{s.AllocCalls, s.FailedAllocs, s.Splits, s.WholeClaims}},
		{"Free calls:     %d (%d rejected)\n", []any{s.FreeCalls, s.FailedFrees}},
		{"Coalesces:      %d left, %d right\n", []any{s.CoalesceLeft, s.CoalesceRight}},
		{"Bytes:          %d allocated, %d freed\n", []any{s.BytesAllocated, s.BytesFreed}},
	}
	for _, l := range lines {
		if _, err := p.Fprintf(w, l.format, l.args...); err != nil {
			return err
		}
	}
	return nil
}
