package arena

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/backing"
	"github.com/joshuapare/heapkit/internal/format"
)

// Arena is a fixed-size byte region tiled by chunks.
type Arena struct {
	data   []byte
	src    backing.Source
	closed bool
}

// New acquires an arena of at least requestedSize bytes from src and writes
// a single free chunk spanning all of it. The size is clamped up to
// format.MinArenaSize and rounded to format.Alignment. A nil src means
// backing.Default().
//
// On failure nothing is retained.
func New(requestedSize int, src backing.Source) (*Arena, error) {
	if src == nil {
		src = backing.Default()
	}
	size := format.ArenaSize(requestedSize)
	if uint64(size) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	data, err := src.Acquire(size)
	if err != nil {
		return nil, fmt.Errorf("arena: acquire %d bytes: %w", size, err)
	}
	if len(data) < size {
		_ = src.Release(data)
		return nil, fmt.Errorf("arena: source returned %d of %d bytes", len(data), size)
	}
	data = data[:size]

	a := &Arena{data: data, src: src}
	if err := a.SetHeader(0, format.Header{Status: format.StatusFree, Size: uint32(size)}); err != nil {
		_ = src.Release(data)
		return nil, err
	}
	return a, nil
}

// Attach adopts data, an existing arena image, without writing to it. The
// image must be at least format.MinArenaSize, a multiple of
// format.Alignment, and fit a header size field. Close releases data to src.
//
// The chunk tiling is not checked here; rebuilding an allocator over the
// arena walks it and reports corruption.
func Attach(data []byte, src backing.Source) (*Arena, error) {
	if src == nil {
		src = backing.Heap{}
	}
	switch {
	case len(data) < format.MinArenaSize:
		return nil, fmt.Errorf("%w: %d bytes is below the %d byte minimum",
			ErrBadImage, len(data), format.MinArenaSize)
	case !format.IsAligned(len(data)):
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d",
			ErrBadImage, len(data), format.Alignment)
	case uint64(len(data)) > math.MaxUint32:
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return &Arena{data: data, src: src}, nil
}

// Bytes returns the raw arena bytes. Callers outside this module should
// prefer the header accessors.
func (a *Arena) Bytes() []byte { return a.data }

// Size returns the total arena size in bytes.
func (a *Arena) Size() int { return len(a.data) }

// Source returns the backing source the arena bytes came from. Companion
// structures such as the free registry are acquired from the same source.
func (a *Arena) Source() backing.Source { return a.src }

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool { return a.closed }

// Header decodes the chunk header at off. The offset must be aligned and the
// whole header must lie inside the arena; the status is returned unchecked.
func (a *Arena) Header(off int) (format.Header, error) {
	if a.closed {
		return format.Header{}, ErrClosed
	}
	h, err := format.ReadHeader(a.data, off)
	if err != nil {
		return format.Header{}, fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return h, nil
}

// SetHeader encodes h at off under the same checks as Header.
func (a *Arena) SetHeader(off int, h format.Header) error {
	if a.closed {
		return ErrClosed
	}
	if err := format.WriteHeader(a.data, off, h); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return nil
}

// Chunk decodes and validates the chunk at off. Unknown status sentinels and
// sizes that overrun the arena are reported as ErrCorruptedHeap.
func (a *Arena) Chunk(off int) (format.Chunk, error) {
	if a.closed {
		return format.Chunk{}, ErrClosed
	}
	if off < 0 || off >= len(a.data) {
		return format.Chunk{}, fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	c, _, err := format.NextChunk(a.data, off)
	if err != nil {
		return format.Chunk{}, fmt.Errorf("%w: %w", ErrCorruptedHeap, err)
	}
	return c, nil
}

// Contains reports whether off is a byte offset inside the arena.
func (a *Arena) Contains(off int) bool {
	return !a.closed && off >= 0 && off < len(a.data)
}

// OffsetOf returns the byte offset of p from the arena base, or -1 when p is
// nil or does not point into the arena.
func (a *Arena) OffsetOf(p unsafe.Pointer) int {
	if p == nil || a.closed || len(a.data) == 0 {
		return -1
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.data)))
	addr := uintptr(p)
	if addr < base || addr >= base+uintptr(len(a.data)) {
		return -1
	}
	return int(addr - base)
}

// OffsetOfSlice returns the offset of the first byte of b, or -1 when b is
// empty or lies outside the arena.
func (a *Arena) OffsetOfSlice(b []byte) int {
	if len(b) == 0 {
		return -1
	}
	return a.OffsetOf(unsafe.Pointer(unsafe.SliceData(b)))
}

// Close returns the arena bytes to the source. The arena is unusable
// afterwards; a second Close reports ErrClosed.
func (a *Arena) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	data := a.data
	a.data = nil
	if err := a.src.Release(data); err != nil {
		return fmt.Errorf("arena: release: %w", err)
	}
	return nil
}
