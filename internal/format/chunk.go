package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Header is the decoded form of the fixed-size header at the start of every
// chunk. It is never overlaid on arena memory; callers move it in and out
// with ReadHeader and WriteHeader.
type Header struct {
	Status Status
	Size   uint32 // Total chunk size including the header
}

// Chunk is a header plus the location of its payload.
type Chunk struct {
	Offset  int    // Offset of the header from the arena base
	Size    int    // Total size including header
	Status  Status // StatusAllocated or StatusFree
	Payload []byte // Alias of the arena bytes after the header, capped at the chunk end
}

// Free reports whether the chunk is tagged free.
func (c Chunk) Free() bool { return c.Status == StatusFree }

// End returns the offset one past the last byte of the chunk.
func (c Chunk) End() int { return c.Offset + c.Size }

// ReadHeader decodes the header at off. It only checks that the header
// fits in b and that off is aligned; status and size are returned raw.
func ReadHeader(b []byte, off int) (Header, error) {
	if !IsAligned(off) {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrMisaligned)
	}
	hb, ok := buf.Slice(b, off, HeaderSize)
	if !ok {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	return Header{
		Status: Status(buf.U32LE(hb[HeaderStatusOffset:])),
		Size:   buf.U32LE(hb[HeaderSizeOffset:]),
	}, nil
}

// WriteHeader encodes h at off.
func WriteHeader(b []byte, off int, h Header) error {
	if !IsAligned(off) {
		return fmt.Errorf("header at %d: %w", off, ErrMisaligned)
	}
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	PutU32(b, off+HeaderStatusOffset, uint32(h.Status))
	PutU32(b, off+HeaderSizeOffset, h.Size)
	return nil
}

// NextChunk decodes the chunk at off and returns it with the offset of the
// chunk that follows. The header must carry a valid status, and its size
// must be aligned, at least MinChunkSize, and must not run past len(b).
func NextChunk(b []byte, off int) (Chunk, int, error) {
	h, err := ReadHeader(b, off)
	if err != nil {
		return Chunk{}, 0, fmt.Errorf("chunk: %w", err)
	}
	if !h.Status.Valid() {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: status %08x: %w", off, uint32(h.Status), ErrBadStatus)
	}
	size := int(h.Size)
	if size < MinChunkSize || !IsAligned(size) {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: size %d: %w", off, size, ErrBadSize)
	}
	next, ok := buf.AddOverflowSafe(off, size)
	if !ok || next > len(b) {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: size %d: %w", off, size, ErrTruncated)
	}
	return Chunk{
		Offset:  off,
		Size:    size,
		Status:  h.Status,
		Payload: b[off+HeaderSize : next : next],
	}, next, nil
}
