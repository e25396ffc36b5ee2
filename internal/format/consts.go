// Package format houses the low-level layout of an arena chunk header. It
// keeps decoding allocation-free and independent from the allocator so the
// arena, verifier, and printer all read headers the same way.
package format

const (
	// MinArenaSize is the smallest arena ever created. Smaller requests are
	// clamped up to this value.
	MinArenaSize = 4096

	// MinChunkSize is the smallest total chunk size, header included. A free
	// remainder below this size is never split off.
	MinChunkSize = 32

	// HeaderSize is the size of the chunk header preceding every payload.
	//
	// Layout (little-endian):
	//
	//	Offset  Size  Description
	//	0x00    4     Status sentinel (StatusAllocated or StatusFree)
	//	0x04    4     Total chunk size in bytes, header included
	HeaderSize = 8

	// HeaderStatusOffset is the offset of the status word within a header.
	HeaderStatusOffset = 0x00

	// HeaderSizeOffset is the offset of the size word within a header.
	HeaderSizeOffset = 0x04

	// Alignment is the rounding applied to every request and chunk size.
	Alignment = 4

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// InvalidOffset marks an empty free registry slot.
	InvalidOffset = 0xFFFFFFFF

	// RegistryEntrySize is the encoded size of one free registry slot.
	RegistryEntrySize = 4
)

// Status is the sentinel stored in the first word of a chunk header.
type Status uint32

const (
	// StatusAllocated tags a chunk handed out to a caller.
	StatusAllocated Status = 0x55555555

	// StatusFree tags a chunk available for allocation.
	StatusFree Status = 0xAAAAAAAA
)

// Valid reports whether s is one of the two chunk sentinels.
func (s Status) Valid() bool {
	return s == StatusAllocated || s == StatusFree
}

// Char returns the single-letter tag used by heap dumps: 'A' or 'F'.
// Unknown values map to '?'.
func (s Status) Char() byte {
	switch s {
	case StatusAllocated:
		return 'A'
	case StatusFree:
		return 'F'
	default:
		return '?'
	}
}

func (s Status) String() string {
	switch s {
	case StatusAllocated:
		return "allocated"
	case StatusFree:
		return "free"
	default:
		return "invalid"
	}
}
