package alloc

// Ref is the offset of a payload from the arena base. The chunk header sits
// format.HeaderSize bytes before it.
type Ref = uint32

// Allocator defines the allocate/release surface shared by BestFit and
// SyncAllocator.
type Allocator interface {
	// Alloc reserves at least n bytes and returns the payload reference and
	// a slice aliasing the payload.
	Alloc(n int) (Ref, []byte, error)

	// Free returns the chunk holding ref to the free pool.
	Free(ref Ref) error

	// Close releases the registry storage and the arena.
	Close() error
}

var (
	_ Allocator = (*BestFit)(nil)
	_ Allocator = (*SyncAllocator)(nil)
)
