// Package alloc implements a best-fit allocator over a single fixed-size
// arena.
//
// # Overview
//
// The arena is tiled by chunks. Every chunk starts with an 8-byte header
// holding a status sentinel and the total chunk size; the payload follows.
// Free chunks are tracked in a registry of offsets kept in ascending address
// order, stored in memory acquired from the same source as the arena.
//
// # Allocation
//
// A request of n bytes is rounded up to a multiple of 4 and grown by the
// header size. The registry is scanned for the smallest free chunk that fits
// (first in address order on ties). If the leftover would be smaller than
// the 32-byte minimum chunk, the whole chunk is handed out; otherwise the
// chunk is split and the free remainder takes its place in the registry.
//
//	fa, err := alloc.Init(64*1024, nil)
//	if err != nil {
//	    return err
//	}
//	defer fa.Close()
//
//	ref, buf, err := fa.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	err = fa.Free(ref)
//
// # Release
//
// Free validates the reference (it must name the payload of an allocated
// chunk), marks the chunk free, inserts it into the registry and merges it
// with an address-adjacent free neighbour on either side. Since every release
// merges, two free chunks are never adjacent and one hop each way suffices.
//
// Invalid releases are fatal: the error wraps ErrInvalidFree and IsFatal
// reports true. Set Options.AbortOnInvalidFree to terminate the process
// instead.
//
// # Thread Safety
//
// BestFit is not safe for concurrent use. Wrap it with NewSync to serialize
// every operation behind one mutex.
package alloc
