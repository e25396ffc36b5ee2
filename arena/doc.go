// Package arena owns the contiguous byte region every chunk lives in.
//
// # Overview
//
// An Arena is acquired once from a backing.Source and tiled back to back by
// chunks. Each chunk starts with an 8-byte header (status sentinel, total
// size) followed by its payload:
//
//	+0      +8            +size   +size+8
//	[status size][payload ][status size][payload ] ... totalSize
//
// A chunk has no identity beyond its byte offset from the arena base. The
// header is the chunk; there is no side table describing it.
//
// # Access
//
// Headers are never overlaid on arena memory. They are read and written
// through offset-validated accessors:
//
//	a, err := arena.New(8192, backing.Default())
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	h, err := a.Header(0)        // {StatusFree, 8192}
//	err = a.SetHeader(0, h)      // bounds and alignment checked
//
// # Walking
//
// Chunks returns an iterator that steps by each chunk's size. Any header
// carrying neither sentinel, or a size that breaks the tiling, surfaces as
// ErrCorruptedHeap:
//
//	it := a.Chunks()
//	for {
//	    c, err := it.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(c.Offset, c.Status.Char(), c.Size)
//	}
//
// # Thread Safety
//
// Arena instances are not thread-safe. The allocator in arena/alloc is the
// only writer; wrap it with alloc.NewSync when sharing across goroutines.
package arena
