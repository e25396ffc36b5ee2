package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/arena"
)

var (
	// ErrOutOfMemory indicates that no free chunk is large enough, or that
	// the arena or registry storage could not be acquired.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidSize indicates a request for fewer than one byte.
	ErrInvalidSize = errors.New("alloc: invalid request size")

	// ErrInvalidFree indicates a release of something that is not the
	// payload of an allocated chunk, including a double free.
	ErrInvalidFree = errors.New("alloc: attempt to free unallocated chunk")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: allocator closed")
)

// FreeError describes a rejected release. It always matches ErrInvalidFree
// with errors.Is; when the rejection came from a damaged header it also
// matches arena.ErrCorruptedHeap.
type FreeError struct {
	Ref    Ref    // Reference passed to Free
	Offset int    // Header offset derived from Ref, or -1
	Reason string // Short description of the failed check
	Err    error  // Underlying cause, may be nil
}

func (e *FreeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%v: ref %d (chunk at %d): %s", ErrInvalidFree, e.Ref, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%v: ref %d: %s", ErrInvalidFree, e.Ref, e.Reason)
}

func (e *FreeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidFree, e.Err}
	}
	return []error{ErrInvalidFree}
}

// IsFatal reports whether err is one the allocator cannot recover from: an
// invalid release or a corrupted heap.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidFree) || errors.Is(err, arena.ErrCorruptedHeap)
}
