// Package backing acquires and releases the raw byte regions an arena is
// carved from. It is the only place that talks to the environment for
// memory; everything above it sees a plain zero-filled []byte.
package backing

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrAcquire indicates the environment refused to hand out a region.
	ErrAcquire = errors.New("backing: cannot acquire region")

	// ErrForeign indicates Release was called with a region the source did
	// not hand out, or one it already took back.
	ErrForeign = errors.New("backing: region not owned by source")
)

// Source hands out zero-filled byte regions and takes them back.
//
// A region returned by Acquire must be passed to Release exactly once.
type Source interface {
	Acquire(n int) ([]byte, error)
	Release(b []byte) error
}

// Heap is a Source backed by the Go heap. It never fails for sane sizes and
// is the fallback on platforms without anonymous mappings.
type Heap struct{}

// Acquire returns a fresh zeroed slice of n bytes.
func (Heap) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrAcquire, n)
	}
	return make([]byte, n), nil
}

// Release drops the reference; the garbage collector reclaims it.
func (Heap) Release([]byte) error { return nil }

// LimitedSource wraps a Source with a byte budget. Acquisitions that would
// push the outstanding total past the budget fail with ErrAcquire. It also
// keeps the accounting tests use to prove nothing leaks on failure paths.
type LimitedSource struct {
	src    Source
	budget int

	mu          sync.Mutex
	outstanding int
	acquires    int
	releases    int
}

// Limited returns a LimitedSource over src allowing at most budget bytes
// to be outstanding at once. A nil src means Heap.
func Limited(src Source, budget int) *LimitedSource {
	if src == nil {
		src = Heap{}
	}
	return &LimitedSource{src: src, budget: budget}
}

// Counting returns a LimitedSource over src with no effective budget. It is
// used purely for its acquire/release accounting.
func Counting(src Source) *LimitedSource {
	return Limited(src, math.MaxInt)
}

// Acquire forwards to the wrapped source if the budget allows.
func (l *LimitedSource) Acquire(n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > l.budget-l.outstanding {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d available",
			ErrAcquire, n, l.budget-l.outstanding, l.budget)
	}
	b, err := l.src.Acquire(n)
	if err != nil {
		return nil, err
	}
	l.outstanding += len(b)
	l.acquires++
	return b, nil
}

// Release forwards to the wrapped source and returns the bytes to the budget.
func (l *LimitedSource) Release(b []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(b) > l.outstanding {
		return ErrForeign
	}
	if err := l.src.Release(b); err != nil {
		return err
	}
	l.outstanding -= len(b)
	l.releases++
	return nil
}

// Outstanding returns the number of bytes acquired and not yet released.
func (l *LimitedSource) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outstanding
}

// Counts returns how many Acquire and Release calls succeeded.
func (l *LimitedSource) Counts() (acquires, releases int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquires, l.releases
}
