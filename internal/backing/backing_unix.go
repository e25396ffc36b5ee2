//go:build unix

package backing

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap is a Source that reserves private anonymous mappings. Pages come
// back zero-filled from the kernel and live outside the Go heap.
type Mmap struct{}

// Default returns the preferred Source for this platform.
func Default() Source { return Mmap{} }

// Acquire maps n bytes of anonymous read/write memory.
func (Mmap) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrAcquire, n)
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrAcquire, n, err)
	}
	return data, nil
}

// Release unmaps a region returned by Acquire.
func (Mmap) Release(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		return ErrForeign
	}
	return err
}
