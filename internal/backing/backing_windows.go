//go:build windows

package backing

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Mmap is a Source that commits private pages with VirtualAlloc. Pages come
// back zero-filled and live outside the Go heap.
type Mmap struct{}

// Default returns the preferred Source for this platform.
func Default() Source { return Mmap{} }

// Acquire reserves and commits n bytes of read/write memory.
func (Mmap) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrAcquire, n)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: VirtualAlloc %d bytes: %w", ErrAcquire, n, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

// Release returns a region obtained from Acquire to the system.
func (Mmap) Release(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("%w: %w", ErrForeign, err)
	}
	return nil
}
