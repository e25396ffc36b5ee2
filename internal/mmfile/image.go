// Package mmfile maps arena image files into memory.
//
// An image is the raw byte content of an arena. Mapped images are private:
// writes land in copy-on-write pages and never reach the file.
package mmfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/heapkit/internal/backing"
)

// ErrEmpty indicates an image file with no content.
var ErrEmpty = errors.New("mmfile: empty image")

// Image is a mapped arena image. It implements backing.Source so an arena
// can be attached to it: releasing the image bytes unmaps them, and every
// other acquisition (the free registry) is served from the Go heap.
type Image struct {
	path  string
	data  []byte
	unmap func() error
	heap  backing.Heap
}

// Open maps the image at path.
func Open(path string) (*Image, error) {
	data, unmap, err := mapPrivate(path)
	if err != nil {
		return nil, err
	}
	return &Image{path: path, data: data, unmap: unmap}, nil
}

// Path returns the file the image was mapped from.
func (im *Image) Path() string { return im.path }

// Bytes returns the mapped image.
func (im *Image) Bytes() []byte { return im.data }

// Acquire serves companion allocations from the heap.
func (im *Image) Acquire(n int) ([]byte, error) {
	return im.heap.Acquire(n)
}

// Release unmaps the image when b is the image itself.
func (im *Image) Release(b []byte) error {
	if im.owns(b) {
		if im.unmap == nil {
			return backing.ErrForeign
		}
		err := im.unmap()
		im.unmap = nil
		return err
	}
	return im.heap.Release(b)
}

func (im *Image) owns(b []byte) bool {
	return len(b) > 0 && len(im.data) > 0 && &b[0] == &im.data[0]
}

// Close unmaps the image if no arena has released it yet.
func (im *Image) Close() error {
	if im.unmap == nil {
		return nil
	}
	err := im.unmap()
	im.unmap = nil
	return err
}

// Save writes data to path through a temporary file in the same directory,
// so a reader never sees a partial image.
func Save(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".heapimg-*")
	if err != nil {
		return fmt.Errorf("mmfile: save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("mmfile: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mmfile: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("mmfile: save: %w", err)
	}
	return nil
}
