package arena

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// ChunkIterator walks an arena from offset 0 by successive chunk sizes.
type ChunkIterator struct {
	a    *Arena
	off  int
	done bool
}

// Chunks returns an iterator positioned at the first chunk.
func (a *Arena) Chunks() *ChunkIterator {
	return &ChunkIterator{a: a}
}

// Next returns the next chunk, io.EOF once the walk lands exactly on the
// arena end, or an error wrapping ErrCorruptedHeap if a header breaks the
// tiling.
func (it *ChunkIterator) Next() (format.Chunk, error) {
	if it.done {
		return format.Chunk{}, io.EOF
	}
	if it.a.closed {
		it.done = true
		return format.Chunk{}, ErrClosed
	}

	data := it.a.data
	if it.off == len(data) {
		it.done = true
		return format.Chunk{}, io.EOF
	}

	c, next, err := format.NextChunk(data, it.off)
	if err != nil {
		it.done = true
		return format.Chunk{}, fmt.Errorf("%w: %w", ErrCorruptedHeap, err)
	}
	it.off = next
	return c, nil
}

// Walk calls fn for every chunk in address order. It stops at the first
// error from the iterator or from fn.
func (a *Arena) Walk(fn func(c format.Chunk) error) error {
	it := a.Chunks()
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
}
