package alloc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// BestFit is a best-fit allocator with split and one-hop coalescing over a
// single arena. The zero value is not usable; see Init and New.
type BestFit struct {
	a      *arena.Arena
	regMem []byte // registry storage, owned by a.Source()
	reg    *registry

	opts   Options
	stats  allocatorStats
	closed bool
}

// Init creates an arena of at least requestedSize bytes and an allocator
// over it. The size is clamped up to format.MinArenaSize and rounded to a
// multiple of 4. The arena starts as one free chunk.
//
// Failure to acquire either the arena or the registry storage returns an
// error wrapping ErrOutOfMemory, with nothing left acquired.
func Init(requestedSize int, opts *Options) (*BestFit, error) {
	o := resolveOptions(opts)
	a, err := arena.New(requestedSize, o.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	fa, err := newBestFit(a, o)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	fa.log().Debug("alloc: init", "size", a.Size(), "registry_cap", fa.reg.Cap())
	return fa, nil
}

// New builds an allocator over an existing arena by walking its chunks and
// registering every free one. The allocator takes ownership of a; Close
// releases it. On error a is left untouched and still owned by the caller.
//
// The registry storage comes from a.Source(); opts.Source is ignored.
func New(a *arena.Arena, opts *Options) (*BestFit, error) {
	if a == nil || a.Closed() {
		return nil, arena.ErrClosed
	}
	return newBestFit(a, resolveOptions(opts))
}

func newBestFit(a *arena.Arena, o Options) (*BestFit, error) {
	capacity := format.RegistryCapacity(a.Size())
	n, err := buf.TableSize(capacity, format.RegistryEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%w: registry: %w", ErrOutOfMemory, err)
	}
	src := a.Source()
	mem, err := src.Acquire(n)
	if err != nil {
		return nil, fmt.Errorf("%w: registry: %w", ErrOutOfMemory, err)
	}
	if len(mem) < n {
		_ = src.Release(mem)
		return nil, fmt.Errorf("%w: registry: source returned %d of %d bytes", ErrOutOfMemory, len(mem), n)
	}

	fa := &BestFit{
		a:      a,
		regMem: mem,
		reg:    newRegistry(mem, capacity),
		opts:   o,
	}

	// Chunks arrive in address order, so appending keeps the registry sorted.
	err = a.Walk(func(c format.Chunk) error {
		if !c.Free() {
			return nil
		}
		if _, err := fa.reg.insert(c.Offset); err != nil {
			return fmt.Errorf("%w: %w", arena.ErrCorruptedHeap, err)
		}
		return nil
	})
	if err != nil {
		_ = src.Release(mem)
		return nil, fmt.Errorf("alloc: scan arena: %w", err)
	}
	return fa, nil
}

func (fa *BestFit) log() *slog.Logger {
	if fa.opts.Logger != nil {
		return fa.opts.Logger
	}
	return logger.L
}

// Arena returns the arena the allocator manages.
func (fa *BestFit) Arena() *arena.Arena { return fa.a }

// Alloc reserves at least n bytes. It returns the payload reference and a
// slice aliasing exactly the chunk payload, which may be longer than n. The
// payload is not cleared.
//
// n < 1 returns ErrInvalidSize; no fitting free chunk returns ErrOutOfMemory.
// Neither mutates the arena.
func (fa *BestFit) Alloc(n int) (Ref, []byte, error) {
	if fa.closed {
		return 0, nil, ErrClosed
	}
	fa.stats.AllocCalls++

	if n < 1 {
		fa.stats.FailedAllocs++
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if n > fa.a.Size() {
		fa.stats.FailedAllocs++
		return 0, nil, fmt.Errorf("%w: %d bytes exceeds arena size %d", ErrOutOfMemory, n, fa.a.Size())
	}
	// Chunks never shrink below MinChunkSize, which bounds the registry.
	total := max(format.Align4(n)+format.HeaderSize, format.MinChunkSize)

	idx, best, err := fa.bestFit(total)
	if err != nil {
		fa.stats.FailedAllocs++
		return 0, nil, err
	}
	if idx < 0 {
		fa.stats.FailedAllocs++
		fa.log().Debug("alloc: no fit", "request", n, "total", total, "free_chunks", fa.reg.Len())
		return 0, nil, fmt.Errorf("%w: no free chunk of %d bytes", ErrOutOfMemory, total)
	}

	off, size := best.Offset, best.Size
	if size-total < format.MinChunkSize {
		if err := fa.a.SetHeader(off, format.Header{Status: format.StatusAllocated, Size: uint32(size)}); err != nil {
			return 0, nil, err
		}
		fa.reg.removeAt(idx)
		fa.stats.WholeClaims++
		fa.log().Debug("alloc: claim", "request", n, "offset", off, "size", size)
	} else {
		rest := off + total
		if err := fa.a.SetHeader(off, format.Header{Status: format.StatusAllocated, Size: uint32(total)}); err != nil {
			return 0, nil, err
		}
		if err := fa.a.SetHeader(rest, format.Header{Status: format.StatusFree, Size: uint32(size - total)}); err != nil {
			return 0, nil, err
		}
		// The remainder lies between off and the next registered offset.
		fa.reg.replaceAt(idx, rest)
		fa.stats.Splits++
		fa.log().Debug("alloc: split", "request", n, "offset", off, "size", total, "remainder", size-total)
		size = total
	}

	fa.stats.BytesAllocated += int64(size)
	ref := Ref(off + format.HeaderSize)
	end := off + size
	return ref, fa.a.Bytes()[off+format.HeaderSize : end : end], nil
}

// bestFit returns the registry index and chunk of the smallest free chunk of
// at least total bytes, first in address order on ties. idx is -1 when none
// fits.
func (fa *BestFit) bestFit(total int) (int, format.Chunk, error) {
	bestIdx := -1
	var best format.Chunk
	for i := range fa.reg.Len() {
		c, err := fa.freeChunk(fa.reg.At(i))
		if err != nil {
			return -1, format.Chunk{}, err
		}
		if c.Size < total {
			continue
		}
		if bestIdx < 0 || c.Size < best.Size {
			bestIdx, best = i, c
			if c.Size == total {
				break
			}
		}
	}
	return bestIdx, best, nil
}

// freeChunk decodes a registered chunk and checks it is still tagged free.
func (fa *BestFit) freeChunk(off int) (format.Chunk, error) {
	c, err := fa.a.Chunk(off)
	if err != nil {
		return format.Chunk{}, err
	}
	if !c.Free() {
		return format.Chunk{}, fmt.Errorf("%w: registered chunk at %d is not free", arena.ErrCorruptedHeap, off)
	}
	return c, nil
}

// Free releases the chunk whose payload starts at ref and merges it with
// adjacent free chunks.
//
// A reference that does not name the payload of an allocated chunk returns a
// *FreeError wrapping ErrInvalidFree and leaves the arena untouched. With
// Options.AbortOnInvalidFree the error is first passed to Options.Fatal.
func (fa *BestFit) Free(ref Ref) error {
	if fa.closed {
		return ErrClosed
	}
	fa.stats.FreeCalls++

	c, err := fa.allocatedChunk(ref)
	if err != nil {
		fa.stats.FailedFrees++
		return fa.fatal(err)
	}

	if err := fa.a.SetHeader(c.Offset, format.Header{Status: format.StatusFree, Size: uint32(c.Size)}); err != nil {
		return err
	}
	idx, err := fa.reg.insert(c.Offset)
	if err != nil {
		return fa.fatal(fmt.Errorf("%w: %w", arena.ErrCorruptedHeap, err))
	}
	fa.stats.BytesFreed += int64(c.Size)
	fa.log().Debug("alloc: free", "ref", ref, "offset", c.Offset, "size", c.Size)

	if err := fa.coalesce(idx); err != nil {
		return fa.fatal(err)
	}
	return nil
}

// allocatedChunk validates ref and returns the allocated chunk it names.
func (fa *BestFit) allocatedChunk(ref Ref) (format.Chunk, error) {
	reject := func(off int, reason string, cause error) (format.Chunk, error) {
		return format.Chunk{}, &FreeError{Ref: ref, Offset: off, Reason: reason, Err: cause}
	}

	if int64(ref) < format.HeaderSize {
		return reject(-1, "reference precedes first payload", nil)
	}
	off := int(ref) - format.HeaderSize
	if !format.IsAligned(off) {
		return reject(off, "misaligned reference", nil)
	}
	if !fa.a.Contains(off) || !fa.a.Contains(off+format.HeaderSize-1) {
		return reject(off, "reference outside arena", nil)
	}
	if err := fa.chunkBoundary(off); err != nil {
		return reject(off, "not a chunk boundary", err)
	}

	h, err := fa.a.Header(off)
	if err != nil {
		return reject(off, "unreadable header", err)
	}
	if h.Status != format.StatusAllocated {
		return reject(off, fmt.Sprintf("status %08x is not allocated", uint32(h.Status)), nil)
	}
	c, err := fa.a.Chunk(off)
	if err != nil {
		return reject(off, fmt.Sprintf("bad chunk size %d", h.Size), err)
	}
	return c, nil
}

// chunkBoundary walks forward from the closest registered free chunk below
// off and reports an error unless the walk lands exactly on off.
func (fa *BestFit) chunkBoundary(off int) error {
	idx := fa.reg.search(off)
	if idx < fa.reg.Len() && fa.reg.At(idx) == off {
		return nil
	}
	cur := 0
	if idx > 0 {
		cur = fa.reg.At(idx - 1)
	}
	if cur == off {
		return nil
	}
	for {
		c, err := fa.a.Chunk(cur)
		if err != nil {
			return err
		}
		if c.End() == off {
			return nil
		}
		if c.End() > off {
			return fmt.Errorf("offset %d lies inside chunk %d+%d", off, c.Offset, c.Size)
		}
		cur = c.End()
	}
}

// coalesce merges the free chunk at registry index idx with its registered
// neighbours when they touch it.
func (fa *BestFit) coalesce(idx int) error {
	cur, err := fa.freeChunk(fa.reg.At(idx))
	if err != nil {
		return err
	}

	if idx > 0 {
		left, err := fa.freeChunk(fa.reg.At(idx - 1))
		if err != nil {
			return err
		}
		if left.End() == cur.Offset {
			merged := format.Header{Status: format.StatusFree, Size: uint32(left.Size + cur.Size)}
			if err := fa.a.SetHeader(left.Offset, merged); err != nil {
				return err
			}
			fa.reg.removeAt(idx)
			idx--
			fa.stats.CoalesceLeft++
			fa.log().Debug("alloc: coalesce left", "offset", left.Offset, "absorbed", cur.Offset, "size", merged.Size)
			cur = format.Chunk{Offset: left.Offset, Size: int(merged.Size), Status: format.StatusFree}
		}
	}

	if idx+1 < fa.reg.Len() {
		right, err := fa.freeChunk(fa.reg.At(idx + 1))
		if err != nil {
			return err
		}
		if cur.End() == right.Offset {
			merged := format.Header{Status: format.StatusFree, Size: uint32(cur.Size + right.Size)}
			if err := fa.a.SetHeader(cur.Offset, merged); err != nil {
				return err
			}
			fa.reg.removeAt(idx + 1)
			fa.stats.CoalesceRight++
			fa.log().Debug("alloc: coalesce right", "offset", cur.Offset, "absorbed", right.Offset, "size", merged.Size)
		}
	}
	return nil
}

func (fa *BestFit) fatal(err error) error {
	if IsFatal(err) {
		fa.log().Error("alloc: fatal", "error", err)
		if fa.opts.AbortOnInvalidFree && fa.opts.Fatal != nil {
			fa.opts.Fatal(err)
		}
	}
	return err
}

// Payload returns the payload slice of the allocated chunk at ref.
func (fa *BestFit) Payload(ref Ref) ([]byte, error) {
	if fa.closed {
		return nil, ErrClosed
	}
	c, err := fa.allocatedChunk(ref)
	if err != nil {
		return nil, err
	}
	return c.Payload, nil
}

// FreeOffsets returns the registered free chunk offsets in address order.
func (fa *BestFit) FreeOffsets() []int {
	if fa.closed {
		return nil
	}
	return fa.reg.Offsets()
}

// Verify checks every structural invariant of the arena and registry.
func (fa *BestFit) Verify() error {
	if fa.closed {
		return ErrClosed
	}
	return verify.AllInvariants(fa.a, fa.reg.Offsets())
}

// Dump writes the chunk listing of the arena to w.
func (fa *BestFit) Dump(w io.Writer) error {
	if fa.closed {
		return ErrClosed
	}
	return printer.Dump(w, fa.a)
}

// Close releases the registry storage and then the arena. A second call
// returns ErrClosed.
func (fa *BestFit) Close() error {
	if fa.closed {
		return ErrClosed
	}
	fa.closed = true

	var errs []error
	if err := fa.a.Source().Release(fa.regMem); err != nil {
		errs = append(errs, fmt.Errorf("alloc: release registry: %w", err))
	}
	fa.regMem, fa.reg = nil, nil
	if err := fa.a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
