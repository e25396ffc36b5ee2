package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// registry is the ordered list of free chunk offsets.
//
// Slots are little-endian uint32 values in a byte region obtained from the
// backing source. Slots [0,count) hold strictly ascending offsets; slots
// [count,cap) hold format.InvalidOffset.
type registry struct {
	slots []byte
	count int
	cap   int
}

func newRegistry(storage []byte, capacity int) *registry {
	r := &registry{slots: storage[:capacity*format.RegistryEntrySize], cap: capacity}
	for i := range capacity {
		r.set(i, format.InvalidOffset)
	}
	return r
}

func (r *registry) Len() int { return r.count }
func (r *registry) Cap() int { return r.cap }

// At returns the offset in slot i. i must be below Len.
func (r *registry) At(i int) int {
	return int(format.ReadU32(r.slots, i*format.RegistryEntrySize))
}

func (r *registry) set(i int, v uint32) {
	format.PutU32(r.slots, i*format.RegistryEntrySize, v)
}

// search returns the index of the first entry >= off.
func (r *registry) search(off int) int {
	lo, hi := 0, r.count
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if r.At(mid) < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// insert places off at its sorted position and returns the index.
func (r *registry) insert(off int) (int, error) {
	if r.count == r.cap {
		return -1, fmt.Errorf("registry full at %d entries", r.cap)
	}
	i := r.search(off)
	if i < r.count && r.At(i) == off {
		return -1, fmt.Errorf("offset %d already registered", off)
	}
	const w = format.RegistryEntrySize
	copy(r.slots[(i+1)*w:(r.count+1)*w], r.slots[i*w:r.count*w])
	r.set(i, uint32(off))
	r.count++
	return i, nil
}

// removeAt drops entry i and shifts the tail down.
func (r *registry) removeAt(i int) {
	const w = format.RegistryEntrySize
	copy(r.slots[i*w:(r.count-1)*w], r.slots[(i+1)*w:r.count*w])
	r.count--
	r.set(r.count, format.InvalidOffset)
}

// replaceAt overwrites entry i. The caller keeps the order intact.
func (r *registry) replaceAt(i, off int) {
	r.set(i, uint32(off))
}

// Offsets returns a copy of the live entries.
func (r *registry) Offsets() []int {
	out := make([]int, r.count)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
