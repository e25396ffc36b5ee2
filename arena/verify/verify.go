package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Layout is the byte-level view of an arena collected in one walk.
type Layout struct {
	Chunks         []format.Chunk
	FreeOffsets    []int
	AllocatedBytes int
	FreeBytes      int
}

// Scan walks a and returns its layout. A walk that does not tile the arena
// exactly is reported as a Tiling violation.
func Scan(a *arena.Arena) (Layout, error) {
	var l Layout
	end := 0
	err := a.Walk(func(c format.Chunk) error {
		l.Chunks = append(l.Chunks, c)
		if c.Free() {
			l.FreeOffsets = append(l.FreeOffsets, c.Offset)
			l.FreeBytes += c.Size
		} else {
			l.AllocatedBytes += c.Size
		}
		end = c.End()
		return nil
	})
	if err != nil {
		return Layout{}, &ValidationError{
			Type:    "Tiling",
			Message: fmt.Sprintf("walk stopped: %v", err),
			Offset:  end,
			Err:     err,
		}
	}
	if end != a.Size() {
		return Layout{}, &ValidationError{
			Type:    "Tiling",
			Message: fmt.Sprintf("walk ended at 0x%X, arena size 0x%X", end, a.Size()),
			Offset:  end,
		}
	}
	return l, nil
}

// AllInvariants validates every invariant in one call and returns the first
// violation, or nil.
func AllInvariants(a *arena.Arena, freeOffsets []int) error {
	l, err := Scan(a)
	if err != nil {
		return err
	}
	if err := registryMirror(l, freeOffsets); err != nil {
		return err
	}
	if err := conservation(l, a.Size()); err != nil {
		return err
	}
	return coalesced(l)
}

// Tiling validates that the chunks tile the arena with no gap or overlap.
func Tiling(a *arena.Arena) error {
	_, err := Scan(a)
	return err
}

// RegistryMirror validates that freeOffsets lists exactly the free chunks of
// a in strictly ascending order.
func RegistryMirror(a *arena.Arena, freeOffsets []int) error {
	l, err := Scan(a)
	if err != nil {
		return err
	}
	return registryMirror(l, freeOffsets)
}

// Conservation validates that allocated and free bytes sum to the arena size.
func Conservation(a *arena.Arena) error {
	l, err := Scan(a)
	if err != nil {
		return err
	}
	return conservation(l, a.Size())
}

// Coalesced validates that no two free chunks touch.
func Coalesced(a *arena.Arena) error {
	l, err := Scan(a)
	if err != nil {
		return err
	}
	return coalesced(l)
}

func registryMirror(l Layout, freeOffsets []int) error {
	for i := 1; i < len(freeOffsets); i++ {
		if freeOffsets[i] <= freeOffsets[i-1] {
			return &ValidationError{
				Type:    "RegistryMirror",
				Message: fmt.Sprintf("registry not strictly ascending at index %d", i),
				Offset:  freeOffsets[i],
				Details: map[string]interface{}{"index": i, "previous": freeOffsets[i-1]},
			}
		}
	}
	if len(freeOffsets) != len(l.FreeOffsets) {
		return &ValidationError{
			Type:    "RegistryMirror",
			Message: fmt.Sprintf("registry has %d entries, arena has %d free chunks", len(freeOffsets), len(l.FreeOffsets)),
			Offset:  -1,
			Details: map[string]interface{}{"registry": freeOffsets, "arena": l.FreeOffsets},
		}
	}
	for i, off := range freeOffsets {
		if off != l.FreeOffsets[i] {
			return &ValidationError{
				Type:    "RegistryMirror",
				Message: fmt.Sprintf("registry entry %d is 0x%X, free chunk is at 0x%X", i, off, l.FreeOffsets[i]),
				Offset:  off,
				Details: map[string]interface{}{"index": i, "expected": l.FreeOffsets[i]},
			}
		}
	}
	return nil
}

func conservation(l Layout, size int) error {
	if l.AllocatedBytes+l.FreeBytes != size {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("allocated %d + free %d != size %d", l.AllocatedBytes, l.FreeBytes, size),
			Offset:  -1,
			Details: map[string]interface{}{"allocated": l.AllocatedBytes, "free": l.FreeBytes},
		}
	}
	return nil
}

func coalesced(l Layout) error {
	for i := 1; i < len(l.Chunks); i++ {
		prev, cur := l.Chunks[i-1], l.Chunks[i]
		if prev.Free() && cur.Free() {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free chunks 0x%X and 0x%X are adjacent", prev.Offset, cur.Offset),
				Offset:  cur.Offset,
			}
		}
	}
	return nil
}
