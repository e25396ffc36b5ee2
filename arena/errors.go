package arena

import "errors"

var (
	// ErrOutOfRange indicates an offset or address outside the arena.
	ErrOutOfRange = errors.New("arena: offset out of range")

	// ErrCorruptedHeap indicates the chunk tiling can no longer be trusted:
	// a header carries an unknown status or a size that breaks the walk.
	ErrCorruptedHeap = errors.New("arena: corrupted heap")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")

	// ErrTooLarge indicates a size that does not fit a 32-bit header field.
	ErrTooLarge = errors.New("arena: size exceeds header range")

	// ErrBadImage indicates bytes that cannot be adopted as an arena.
	ErrBadImage = errors.New("arena: invalid image")
)
