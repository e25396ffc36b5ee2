package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates an offset or size that is not a multiple of Alignment.
	ErrMisaligned = errors.New("format: misaligned offset")
	// ErrBadStatus indicates a header whose status word is neither sentinel.
	ErrBadStatus = errors.New("format: invalid status sentinel")
	// ErrBadSize indicates a header whose size cannot describe a chunk.
	ErrBadSize = errors.New("format: invalid chunk size")
)
