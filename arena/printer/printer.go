// Package printer renders a human-readable listing of every chunk in an
// arena. It only reads; no header is ever modified.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/arena"
)

const (
	// DefaultPerLine is how many chunks the text format puts on one row.
	DefaultPerLine = 5
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the classic "+00000 (F, 4096)" listing.
	FormatText Format = "text"

	// FormatJSON outputs an array of {offset,status,size} objects.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// PerLine is the number of chunks per row (text format only).
	// Default: 5
	PerLine int
}

// DefaultOptions returns the listing layout used by heap dumps.
func DefaultOptions() Options {
	return Options{
		Format:  FormatText,
		PerLine: DefaultPerLine,
	}
}

// Printer writes chunk listings to a writer.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer.
func New(w io.Writer, opts Options) *Printer {
	if opts.PerLine <= 0 {
		opts.PerLine = DefaultPerLine
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Printer{opts: opts, writer: w}
}

// Print lists every chunk of a. A header with neither status sentinel stops
// the listing with an error wrapping arena.ErrCorruptedHeap.
func (p *Printer) Print(a *arena.Arena) error {
	switch p.opts.Format {
	case FormatText:
		return p.printText(a)
	case FormatJSON:
		return p.printJSON(a)
	default:
		return fmt.Errorf("printer: unsupported format %q", p.opts.Format)
	}
}

// Dump writes the default text listing of a to w.
func Dump(w io.Writer, a *arena.Arena) error {
	return New(w, DefaultOptions()).Print(a)
}
