package printer

import (
	"fmt"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

func (p *Printer) printText(a *arena.Arena) error {
	onRow := 0
	err := a.Walk(func(c format.Chunk) error {
		if _, err := fmt.Fprintf(p.writer, "+%05d (%c,%5d) ", c.Offset, c.Status.Char(), c.Size); err != nil {
			return err
		}
		onRow++
		if onRow%p.opts.PerLine == 0 {
			_, err := fmt.Fprintln(p.writer)
			return err
		}
		return nil
	})
	if onRow%p.opts.PerLine != 0 {
		if _, werr := fmt.Fprintln(p.writer); err == nil {
			err = werr
		}
	}
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	return nil
}
