package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// jsonChunk represents one chunk in JSON format.
type jsonChunk struct {
	Offset int    `json:"offset"`
	Status string `json:"status"`
	Size   int    `json:"size"`
}

func (p *Printer) printJSON(a *arena.Arena) error {
	chunks := make([]jsonChunk, 0, 16)
	err := a.Walk(func(c format.Chunk) error {
		chunks = append(chunks, jsonChunk{
			Offset: c.Offset,
			Status: string(c.Status.Char()),
			Size:   c.Size,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}

	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(chunks)
}
