package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

const (
	allocCell = '█'
	freeCell  = '░'
)

// chunkMapCells maps the arena onto width cells. Each cell shows the status
// of the chunk covering the first byte of its span.
func chunkMapCells(chunks []format.Chunk, arenaSize, width int) []rune {
	if width <= 0 || arenaSize <= 0 || len(chunks) == 0 {
		return nil
	}
	cells := make([]rune, width)
	ci := 0
	for i := range cells {
		pos := i * arenaSize / width
		for ci < len(chunks)-1 && chunks[ci].End() <= pos {
			ci++
		}
		if chunks[ci].Free() {
			cells[i] = freeCell
		} else {
			cells[i] = allocCell
		}
	}
	return cells
}

// renderChunkMap draws the colored chunk map.
func renderChunkMap(chunks []format.Chunk, arenaSize, width int) string {
	cells := chunkMapCells(chunks, arenaSize, width)
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j] == cells[i] {
			j++
		}
		run := strings.Repeat(string(cells[i]), j-i)
		if cells[i] == freeCell {
			b.WriteString(freeCellStyle.Render(run))
		} else {
			b.WriteString(allocCellStyle.Render(run))
		}
		i = j
	}
	return b.String()
}

// renderChunkTable lists one chunk per line.
func renderChunkTable(chunks []format.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "+%05d  %c  %5d\n", c.Offset, c.Status.Char(), c.Size)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
