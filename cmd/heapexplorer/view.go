package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

const (
	// outputPaneHeight is the number of output lines shown.
	outputPaneHeight = 6

	// chromeHeight covers header, borders, chunk map and status bar.
	chromeHeight = 10
)

// View renders the entire UI
func (m Model) View() string {
	if m.showHelp {
		help := NewHelpModel(m.keys)
		return overlay.New(
			help,
			NewMainViewModel(&m),
			overlay.Center, // horizontal position
			overlay.Center, // vertical position
			0,
			0,
		).View()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderOutput(),
		m.renderStatus(),
	)
}

func (m Model) paneWidths() (left, right int) {
	left = max(m.width/3, 24)
	right = max(m.width-left, 24)
	return left, right
}

// renderHeader renders the title, script path and progress
func (m Model) renderHeader() string {
	progress := fmt.Sprintf("step %d/%d", m.runner.PC(), len(m.cmds))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Heap Explorer"),
		"  ",
		pathStyle.Render(m.scriptPath),
		"  ",
		pathStyle.Render(progress),
	)
}

// renderContent renders the script pane and the arena pane side by side
func (m Model) renderContent() string {
	left, right := m.paneWidths()
	height := m.chunks.Height + 2

	scriptPane := paneStyle.
		Width(left - 2).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			paneTitleStyle.Render("Script"),
			m.renderScript(height-1),
		))

	mapWidth := max(right-6, 8)
	arenaTitle := "Arena"
	mapLine := ""
	if fa := m.runner.Allocator(); fa != nil {
		arenaTitle = fmt.Sprintf("Arena %d bytes, %d chunks, %d free", m.stats.ArenaSize, len(m.chunkList), m.stats.FreeChunks)
		mapLine = renderChunkMap(m.chunkList, fa.Arena().Size(), mapWidth)
	}
	arenaPane := paneStyle.
		Width(right - 2).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			paneTitleStyle.Render(arenaTitle),
			mapLine,
			m.chunks.View(),
		))

	return lipgloss.JoinHorizontal(lipgloss.Top, scriptPane, arenaPane)
}

// renderScript lists the commands around the program counter
func (m Model) renderScript(rows int) string {
	pc := m.runner.PC()
	start := max(pc-rows/2, 0)
	end := min(start+rows, len(m.cmds))

	var b strings.Builder
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%3d  %s", m.cmds[i].Line, m.cmds[i])
		switch {
		case i == pc:
			b.WriteString(currentLineStyle.Render("> " + line))
		case i < pc:
			b.WriteString(doneLineStyle.Render("  " + line))
		default:
			b.WriteString("  " + line)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderOutput shows the most recent script output
func (m Model) renderOutput() string {
	lines := m.output.Lines()
	if len(lines) > outputPaneHeight {
		lines = lines[len(lines)-outputPaneHeight:]
	}
	return paneStyle.
		Width(m.width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			paneTitleStyle.Render("Output"),
			strings.Join(lines, "\n"),
		))
}

// renderStatus renders the status bar
func (m Model) renderStatus() string {
	msg := m.statusMessage
	if m.halted != nil {
		msg = errorStyle.Render(msg)
	}
	return statusStyle.Render(msg + "  |  ? help  q quit")
}
