package main

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/internal/logger"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Esc) {
			m.showHelp = false
		} else if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Step):
		m.step()
	case key.Matches(msg, m.keys.RunAll):
		m.runAll()
	case key.Matches(msg, m.keys.Restart):
		m.restart()
	case key.Matches(msg, m.keys.Copy):
		m.copyDump()
	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		// The viewport's own keymap covers the same keys.
		var cmd tea.Cmd
		m.chunks, cmd = m.chunks.Update(msg)
		return m, cmd
	}
	return m, nil
}

// copyDump copies the text chunk listing to the clipboard
func (m *Model) copyDump() {
	text, err := m.dumpText()
	if err != nil {
		m.statusMessage = "Error: " + err.Error()
		return
	}
	if text == "" {
		m.statusMessage = "Nothing to copy yet"
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		logger.Warn("clipboard write failed", "error", err)
		m.statusMessage = "Clipboard unavailable: " + err.Error()
		return
	}
	m.statusMessage = "Copied chunk list to clipboard"
}

// resizePanes fits the chunk viewport to the right-hand pane.
func (m *Model) resizePanes() {
	_, right := m.paneWidths()
	m.chunks.Width = max(right-4, 10)
	m.chunks.Height = max(m.height-outputPaneHeight-chromeHeight, 3)
}
