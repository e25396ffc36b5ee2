package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// HelpModel renders the keyboard shortcut box shown over the main view
type HelpModel struct {
	keys KeyMap
}

func NewHelpModel(keys KeyMap) *HelpModel {
	return &HelpModel{keys: keys}
}

func (h *HelpModel) Init() tea.Cmd {
	return nil
}

func (h *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return h, nil
}

func (h *HelpModel) View() string {
	// Key column width for alignment
	const keyWidth = 10

	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, binding := range h.keys.helpBindings() {
		hb := binding.Help()
		b.WriteString(helpKeyStyle.Width(keyWidth).Render(hb.Key))
		b.WriteString("  ")
		b.WriteString(helpDescStyle.Render(hb.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpDescStyle.Render("Press ? or esc to close"))
	return helpBoxStyle.Render(b.String())
}
