package main

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/script"
)

// maxOutputLines bounds the retained script output.
const maxOutputLines = 200

// Model is the main bubbletea model.
type Model struct {
	scriptPath string
	cmds       []script.Command
	opts       *alloc.Options
	runner     *script.Runner

	keys     KeyMap
	chunks   viewport.Model
	width    int
	height   int
	showHelp bool

	output        *outputLog
	chunkList     []format.Chunk
	stats         alloc.Stats
	halted        error // set when a command failed; stepping stops
	statusMessage string
}

// NewModel creates a model ready to run cmds. opts is passed to the
// allocator; nil means defaults.
func NewModel(scriptPath string, cmds []script.Command, opts *alloc.Options) Model {
	m := Model{
		output:     &outputLog{},
		scriptPath: scriptPath,
		cmds:       cmds,
		opts:       opts,
		keys:       DefaultKeyMap(),
		chunks:     viewport.New(40, 10),
		width:      100,
		height:     30,
	}
	m.runner = script.NewRunner(cmds, m.output, opts)
	m.statusMessage = "Press n to run the first command"
	m.resizePanes()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Close releases the allocator.
func (m Model) Close() error {
	return m.runner.Close()
}

// step runs one command and refreshes the views.
func (m *Model) step() {
	if m.halted != nil {
		m.statusMessage = "Stopped on error; press R to restart"
		return
	}
	if m.runner.Done() {
		m.statusMessage = "Script finished"
		return
	}
	cmd, err := m.runner.Step()
	if err != nil {
		m.halted = err
		m.statusMessage = "Error: " + err.Error()
		logger.Warn("script command failed", "line", cmd.Line, "error", err)
	} else {
		m.statusMessage = "Ran " + cmd.String()
	}
	m.refresh()
}

// runAll steps until the script ends or fails.
func (m *Model) runAll() {
	for m.halted == nil && !m.runner.Done() {
		m.step()
	}
	if m.halted == nil {
		m.statusMessage = "Script finished"
	}
}

// restart discards the allocator and rewinds the script.
func (m *Model) restart() {
	if err := m.runner.Close(); err != nil {
		logger.Warn("error closing allocator", "error", err)
	}
	m.output = &outputLog{}
	m.runner = script.NewRunner(m.cmds, m.output, m.opts)
	m.halted = nil
	m.chunkList = nil
	m.stats = alloc.Stats{}
	m.refresh()
	m.statusMessage = "Restarted"
}

// refresh rebuilds the chunk list from the current arena.
func (m *Model) refresh() {
	m.chunkList = m.chunkList[:0]
	fa := m.runner.Allocator()
	if fa == nil {
		m.chunks.SetContent("")
		return
	}
	_ = fa.Arena().Walk(func(c format.Chunk) error {
		m.chunkList = append(m.chunkList, c)
		return nil
	})
	m.stats = fa.Stats()
	m.chunks.SetContent(renderChunkTable(m.chunkList))
}

// dumpText returns the text chunk listing of the current arena.
func (m Model) dumpText() (string, error) {
	fa := m.runner.Allocator()
	if fa == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := printer.Dump(&buf, fa.Arena()); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// outputLog collects runner output as lines. Models share it by pointer so
// it survives bubbletea's value copies.
type outputLog struct {
	lines   []string
	partial string
}

func (o *outputLog) Write(p []byte) (int, error) {
	text := o.partial + string(p)
	lines := strings.Split(text, "\n")
	o.partial = lines[len(lines)-1]
	o.lines = append(o.lines, lines[:len(lines)-1]...)
	if over := len(o.lines) - maxOutputLines; over > 0 {
		o.lines = o.lines[over:]
	}
	return len(p), nil
}

// Lines returns the complete lines written so far.
func (o *outputLog) Lines() []string { return o.lines }
