package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/script"
)

// loadScript parses the script at path; "-" reads stdin.
func loadScript(path string) ([]script.Command, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	cmds, err := script.Parse(r)
	if err != nil {
		return nil, err
	}
	return withDefaultInit(cmds), nil
}

// withDefaultInit prepends an init of --size when the script has none up
// front.
func withDefaultInit(cmds []script.Command) []script.Command {
	if len(cmds) > 0 && cmds[0].Op == script.OpInit {
		return cmds
	}
	size := arenaSize
	if size < format.MinArenaSize {
		size = format.MinArenaSize
	}
	return append([]script.Command{{Op: script.OpInit, Size: size}}, cmds...)
}

// runScript executes cmds with output to out and returns the runner so the
// caller can inspect the final allocator. The caller closes the runner.
func runScript(cmds []script.Command, out io.Writer) (*script.Runner, error) {
	r := script.NewRunner(cmds, out, &alloc.Options{})
	if err := r.Run(); err != nil {
		return r, err
	}
	return r, nil
}
