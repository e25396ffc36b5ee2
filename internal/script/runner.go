package script

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// ErrUnknownName indicates free or offset on a name no alloc bound.
var ErrUnknownName = errors.New("script: unknown name")

type binding struct {
	ref     alloc.Ref
	payload []byte
}

// Runner executes commands one at a time against an allocator.
//
// A script that does not start with init gets an implicit init of the
// minimum arena size. A later init closes the current allocator and starts
// over. Failed allocations are reported and the script continues; invalid
// releases and failed verification stop it.
type Runner struct {
	cmds []Command
	pc   int
	out  io.Writer
	opts *alloc.Options

	fa    *alloc.BestFit
	names map[string]binding
}

// NewRunner prepares cmds for execution. Output goes to out; opts is passed
// to every alloc.Init.
func NewRunner(cmds []Command, out io.Writer, opts *alloc.Options) *Runner {
	return &Runner{cmds: cmds, out: out, opts: opts, names: make(map[string]binding)}
}

// Commands returns the script being run.
func (r *Runner) Commands() []Command { return r.cmds }

// PC returns the index of the next command.
func (r *Runner) PC() int { return r.pc }

// Done reports whether every command has run.
func (r *Runner) Done() bool { return r.pc >= len(r.cmds) }

// Allocator returns the current allocator, or nil before the first command.
func (r *Runner) Allocator() *alloc.BestFit { return r.fa }

// Ref returns the reference bound to name.
func (r *Runner) Ref(name string) (alloc.Ref, bool) {
	b, ok := r.names[name]
	return b.ref, ok
}

// Step runs the next command and returns it. It returns io.EOF once the
// script is exhausted.
func (r *Runner) Step() (Command, error) {
	if r.Done() {
		return Command{}, io.EOF
	}
	cmd := r.cmds[r.pc]
	r.pc++
	if err := r.exec(cmd); err != nil {
		return cmd, fmt.Errorf("line %d: %s: %w", cmd.Line, cmd, err)
	}
	return cmd, nil
}

// Run steps until the script ends or a command fails.
func (r *Runner) Run() error {
	for {
		_, err := r.Step()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close releases the current allocator.
func (r *Runner) Close() error {
	if r.fa == nil {
		return nil
	}
	fa := r.fa
	r.fa = nil
	return fa.Close()
}

func (r *Runner) exec(cmd Command) error {
	if cmd.Op == OpInit {
		return r.init(cmd.Size)
	}
	if r.fa == nil {
		if err := r.init(format.MinArenaSize); err != nil {
			return err
		}
	}

	switch cmd.Op {
	case OpAlloc:
		ref, payload, err := r.fa.Alloc(cmd.Size)
		if errors.Is(err, alloc.ErrOutOfMemory) || errors.Is(err, alloc.ErrInvalidSize) {
			delete(r.names, cmd.Name)
			_, werr := fmt.Fprintf(r.out, "%s = alloc(%d) failed: %v\n", cmd.Name, cmd.Size, err)
			return werr
		}
		if err != nil {
			return err
		}
		r.names[cmd.Name] = binding{ref: ref, payload: payload}
		_, err = fmt.Fprintf(r.out, "%s = alloc(%d) -> +%05d\n", cmd.Name, cmd.Size, ref)
		return err

	case OpFree:
		b, ok := r.names[cmd.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownName, cmd.Name)
		}
		if err := r.fa.Free(b.ref); err != nil {
			return err
		}
		_, err := fmt.Fprintf(r.out, "free(%s)\n", cmd.Name)
		return err

	case OpOffset:
		b, ok := r.names[cmd.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownName, cmd.Name)
		}
		_, err := fmt.Fprintf(r.out, "%s at %d\n", cmd.Name, r.fa.Arena().OffsetOfSlice(b.payload))
		return err

	case OpDump:
		return r.fa.Dump(r.out)

	case OpStats:
		return r.fa.PrintStats(r.out)

	case OpVerify:
		if err := r.fa.Verify(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(r.out, "verify: ok")
		return err
	}
	return fmt.Errorf("script: unhandled command %q", cmd.Op)
}

func (r *Runner) init(size int) error {
	if err := r.Close(); err != nil {
		return err
	}
	clear(r.names)
	fa, err := alloc.Init(size, r.opts)
	if err != nil {
		return err
	}
	r.fa = fa
	_, err = fmt.Fprintf(r.out, "init(%d) -> %d bytes\n", size, fa.Arena().Size())
	return err
}
