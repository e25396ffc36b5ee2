package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
)

var (
	exhaustChunk   int
	exhaustRelease bool
	exhaustDump    bool
)

func init() {
	cmd := newExhaustCmd()
	cmd.Flags().IntVar(&exhaustChunk, "chunk", 24, "Payload bytes per allocation")
	cmd.Flags().BoolVar(&exhaustRelease, "release", false, "Free every other chunk, then the rest")
	cmd.Flags().BoolVar(&exhaustDump, "dump", false, "List chunks after filling")
	rootCmd.AddCommand(cmd)
}

func newExhaustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exhaust",
		Short: "Fill an arena until allocation fails",
		Long: `The exhaust command allocates fixed-size chunks from a fresh arena until
it runs out of memory, then checks that allocated and free bytes still add
up to the arena size. With --release it drains the arena again and checks
that everything merges back into one free chunk.

Example:
  heapctl exhaust
  heapctl exhaust --size 65536 --chunk 100 --release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExhaust()
		},
	}
	return cmd
}

type exhaustResult struct {
	ArenaSize      int
	ChunkRequest   int
	Allocations    int
	AllocatedBytes int
	FreeBytes      int
	Released       bool
	FinalFree      []int `json:",omitempty"`
}

func runExhaust() error {
	fa, err := alloc.Init(arenaSize, nil)
	if err != nil {
		return err
	}
	defer fa.Close()

	var refs []alloc.Ref
	for {
		ref, _, err := fa.Alloc(exhaustChunk)
		if errors.Is(err, alloc.ErrOutOfMemory) {
			break
		}
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	printVerbose("Allocated %d chunks before running out\n", len(refs))

	if err := fa.Verify(); err != nil {
		return fmt.Errorf("after filling: %w", err)
	}
	s := fa.Stats()
	res := exhaustResult{
		ArenaSize:      s.ArenaSize,
		ChunkRequest:   exhaustChunk,
		Allocations:    len(refs),
		AllocatedBytes: s.AllocatedBytes,
		FreeBytes:      s.FreeBytes,
	}

	if exhaustDump && !jsonOut && !quiet {
		if err := printer.Dump(os.Stdout, fa.Arena()); err != nil {
			return err
		}
	}

	if exhaustRelease {
		for _, pass := range []int{0, 1} {
			for i := pass; i < len(refs); i += 2 {
				if err := fa.Free(refs[i]); err != nil {
					return err
				}
			}
			if err := fa.Verify(); err != nil {
				return fmt.Errorf("after release pass %d: %w", pass, err)
			}
		}
		res.Released = true
		res.FinalFree = fa.FreeOffsets()
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Arena:        %d bytes\n", res.ArenaSize)
	printInfo("Allocations:  %d x alloc(%d)\n", res.Allocations, res.ChunkRequest)
	printInfo("Allocated:    %d bytes\n", res.AllocatedBytes)
	printInfo("Free:         %d bytes\n", res.FreeBytes)
	printInfo("Conservation: ok\n")
	if res.Released {
		printInfo("Released:     %d free chunk(s) at %v\n", len(res.FinalFree), res.FinalFree)
	}
	return nil
}
