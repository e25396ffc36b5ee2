package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <script>",
		Short: "Show allocator statistics after a script",
		Long: `The stats command runs an allocation script silently and reports call
counters, usage and fragmentation of the final arena.

Example:
  heapctl stats workload.heap
  heapctl stats workload.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

// statsReport is the JSON form of the stats output.
type statsReport struct {
	alloc.Stats
	Fragmentation float64 `json:"Fragmentation"`
	FreeOffsets   []int   `json:"FreeOffsets"`
}

func runStats(args []string) error {
	cmds, err := loadScript(args[0])
	if err != nil {
		return err
	}
	r, err := runScript(cmds, io.Discard)
	defer r.Close()
	if err != nil {
		return err
	}

	fa := r.Allocator()
	s := fa.Stats()
	if jsonOut {
		return printJSON(statsReport{Stats: s, Fragmentation: s.Fragmentation(), FreeOffsets: fa.FreeOffsets()})
	}
	if quiet {
		return nil
	}
	return s.Print(os.Stdout)
}
