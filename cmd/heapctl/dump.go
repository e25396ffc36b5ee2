package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/printer"
)

var dumpPerLine int

func init() {
	cmd := newDumpCmd()
	cmd.Flags().IntVar(&dumpPerLine, "per-line", printer.DefaultPerLine, "Chunks per row in text output")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <script>",
		Short: "Run a script silently and list the final chunks",
		Long: `The dump command runs an allocation script without printing its
output, then lists every chunk of the final arena as +offset (status,size).

Example:
  heapctl dump workload.heap
  heapctl dump workload.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	cmds, err := loadScript(args[0])
	if err != nil {
		return err
	}
	r, err := runScript(cmds, io.Discard)
	defer r.Close()
	if err != nil {
		return err
	}

	opts := printer.DefaultOptions()
	opts.PerLine = dumpPerLine
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(os.Stdout, opts).Print(r.Allocator().Arena())
}
