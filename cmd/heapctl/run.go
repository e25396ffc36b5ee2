package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

var runSave string

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runSave, "save", "", "Write the final arena image to this file")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an allocation script",
		Long: `The run command executes an allocation script line by line and prints
the result of every command. Use "-" to read the script from stdin.

Script commands:
  init <size>          start a new arena
  alloc <name> <n>     allocate n bytes and bind the payload to name
  free <name>          release the chunk bound to name
  offset <name>        print the payload offset of name
  dump                 list every chunk
  stats                print usage statistics
  verify               check every arena invariant

Example:
  heapctl run workload.heap
  heapctl run --size 65536 workload.heap
  heapctl run --save final.img workload.heap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	cmds, err := loadScript(args[0])
	if err != nil {
		return err
	}
	printVerbose("Loaded %d commands from %s\n", len(cmds), args[0])

	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}
	r, err := runScript(cmds, out)
	defer r.Close()
	if err != nil {
		return err
	}

	if runSave != "" {
		if err := mmfile.Save(runSave, r.Allocator().Arena().Bytes()); err != nil {
			return err
		}
		printVerbose("Saved %d byte arena image to %s\n", r.Allocator().Arena().Size(), runSave)
	}

	if verbose && !quiet {
		return r.Allocator().PrintStats(os.Stdout)
	}
	return nil
}
