package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Inspect a saved arena image",
		Long: `The inspect command maps an arena image written by "run --save",
rebuilds the free registry from its chunks, then lists the chunks,
prints statistics and checks every invariant. The image file is never
modified.

Example:
  heapctl inspect final.img
  heapctl inspect final.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
	return cmd
}

// inspectReport is the JSON form of the inspect output.
type inspectReport struct {
	Image  string `json:"Image"`
	Valid  bool   `json:"Valid"`
	Error  string `json:"Error,omitempty"`
	Chunks []inspectChunk `json:"Chunks"`
	Stats  alloc.Stats    `json:"Stats"`
}

type inspectChunk struct {
	Offset int    `json:"offset"`
	Status string `json:"status"`
	Size   int    `json:"size"`
}

func openImage(path string) (*alloc.BestFit, error) {
	im, err := mmfile.Open(path)
	if err != nil {
		return nil, err
	}
	a, err := arena.Attach(im.Bytes(), im)
	if err != nil {
		return nil, errors.Join(err, im.Close())
	}
	fa, err := alloc.New(a, nil)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", path, err), a.Close())
	}
	return fa, nil
}

func runInspect(args []string) error {
	path := args[0]
	fa, err := openImage(path)
	if err != nil {
		return err
	}
	defer fa.Close()
	printVerbose("Mapped %d byte image from %s\n", fa.Arena().Size(), path)

	verr := fa.Verify()
	if jsonOut {
		report := inspectReport{Image: path, Valid: verr == nil}
		if verr != nil {
			report.Error = verr.Error()
		}
		report.Stats = fa.Stats()
		if err := fa.Arena().Walk(func(c format.Chunk) error {
			report.Chunks = append(report.Chunks, inspectChunk{c.Offset, string(c.Status.Char()), c.Size})
			return nil
		}); err != nil {
			return err
		}
		if err := printJSON(report); err != nil {
			return err
		}
		return verr
	}

	if !quiet {
		if err := printer.New(os.Stdout, printer.DefaultOptions()).Print(fa.Arena()); err != nil {
			return err
		}
		if err := fa.Stats().Print(os.Stdout); err != nil {
			return err
		}
	}
	if verr != nil {
		return verr
	}
	printInfo("verify: ok\n")
	return nil
}
