package alloc

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/internal/backing"
)

// Options configures an allocator. A nil *Options means DefaultOptions().
type Options struct {
	// Source supplies the arena and registry bytes.
	// Default: backing.Default()
	Source backing.Source

	// Logger receives debug events for splits, claims, merges and failures.
	// Default: logger.L at the time of the call
	Logger *slog.Logger

	// AbortOnInvalidFree hands fatal errors to Fatal before returning them.
	AbortOnInvalidFree bool

	// Fatal is called for fatal errors when AbortOnInvalidFree is set.
	// Default: print to stderr and exit with status 1
	Fatal func(error)
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Source: backing.Default(),
		Fatal:  exitOnFatal,
	}
}

func exitOnFatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func resolveOptions(opts *Options) Options {
	o := *DefaultOptions()
	if opts == nil {
		return o
	}
	if opts.Source != nil {
		o.Source = opts.Source
	}
	if opts.Fatal != nil {
		o.Fatal = opts.Fatal
	}
	o.Logger = opts.Logger
	o.AbortOnInvalidFree = opts.AbortOnInvalidFree
	return o
}
