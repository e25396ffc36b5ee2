//go:build !unix && !windows

package backing

// Default returns the Go heap source where anonymous mappings are unavailable.
func Default() Source { return Heap{} }
