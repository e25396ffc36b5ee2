//go:build !unix

package mmfile

import (
	"fmt"
	"os"
)

// mapPrivate reads the entire file when a private mapping is not available.
func mapPrivate(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return data, func() error { return nil }, nil
}
