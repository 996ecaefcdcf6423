package ledger

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sample is a small example ledger written by `cashcast setup --sample`.
//
//go:embed testdata/sample.toml
var Sample string

// WriteSample writes Sample to path unless a file already exists there.
// It reports whether the file was written.
func WriteSample(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("creating ledger dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Sample), 0o600); err != nil {
		return false, fmt.Errorf("writing sample ledger: %w", err)
	}
	return true, nil
}
