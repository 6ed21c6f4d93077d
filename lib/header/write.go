// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package header

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile atomically replaces path with data. When the file already
// holds exactly data it is left untouched so that build systems keyed
// on modification time do not rebuild. Reports whether the file was
// written.
func WriteFile(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return false, fmt.Errorf("creating header directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(directory, ".viable-header-*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating temp header file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return false, fmt.Errorf("writing header data: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return false, fmt.Errorf("setting header permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return false, fmt.Errorf("closing temp header file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("renaming header file to %s: %w", path, err)
	}

	success = true
	return true, nil
}
