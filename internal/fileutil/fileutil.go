// Package fileutil provides atomic file writes and filesystem-safe names for
// genome downloads.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteAtomic streams r into dst through a temporary file in the same
// directory, renaming it into place only after a complete write. A failed
// write leaves no partial dst behind.
func WriteAtomic(dst string, r io.Reader, mode os.FileMode) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return written, fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, fmt.Errorf("rename into %s: %w", dst, err)
	}
	committed = true
	return written, nil
}

var nameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	" ", "_",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SafeName turns an assembly or local genome name into a single path element.
// It returns an empty string when nothing usable remains.
func SafeName(name string) string {
	name = strings.TrimSpace(nameReplacer.Replace(strings.TrimSpace(name)))
	name = strings.Trim(name, "._")
	return name
}
