package ioextract

import (
	"os"
	"path/filepath"
)

// moveToComplete moves everything in dir (except the complete/ subdir
// itself) into dir/complete, so each run's downloads start from an
// empty directory while earlier files stay retrievable.
func moveToComplete(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return MoveError(dir, err)
	}

	completeDir := filepath.Join(dir, "complete")
	if err := os.MkdirAll(completeDir, 0755); err != nil {
		return MoveError(completeDir, err)
	}

	for _, entry := range entries {
		if entry.Name() == "complete" {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		dst := filepath.Join(completeDir, entry.Name())
		// A same-named leftover from an earlier run is replaced.
		if err := os.RemoveAll(dst); err != nil {
			return MoveError(dst, err)
		}
		if err := os.Rename(src, dst); err != nil {
			return MoveError(src, err)
		}
	}
	return nil
}
