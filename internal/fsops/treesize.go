package fsops

import (
	"io/fs"
	"path/filepath"
)

// TreeSize returns the total size in bytes of the file or directory tree
// rooted at path. Unreadable entries are skipped rather than failing the
// walk, so the figure is a best-effort lower bound.
func TreeSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
