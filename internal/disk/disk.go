package disk

import (
	"syscall"
)

// Usage describes the filesystem containing a path.
type Usage struct {
	FreeBytes   int64
	TotalBytes  int64
	UsedPercent float64
}

// GetUsage returns disk usage for the filesystem containing path
func GetUsage(path string) (Usage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return Usage{}, err
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)
	used := total - free

	u := Usage{FreeBytes: free, TotalBytes: total}
	if total > 0 {
		u.UsedPercent = (float64(used) / float64(total)) * 100.0
	}
	return u, nil
}

// GetFreePercent returns the percentage of free disk space
func GetFreePercent(path string) (float64, error) {
	u, err := GetUsage(path)
	if err != nil {
		return 0, err
	}
	return 100.0 - u.UsedPercent, nil
}
