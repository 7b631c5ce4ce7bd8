//go:build linux

package cache

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// dirCreatedAt returns the birth time of path when the filesystem records it,
// and the modification time otherwise.
func dirCreatedAt(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err == nil &&
		stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}
	return info.ModTime(), nil
}
