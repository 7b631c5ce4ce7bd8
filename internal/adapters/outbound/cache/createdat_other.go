//go:build !linux && !windows

package cache

import (
	"os"
	"time"
)

// dirCreatedAt falls back to the modification time where no portable birth
// time is available.
func dirCreatedAt(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
