package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/portcore/internal/fsutil"
	"github.com/openkraft/portcore/internal/logging"
)

// Installer copies user override rules into the default rules directory.
type Installer struct{}

func NewInstaller() *Installer { return &Installer{} }

// InstallOverrides copies every *.json file of src into dst, replacing
// existing files atomically so concurrent readers never see a partial rule.
// It is a no-op when both name the same directory.
func (i *Installer) InstallOverrides(ctx context.Context, src, dst string) error {
	same, err := sameDir(src, dst)
	if err != nil {
		return err
	}
	if same {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(src, "*.json"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	for _, m := range matches {
		if err := fsutil.CopyFileAtomic(m, filepath.Join(dst, filepath.Base(m))); err != nil {
			return fmt.Errorf("copying override %s: %w", filepath.Base(m), err)
		}
	}
	logging.FromContext(ctx).WithField("src", src).WithField("count", len(matches)).Debug("override rules installed")
	return nil
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
