package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openkraft/portcore/internal/domain"
)

var skipDirs = map[string]bool{
	".git":         true,
	".vs":          true,
	".portcore":    true,
	"node_modules": true,
	"packages":     true,
	"bin":          true,
	"obj":          true,
}

var projectExts = map[string]bool{
	".csproj": true,
	".vbproj": true,
}

// FileScanner discovers solution and project files by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan walks root and returns solution and project files relative to it,
// using forward slashes and sorted.
func (s *FileScanner) Scan(root string, excludePaths ...string) (*domain.SolutionScan, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	result := &domain.SolutionScan{RootPath: absPath}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)
		ext := strings.ToLower(filepath.Ext(d.Name()))
		switch {
		case ext == ".sln":
			result.Solutions = append(result.Solutions, relPath)
		case projectExts[ext]:
			result.Projects = append(result.Projects, relPath)
		}
		return nil
	})

	sort.Strings(result.Solutions)
	sort.Strings(result.Projects)
	return result, err
}
