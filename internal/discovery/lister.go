package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned when a scan root does not exist or is not a directory
var ErrRootNotFound = errors.New("scan root not found")

// ListDirectories returns the immediate subdirectories of root.Path whose
// names are not in root.Exclude. Symlinked directories are followed, which
// is how linked sites usually show up.
func ListDirectories(root ScanRoot) ([]Candidate, error) {
	info, err := os.Stat(root.Path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root.Path)
	}

	entries, err := os.ReadDir(root.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan root %s: %w", root.Path, err)
	}

	excluded := make(map[string]struct{}, len(root.Exclude))
	for _, name := range root.Exclude {
		excluded[name] = struct{}{}
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		if _, skip := excluded[name]; skip {
			continue
		}

		path := filepath.Join(root.Path, name)
		if !entry.IsDir() {
			if entry.Type()&os.ModeSymlink == 0 || !isDir(path) {
				continue
			}
		}

		candidates = append(candidates, Candidate{Path: path, Name: name})
	}

	return candidates, nil
}
