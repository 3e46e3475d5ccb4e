package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// WorkbookExt is the only input format accepted
const WorkbookExt = ".xlsx"

// lockPrefix marks the owner files spreadsheet tools leave next to open workbooks
const lockPrefix = "~$"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
	exclude  []string
}

// NewDiscovery creates a new file discovery instance. Files whose names end
// in one of excludeSuffixes are never returned.
func NewDiscovery(basePath string, excludeSuffixes ...string) *Discovery {
	exclude := make([]string, len(excludeSuffixes))
	for i, s := range excludeSuffixes {
		exclude[i] = strings.ToLower(s)
	}
	return &Discovery{basePath: basePath, exclude: exclude}
}

// FindWorkbooks finds the .xlsx files directly inside dir, sorted by name.
// Lock files and excluded names are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !d.accepts(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (d *Discovery) accepts(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, WorkbookExt) || strings.HasPrefix(name, lockPrefix) {
		return false
	}
	for _, suffix := range d.exclude {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// resolve joins relative paths onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
