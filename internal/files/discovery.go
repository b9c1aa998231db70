package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TabularExtensions lists the source formats the loader can parse
var TabularExtensions = []string{".csv", ".xlsx"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// IsTabular reports whether name has a supported tabular extension
func IsTabular(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range TabularExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// IsLockFile reports whether name is a spreadsheet owner file (~$book.xlsx)
func IsLockFile(name string) bool {
	return strings.HasPrefix(name, "~$")
}

// FindYearlyFiles returns the tabular files in dir whose names match pattern.
// When none match, every tabular file in dir is returned instead.
// Results are ordered by file name.
func (d *Discovery) FindYearlyFiles(dir, pattern string) ([]FileInfo, error) {
	matched, err := d.FindFilesByPattern(dir, pattern)
	if err != nil {
		return nil, err
	}

	yearly := matched[:0]
	for _, f := range matched {
		if IsTabular(f.Name) && !IsLockFile(f.Name) {
			yearly = append(yearly, f)
		}
	}
	if len(yearly) > 0 {
		return yearly, nil
	}

	return d.FindTabularFiles(dir)
}

// FindTabularFiles finds every CSV and XLSX file in dir, ordered by name
func (d *Discovery) FindTabularFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || IsLockFile(entry.Name()) || !IsTabular(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

// FindFilesByPattern finds regular files matching a glob pattern, ordered by name.
// Lock files are never returned.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	if _, err := os.Stat(fullPath); err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() || IsLockFile(info.Name()) {
			continue
		}

		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

func sortByName(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
