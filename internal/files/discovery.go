package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "tgcompile/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path string
	Name string
	Size int64
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance.
// Relative directories are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInputFiles finds regular files in dir whose name ends with suffix.
// Matching is case-sensitive and does not descend into subdirectories.
// Results are ordered by name so discovery order is stable across runs.
func (d *Discovery) FindInputFiles(dir, suffix string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}

		// Stat follows symlinks so a linked export is kept when its
		// target is a regular file
		path := filepath.Join(fullPath, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, FileInfo{
			Path: path,
			Name: name,
			Size: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// resolve returns dir as-is when absolute, otherwise joined to basePath
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// Names returns the base names of files in order
func Names(files []FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// TotalSize returns the combined size of files in bytes
func TotalSize(files []FileInfo) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
