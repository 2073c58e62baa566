package klarf

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExtensions are the file suffixes FindFiles matches when none are
// given.
var DefaultExtensions = []string{".klarf", ".001"}

// FileEntry describes one inspection file found on disk.
type FileEntry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// FindFiles recursively lists inspection files under root whose extension
// matches one of exts (case-insensitive). Subdirectories that cannot be read
// are skipped. Results are sorted by path.
func FindFiles(root string, exts []string) ([]FileEntry, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path != root && errors.Is(walkErr, fs.ErrPermission) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return walkErr
		}
		if d.IsDir() || !hasExtension(path, exts) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileEntry{
			Name:    d.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
