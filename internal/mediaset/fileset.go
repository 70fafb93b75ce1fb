package mediaset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/media"
)

// Options controls how FileSet expands its inputs.
type Options struct {
	// Recursive walks directories instead of listing one level.
	Recursive bool
}

// FileSet is a MediaSet backed by the filesystem. Only readable regular video files
// are tracked; anything else named in Add is skipped.
type FileSet struct {
	tracker
	opts Options
}

var _ MediaSet = (*FileSet)(nil)

// NewFileSet builds a FileSet from files, directories and glob patterns.
func NewFileSet(opts Options, paths ...string) (*FileSet, error) {
	s := &FileSet{opts: opts}
	s.tracker = newTracker(renameFile)
	if err := s.Add(paths...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add expands each path and tracks every qualifying file. A path that exists is
// taken literally even if it contains glob metacharacters.
func (s *FileSet) Add(paths ...string) error {
	for _, p := range paths {
		matches := []string{p}
		if _, statErr := os.Lstat(p); statErr != nil && strings.ContainsAny(p, "*?[") {
			var err error
			if matches, err = filepath.Glob(p); err != nil {
				return fmt.Errorf("glob %q: %w", p, err)
			}
		}
		for _, m := range matches {
			if err := s.addPath(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FileSet) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		s.addFile(path, info)
		return nil
	}

	if !s.opts.Recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			full := filepath.Join(path, entry.Name())
			if info, err := os.Stat(full); err == nil {
				s.addFile(full, info)
			}
		}
		return nil
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if info, err := os.Stat(p); err == nil {
			s.addFile(p, info)
		}
		return nil
	})
}

func (s *FileSet) addFile(path string, info fs.FileInfo) {
	if !info.Mode().IsRegular() || !media.IsVideo(path) || !readable(path) {
		return
	}
	s.insert(filepath.Clean(path))
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// renameFile refuses to replace an existing file unless both paths name the same
// file, which happens for case-only renames on case-insensitive filesystems.
func renameFile(oldPath, newPath string) error {
	if dst, err := os.Lstat(newPath); err == nil {
		src, err := os.Lstat(oldPath)
		if err != nil || !os.SameFile(src, dst) {
			return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, ErrExists)
		}
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}
