// Package mediaset tracks the files of one scrape session and remembers the name
// each file had before it was renamed, so any subset can be reverted.
package mediaset

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotTracked is returned when an operation names a file outside the set.
	ErrNotTracked = errors.New("file not tracked")
	// ErrExists is returned when a rename would overwrite another file.
	ErrExists = errors.New("destination already exists")
)

// MediaSet is an ordered, deduplicated collection of tracked files.
type MediaSet interface {
	// Files returns the current paths, sorted.
	Files() []string
	Len() int
	Add(paths ...string) error
	Remove(paths ...string)
	Clear()
	// Rename moves a tracked file and records its original name.
	Rename(oldPath, newPath string) error
	// Original returns the name a file had before it was first renamed.
	Original(path string) (string, bool)
	// Revert restores the original names of paths, or of every renamed file when
	// called without arguments.
	Revert(paths ...string) error
}

// mover performs the backend specific part of a rename.
type mover func(oldPath, newPath string) error

// tracker holds the state shared by every backend.
type tracker struct {
	files     []string
	originals map[string]string
	move      mover
}

func newTracker(move mover) tracker {
	return tracker{originals: make(map[string]string), move: move}
}

func (t *tracker) Files() []string {
	return slices.Clone(t.files)
}

func (t *tracker) Len() int {
	return len(t.files)
}

func (t *tracker) contains(path string) bool {
	_, found := slices.BinarySearch(t.files, path)
	return found
}

func (t *tracker) insert(path string) {
	i, found := slices.BinarySearch(t.files, path)
	if found {
		return
	}
	t.files = slices.Insert(t.files, i, path)
}

func (t *tracker) drop(path string) {
	if i, found := slices.BinarySearch(t.files, path); found {
		t.files = slices.Delete(t.files, i, i+1)
	}
}

func (t *tracker) Remove(paths ...string) {
	for _, p := range paths {
		t.drop(p)
		delete(t.originals, p)
	}
}

func (t *tracker) Clear() {
	t.files = nil
	t.originals = make(map[string]string)
}

func (t *tracker) Rename(oldPath, newPath string) error {
	if !t.contains(oldPath) {
		return fmt.Errorf("rename %s: %w", oldPath, ErrNotTracked)
	}
	if oldPath == newPath {
		return nil
	}
	if t.contains(newPath) {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, ErrExists)
	}
	if err := t.move(oldPath, newPath); err != nil {
		return err
	}

	original, renamed := t.originals[oldPath]
	if !renamed {
		original = oldPath
	}
	delete(t.originals, oldPath)
	if original != newPath {
		t.originals[newPath] = original
	}

	t.drop(oldPath)
	t.insert(newPath)
	return nil
}

func (t *tracker) Original(path string) (string, bool) {
	original, ok := t.originals[path]
	return original, ok
}

func (t *tracker) Revert(paths ...string) error {
	if len(paths) == 0 {
		for p := range t.originals {
			paths = append(paths, p)
		}
		slices.Sort(paths)
	}

	var errs []error
	for _, p := range paths {
		original, ok := t.originals[p]
		if !ok {
			if !t.contains(p) {
				errs = append(errs, fmt.Errorf("revert %s: %w", p, ErrNotTracked))
			}
			continue
		}
		if err := t.Rename(p, original); err != nil {
			errs = append(errs, fmt.Errorf("revert %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
