package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Digital-Shane/scrappy/internal/format"
	"github.com/Digital-Shane/scrappy/internal/mapper"
	"github.com/Digital-Shane/scrappy/internal/media"
	"github.com/Digital-Shane/scrappy/internal/mediaset"
)

// Rename is one planned move within a directory.
type Rename struct {
	Old string
	New string
}

// Batch is the ordered set of renames computed from a FileMap.
type Batch struct {
	Renames []Rename
	// Unchanged lists files already carrying their target name.
	Unchanged []string
	// Errors holds one error per file whose target could not be planned.
	Errors []error
}

// Len reports the number of renames.
func (b Batch) Len() int { return len(b.Renames) }

// PlanBatch computes the target of every matched file in FileMap order. Targets
// keep the file's directory and extension.
func PlanBatch(m *mapper.FileMap, f format.Formatter) Batch {
	var batch Batch
	targets := make(map[string]string)

	for _, entry := range m.Entries() {
		if entry.Episode == nil {
			continue
		}

		name, err := SanitizeFilename(f.Format(*entry.Episode))
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Errorf("%s: %w", entry.Path, err))
			continue
		}
		newPath := filepath.Join(filepath.Dir(entry.Path), name+media.Extension(entry.Path))

		if newPath == entry.Path {
			batch.Unchanged = append(batch.Unchanged, entry.Path)
			continue
		}
		if prior, taken := targets[newPath]; taken {
			batch.Errors = append(batch.Errors, fmt.Errorf("%s: target %s already planned for %s", entry.Path, newPath, prior))
			continue
		}
		targets[newPath] = entry.Path
		batch.Renames = append(batch.Renames, Rename{Old: entry.Path, New: newPath})
	}
	return batch
}

// Recorder receives every rename a Transaction performs, including rollbacks.
type Recorder interface {
	LogRename(sourcePath, destPath string, err error)
}

// Transaction applies a Batch through a MediaSet, all or nothing.
type Transaction struct {
	set     mediaset.MediaSet
	journal Recorder
}

// NewTransaction returns a Transaction over set. journal may be nil.
func NewTransaction(set mediaset.MediaSet, journal Recorder) *Transaction {
	return &Transaction{set: set, journal: journal}
}

// DryRun returns the renames Commit would apply without touching any file.
func (t *Transaction) DryRun(batch Batch) []Rename {
	return append([]Rename(nil), batch.Renames...)
}

// Commit applies the renames in order. On the first failure every applied rename
// is reverted, newest first, and a *RenameError is returned. The context is only
// checked before the first rename; a started batch always finishes or rolls back.
func (t *Transaction) Commit(ctx context.Context, batch Batch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	for i, r := range batch.Renames {
		err := t.set.Rename(r.Old, r.New)
		t.record(r.Old, r.New, err)
		if err != nil {
			return 0, &RenameError{
				Old:      r.Old,
				New:      r.New,
				Index:    i,
				Err:      err,
				Rollback: t.rollback(batch.Renames[:i]),
			}
		}
	}
	return len(batch.Renames), nil
}

func (t *Transaction) rollback(applied []Rename) []error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		r := applied[i]
		err := t.set.Rename(r.New, r.Old)
		t.record(r.New, r.Old, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", r.Old, err))
		}
	}
	return errs
}

func (t *Transaction) record(oldPath, newPath string, err error) {
	if t.journal != nil {
		t.journal.LogRename(oldPath, newPath, err)
	}
}
