package core

import (
	"errors"
	"fmt"
	"strings"
)

// Session failure kinds, matched with errors.Is.
var (
	ErrIdentification = errors.New("no series name could be identified")
	ErrLookup         = errors.New("series lookup failed")
	ErrMapping        = errors.New("episode list unavailable")
	ErrRename         = errors.New("rename rolled back")
)

// LookupError reports a series for which no show could be resolved. Err is nil
// when the catalog answered but nothing was selectable.
type LookupError struct {
	Series string
	ID     int
	Err    error
}

func (e *LookupError) Error() string {
	target := fmt.Sprintf("%q", e.Series)
	if e.ID > 0 {
		target = fmt.Sprintf("id %d", e.ID)
	}
	if e.Err == nil {
		return fmt.Sprintf("lookup %s: no matching show", target)
	}
	return fmt.Sprintf("lookup %s: %v", target, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == ErrLookup }

// RenameError identifies the rename that failed inside a transaction and any
// errors hit while rolling the transaction back.
type RenameError struct {
	Old      string
	New      string
	Index    int
	Err      error
	Rollback []error
}

func (e *RenameError) Error() string {
	msg := fmt.Sprintf("rename %d %s -> %s: %v", e.Index+1, e.Old, e.New, e.Err)
	if len(e.Rollback) == 0 {
		return msg
	}
	parts := make([]string, len(e.Rollback))
	for i, err := range e.Rollback {
		parts[i] = err.Error()
	}
	return msg + " (rollback: " + strings.Join(parts, "; ") + ")"
}

func (e *RenameError) Unwrap() error { return e.Err }

func (e *RenameError) Is(target error) bool { return target == ErrRename }
