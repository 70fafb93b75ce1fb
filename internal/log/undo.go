package log

import (
	"fmt"
	"os"
	"time"
)

type UndoResult struct {
	Operation Operation
	Success   bool
	Error     error
}

func UndoOperation(op Operation) UndoResult {
	result := UndoResult{
		Operation: op,
		Success:   false,
	}

	switch op.Type {
	case OpRename:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo rename: destination path missing")
			return result
		}

		if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo rename: file %s not found", op.DestPath)
			return result
		}

		// Never overwrite whatever now sits at the original path.
		if _, err := os.Stat(op.SourcePath); err == nil {
			result.Error = fmt.Errorf("cannot undo rename: original path %s already exists", op.SourcePath)
			return result
		}

		if err := os.Rename(op.DestPath, op.SourcePath); err != nil {
			result.Error = fmt.Errorf("failed to rename %s back to %s: %w", op.DestPath, op.SourcePath, err)
			return result
		}

		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

// UndoSession reverses the successful operations of session, newest first.
// Relative paths resolve against the session's working directory, and a rename
// later reversed within the same session (a rollback) is left alone.
func UndoSession(session *Session) (successful int, failed int, errors []error) {
	cancelled := cancelledRenames(session.Operations)
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]

		if !op.Success || cancelled[i] {
			continue
		}
		op.SourcePath = absolutePath(session.Metadata.WorkingDir, op.SourcePath)
		op.DestPath = absolutePath(session.Metadata.WorkingDir, op.DestPath)

		result := UndoOperation(op)
		if result.Success {
			successful++
		} else {
			failed++
			if result.Error != nil {
				errors = append(errors, result.Error)
			}
		}
	}

	return successful, failed, errors
}

// cancelledRenames marks each successful rename that a later successful rename
// moved straight back, along with that reversing rename.
func cancelledRenames(ops []Operation) map[int]bool {
	cancelled := make(map[int]bool)
	pending := make(map[string]int) // current path -> index of the rename that produced it
	for i, op := range ops {
		if op.Type != OpRename || !op.Success {
			continue
		}
		if j, ok := pending[op.SourcePath]; ok {
			delete(pending, op.SourcePath)
			if ops[j].SourcePath == op.DestPath {
				cancelled[i], cancelled[j] = true, true
				continue
			}
		}
		pending[op.DestPath] = i
	}
	return cancelled
}

// Discard deletes the session file so it cannot be undone twice.
func (s *Session) Discard() error {
	if s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session %s: %w", s.Metadata.SessionID, err)
	}
	return nil
}

// RelativeTime describes t relative to now for session listings.
func RelativeTime(t, now time.Time) string {
	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
