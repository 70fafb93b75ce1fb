// Package log provides the application logger and the operation journal that
// lets a later process undo a rename session.
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpRename OperationType = "rename"
)

type Operation struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type Session struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []Operation     `json:"operations"`

	// Path is the file the session was read from.
	Path string `json:"-"`
}

// Journal records the operations of one session and writes them on Close.
// A nil or disabled Journal accepts calls and records nothing.
type Journal struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	session *Session
	now     func() time.Time
}

// NewJournal returns a journal that writes sessions into dir.
func NewJournal(dir string, enabled bool) *Journal {
	return &Journal{dir: dir, enabled: enabled, now: time.Now}
}

// Start begins a new session, discarding any unwritten one.
func (j *Journal) Start(command string, args []string) error {
	if j == nil || !j.enabled {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	j.session = &Session{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Timestamp:   j.now(),
			SessionID:   uuid.NewString(),
		},
		Operations: []Operation{},
	}
	return nil
}

// LogRename records a rename. A non-nil err marks it failed.
func (j *Journal) LogRename(sourcePath, destPath string, err error) {
	j.logOperation(OpRename, sourcePath, destPath, err)
}

func (j *Journal) logOperation(opType OperationType, sourcePath, destPath string, err error) {
	if j == nil || !j.enabled {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.session == nil {
		return
	}

	op := Operation{
		ID:         fmt.Sprintf("%s_%d", j.session.Metadata.SessionID, len(j.session.Operations)),
		Timestamp:  j.now(),
		Type:       opType,
		SourcePath: absolutePath(j.session.Metadata.WorkingDir, sourcePath),
		DestPath:   absolutePath(j.session.Metadata.WorkingDir, destPath),
		Success:    err == nil,
	}
	if err != nil {
		op.Error = err.Error()
	}
	j.session.Operations = append(j.session.Operations, op)
}

// absolutePath anchors a relative path at dir so the session can be undone
// from any directory.
func absolutePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// Session returns a copy of the open session, or nil.
func (j *Journal) Session() *Session {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == nil {
		return nil
	}
	s := *j.session
	s.Operations = append([]Operation(nil), j.session.Operations...)
	return &s
}

// Close writes the open session. Sessions without operations are not written.
// Close is safe to call more than once.
func (j *Journal) Close() error {
	if j == nil || !j.enabled {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	session := j.session
	j.session = nil
	if session == nil || len(session.Operations) == 0 {
		return nil
	}
	session.updateStats()
	return writeSession(j.dir, session, j.now())
}

func (s *Session) updateStats() {
	successful := 0
	for _, op := range s.Operations {
		if op.Success {
			successful++
		}
	}
	s.Metadata.TotalOps = len(s.Operations)
	s.Metadata.SuccessfulOps = successful
	s.Metadata.FailedOps = len(s.Operations) - successful
}

func writeSession(dir string, session *Session, now time.Time) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%03d.json",
		now.Format("2006-01-02_150405"),
		now.Nanosecond()/1000000)
	logPath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	session.Path = logPath
	return nil
}

func ReadSession(logPath string) (*Session, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session.Path = logPath
	return &session, nil
}

// ReadSessions returns up to limit sessions from dir, newest first. A limit of
// zero or less means all. Unreadable files are skipped.
func ReadSessions(dir string, limit int) ([]*Session, error) {
	files, err := sessionFiles(dir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*Session, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// FindSession returns the session whose ID starts with id, or the newest
// session when id is empty.
func FindSession(dir, id string) (*Session, error) {
	sessions, err := ReadSessions(dir, 0)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if id == "" || strings.HasPrefix(s.Metadata.SessionID, id) {
			return s, nil
		}
	}
	if id == "" {
		return nil, fmt.Errorf("no sessions found")
	}
	return nil, fmt.Errorf("session %q not found", id)
}

// Cleanup removes session files older than retentionDays.
func Cleanup(dir string, retentionDays int) error {
	files, err := sessionFiles(dir)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var failed []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				failed = append(failed, file)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove old log files: %s", strings.Join(failed, ", "))
	}
	return nil
}

// sessionFiles lists session files in dir sorted newest first.
func sessionFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}
