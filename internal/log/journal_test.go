package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func fixedJournal(dir string, at time.Time) *Journal {
	j := NewJournal(dir, true)
	j.now = func() time.Time { return at }
	return j
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	j := fixedJournal(dir, at)

	if err := j.Start("rename", []string{"--auto", "/tv"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.LogRename("/tv/a.mkv", "/tv/A.mkv", nil)
	j.LogRename("/tv/b.mkv", "/tv/B.mkv", os.ErrPermission)

	open := j.Session()
	if open == nil || len(open.Operations) != 2 {
		t.Fatalf("Session() = %+v, want two operations", open)
	}
	id := open.Metadata.SessionID

	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	sessions, err := ReadSessions(dir, 0)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("ReadSessions() returned %d sessions, want 1", len(sessions))
	}
	s := sessions[0]

	wantMeta := SessionMetadata{
		CommandArgs:   []string{"rename", "--auto", "/tv"},
		WorkingDir:    s.Metadata.WorkingDir,
		Timestamp:     at,
		SessionID:     id,
		TotalOps:      2,
		SuccessfulOps: 1,
		FailedOps:     1,
	}
	if diff := cmp.Diff(wantMeta, s.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	wantOps := []Operation{
		{ID: id + "_0", Timestamp: at, Type: OpRename, SourcePath: "/tv/a.mkv", DestPath: "/tv/A.mkv", Success: true},
		{ID: id + "_1", Timestamp: at, Type: OpRename, SourcePath: "/tv/b.mkv", DestPath: "/tv/B.mkv", Error: os.ErrPermission.Error()},
	}
	if diff := cmp.Diff(wantOps, s.Operations); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
	if filepath.Dir(s.Path) != dir {
		t.Errorf("Path = %q, want file in %q", s.Path, dir)
	}
}

func TestJournalSkipsEmptySessions(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, true)
	if err := j.Start("rename", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("empty session wrote %d files", len(entries))
	}
}

func TestJournalDisabledAndNil(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, false)
	if err := j.Start("rename", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.LogRename("a", "b", nil)
	if j.Session() != nil {
		t.Error("disabled journal opened a session")
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("disabled journal wrote %d files", len(entries))
	}

	var none *Journal
	none.LogRename("a", "b", nil)
	if err := none.Start("x", nil); err != nil {
		t.Errorf("nil Start() error = %v", err)
	}
	if err := none.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func writeTestSession(t *testing.T, dir string, at time.Time) string {
	t.Helper()
	j := fixedJournal(dir, at)
	if err := j.Start("rename", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.LogRename("src", "dst", nil)
	id := j.Session().Metadata.SessionID
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return id
}

func TestFindSession(t *testing.T) {
	dir := t.TempDir()
	older := writeTestSession(t, dir, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := writeTestSession(t, dir, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	latest, err := FindSession(dir, "")
	if err != nil {
		t.Fatalf("FindSession(latest) error = %v", err)
	}
	if latest.Metadata.SessionID != newer {
		t.Errorf("FindSession(latest) = %s, want %s", latest.Metadata.SessionID, newer)
	}

	byPrefix, err := FindSession(dir, older[:8])
	if err != nil {
		t.Fatalf("FindSession(prefix) error = %v", err)
	}
	if byPrefix.Metadata.SessionID != older {
		t.Errorf("FindSession(prefix) = %s, want %s", byPrefix.Metadata.SessionID, older)
	}

	if _, err := FindSession(dir, "does-not-exist"); err == nil {
		t.Error("FindSession(unknown) expected error")
	}
	if _, err := FindSession(filepath.Join(dir, "missing"), ""); err == nil {
		t.Error("FindSession() in missing dir expected error")
	}

	limited, err := ReadSessions(dir, 1)
	if err != nil || len(limited) != 1 || limited[0].Metadata.SessionID != newer {
		t.Errorf("ReadSessions(limit 1) = %v, %v", limited, err)
	}
}

func TestReadSessionsSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeTestSession(t, dir, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := os.WriteFile(filepath.Join(dir, "9999-corrupt.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, err := ReadSessions(dir, 0)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("ReadSessions() returned %d sessions, want 1", len(sessions))
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.json")
	newFile := filepath.Join(dir, "new.json")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	if err := Cleanup(dir, 30); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old session file was not removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("recent session file was removed")
	}

	if err := Cleanup(filepath.Join(dir, "missing"), 30); err != nil {
		t.Errorf("Cleanup() missing dir error = %v", err)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{48 * time.Hour, "2 days ago"},
		{30 * 24 * time.Hour, "May 16, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := RelativeTime(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", &buf)
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
	logger.WithField("file", "a.mkv").Debug("guessed")
	if out := buf.String(); !strings.Contains(out, "file=a.mkv") || !strings.Contains(out, "guessed") {
		t.Errorf("output %q missing fields", out)
	}

	if got := NewLogger("nonsense", &buf).GetLevel(); got != logrus.InfoLevel {
		t.Errorf("fallback level = %v, want info", got)
	}
}
