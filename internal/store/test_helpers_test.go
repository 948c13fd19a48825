package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/testutil"
)

var testInstant = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// createTestStore opens a SQLite store in a temp dir with deterministic
// ids and timestamps.
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("task")),
		WithNow(func() time.Time { return testInstant }),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestFileStore opens a file store in a temp dir with deterministic
// ids and timestamps.
func createTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	f, err := OpenFile(path,
		WithFileIDGenerator(testutil.NewSequentialIDs("local")),
		WithFileNow(func() time.Time { return testInstant }),
	)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	return f
}

// testDraft builds a minimal valid draft.
func testDraft(title, date string) task.Draft {
	return task.Draft{
		Title:         title,
		ScheduledTime: "09:00",
		EndTime:       "10:00",
		ScheduledDate: date,
		Priority:      task.PriorityMedium,
		Category:      task.CategoryPersonal,
	}
}
