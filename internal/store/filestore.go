package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// FileStore is the JSON-file fallback store: the offline analog of the
// SQLite primary. The whole task set lives in one file, rewritten on every
// mutation; fine for one user's day of tasks.
//
// Thread-safety: an internal mutex serializes all operations.
type FileStore struct {
	mu   sync.Mutex
	path string
	ids  IDGenerator
	now  nowFunc
}

var _ Store = (*FileStore)(nil)

// fileState is the on-disk shape.
type fileState struct {
	Tasks []task.Task       `json:"tasks"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileIDGenerator overrides UUID generation (tests).
func WithFileIDGenerator(g IDGenerator) FileStoreOption {
	return func(f *FileStore) { f.ids = g }
}

// WithFileNow overrides the timestamp source (tests).
func WithFileNow(now func() time.Time) FileStoreOption {
	return func(f *FileStore) { f.now = now }
}

// OpenFile creates a file store at path. The file is created lazily on
// first write; a missing file reads as an empty task set.
func OpenFile(path string, opts ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	f := &FileStore{path: path, ids: UUIDGenerator{}, now: systemNow}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) load() (fileState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{Meta: map[string]string{}}, nil
	}
	if err != nil {
		return fileState{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return fileState{}, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if st.Meta == nil {
		st.Meta = map[string]string{}
	}
	return st, nil
}

func (f *FileStore) save(st fileState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	// Write-then-rename so a crash mid-write never truncates the file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func orderTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.ScheduledDate != b.ScheduledDate {
			return a.ScheduledDate < b.ScheduledDate
		}
		if a.ScheduledTime != b.ScheduledTime {
			return a.ScheduledTime < b.ScheduledTime
		}
		return a.ID < b.ID
	})
}

// List returns every task in deterministic order.
func (f *FileStore) List(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return nil, err
	}
	orderTasks(st.Tasks)
	return st.Tasks, nil
}

// ListByDate returns the tasks scheduled on one date.
func (f *FileStore) ListByDate(ctx context.Context, date string) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return nil, err
	}
	out := []task.Task{}
	for _, t := range st.Tasks {
		if t.ScheduledDate == date {
			out = append(out, t)
		}
	}
	orderTasks(out)
	return out, nil
}

// Get returns one task by id.
func (f *FileStore) Get(ctx context.Context, id string) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return task.Task{}, err
	}
	for _, t := range st.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, ErrNotFound
}

// Create persists a validated draft, assigning id and timestamps.
func (f *FileStore) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return task.Task{}, err
	}

	now := f.now()
	t := task.Task{
		ID:            f.ids.NewID(),
		Title:         d.Title,
		Description:   d.Description,
		ScheduledTime: d.ScheduledTime,
		EndTime:       d.EndTime,
		ScheduledDate: d.ScheduledDate,
		Priority:      d.Priority,
		Category:      d.Category,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	st.Tasks = append(st.Tasks, t)
	if err := f.save(st); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Update merges a patch into the stored task and bumps updatedAt.
func (f *FileStore) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return task.Task{}, err
	}
	for i, t := range st.Tasks {
		if t.ID != id {
			continue
		}
		t = p.Apply(t)
		if t.Completed && t.Failed {
			return task.Task{}, fmt.Errorf("task %s: %w", id, ErrTerminalConflict)
		}
		t.UpdatedAt = f.now()
		st.Tasks[i] = t
		if err := f.save(st); err != nil {
			return task.Task{}, err
		}
		return t, nil
	}
	return task.Task{}, ErrNotFound
}

// Delete removes a task by id.
func (f *FileStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return err
	}
	for i, t := range st.Tasks {
		if t.ID == id {
			st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
			return f.save(st)
		}
	}
	return ErrNotFound
}

// GetMeta returns a meta value, "" when unset.
func (f *FileStore) GetMeta(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return "", err
	}
	return st.Meta[key], nil
}

// SetMeta upserts a meta key.
func (f *FileStore) SetMeta(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return err
	}
	st.Meta[key] = value
	return f.save(st)
}
