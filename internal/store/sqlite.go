package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added notified_start/notified_end reminder dedup columns
const currentSchemaVersion = 1

// SQLite is the primary task store.
type SQLite struct {
	db  *sql.DB
	ids IDGenerator
	now nowFunc
}

var _ Store = (*SQLite)(nil)

// SQLiteOption configures the SQLite store.
type SQLiteOption func(*SQLite)

// WithIDGenerator overrides UUID generation (tests).
func WithIDGenerator(g IDGenerator) SQLiteOption {
	return func(s *SQLite) { s.ids = g }
}

// WithNow overrides the timestamp source (tests).
func WithNow(now func() time.Time) SQLiteOption {
	return func(s *SQLite) { s.now = now }
}

// Open creates or opens a SQLite database at the given path, applying
// pragmas and migrations. Idempotent: safe to call on an existing file.
//
// Configuration:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - single open connection: SQLite allows one writer at a time, and
//     limiting the pool avoids SQLITE_BUSY under the daemon + CLI mix
func Open(path string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &SQLite{db: db, ids: UUIDGenerator{}, now: systemNow}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the reminder dedup columns to databases created before
// they existed. New databases get them from schema.sql; ALTER TABLE on a
// column that already exists fails, so probe first.
func migrateToV1(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('tasks') WHERE name = 'notified_start'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("migrate to v1: probe columns: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, stmt := range []string{
		`ALTER TABLE tasks ADD COLUMN notified_start INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE tasks ADD COLUMN notified_end INTEGER NOT NULL DEFAULT 0`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

const taskColumns = `id, title, description, scheduled_time, end_time, scheduled_date,
	priority, category, started, completed, failed, notified_start, notified_end,
	created_at, updated_at`

// List returns every task, ordered by date, time, id.
func (s *SQLite) List(ctx context.Context) ([]task.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		ORDER BY scheduled_date ASC, scheduled_time ASC, id ASC
	`)
}

// ListByDate returns the tasks scheduled on one date, ordered by time, id.
func (s *SQLite) ListByDate(ctx context.Context, date string) ([]task.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE scheduled_date = ?
		ORDER BY scheduled_time ASC, id ASC
	`, date)
}

func (s *SQLite) queryTasks(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one task by id.
func (s *SQLite) Get(ctx context.Context, id string) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Create persists a validated draft, assigning id and timestamps.
func (s *SQLite) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	now := s.now()
	t := task.Task{
		ID:            s.ids.NewID(),
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
	if err := s.insert(ctx, s.db, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// execer covers *sql.DB and *sql.Tx for the insert helper.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) insert(ctx context.Context, db execer, t task.Task) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Title, t.Description, t.ScheduledTime, t.EndTime, t.ScheduledDate,
		string(t.Priority), string(t.Category),
		t.Started, t.Completed, t.Failed, t.NotifiedStart, t.NotifiedEnd,
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

// Update merges a patch into the stored task and bumps updated_at. The
// read and write run in one transaction; concurrent edits to the same
// task from a single-user client are last-write-wins.
func (s *SQLite) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: begin tx: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, err
	}

	t = p.Apply(t)
	if t.Completed && t.Failed {
		return task.Task{}, fmt.Errorf("task %s: %w", id, ErrTerminalConflict)
	}
	t.UpdatedAt = s.now()

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, scheduled_time = ?, end_time = ?,
			scheduled_date = ?, priority = ?, category = ?,
			started = ?, completed = ?, failed = ?,
			notified_start = ?, notified_end = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title, t.Description, t.ScheduledTime, t.EndTime,
		t.ScheduledDate, string(t.Priority), string(t.Category),
		t.Started, t.Completed, t.Failed,
		t.NotifiedStart, t.NotifiedEnd, t.UpdatedAt.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, fmt.Errorf("update task %s: commit: %w", id, err)
	}
	return t, nil
}

// Delete removes a task by id.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMeta returns a meta value, "" when the key is unset.
func (s *SQLite) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta upserts a meta key.
func (s *SQLite) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var t task.Task
	var priority, category, createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.ScheduledTime, &t.EndTime, &t.ScheduledDate,
		&priority, &category,
		&t.Started, &t.Completed, &t.Failed, &t.NotifiedStart, &t.NotifiedEnd,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return task.Task{}, err
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("scan task: %w", err)
	}

	t.Priority = task.Priority(priority)
	t.Category = task.Category(category)
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return task.Task{}, fmt.Errorf("scan task %s: created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return task.Task{}, fmt.Errorf("scan task %s: updated_at: %w", t.ID, err)
	}
	return t, nil
}
