package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// Store is durable CRUD over task records plus a small meta key/value
// space (day-rollover marker). All implementations assign IDs and
// timestamps on Create and bump UpdatedAt on every mutation.
type Store interface {
	// List returns every stored task in deterministic order.
	List(ctx context.Context) ([]task.Task, error)

	// ListByDate returns the tasks scheduled on a "YYYY-MM-DD" date.
	ListByDate(ctx context.Context, date string) ([]task.Task, error)

	// Get returns one task by id, or ErrNotFound.
	Get(ctx context.Context, id string) (task.Task, error)

	// Create persists a validated draft, assigning id, createdAt and
	// updatedAt. The draft's ScheduledDate must already be resolved.
	Create(ctx context.Context, d task.Draft) (task.Task, error)

	// Update merges a partial patch into the task and bumps updatedAt.
	// Patches that would set both completed and failed are rejected.
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)

	// Delete removes a task by id. Deleting a missing task is ErrNotFound.
	Delete(ctx context.Context, id string) error

	// GetMeta returns the value for a meta key, "" when unset.
	GetMeta(ctx context.Context, key string) (string, error)

	// SetMeta upserts a meta key.
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}

// IDGenerator mints task IDs. Production uses UUIDs; tests use
// testutil.SequentialIDs for stable assertions.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates UUIDv7 IDs: time-ordered, so id tiebreaks in
// deterministic ordering roughly follow creation order.
type UUIDGenerator struct{}

// NewID returns a new UUIDv7 string.
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// nowFunc is the timestamp source, overridable in tests.
type nowFunc func() time.Time

func systemNow() time.Time { return time.Now() }
