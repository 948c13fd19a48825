package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// CopyDayResult reports the outcome of a copy-day operation. A source
// date with zero tasks is a reported failure, not an error: the caller
// shows Message either way.
type CopyDayResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CopyDay clones every task scheduled on sourceDate onto targetDate with
// lifecycle and reminder flags reset, as fresh records with new ids. It is
// a manual one-shot operation, not a recurrence mechanism.
func CopyDay(ctx context.Context, s Store, sourceDate, targetDate string) (CopyDayResult, error) {
	if sourceDate == targetDate {
		return CopyDayResult{Message: "source and target date are the same"}, nil
	}

	source, err := s.ListByDate(ctx, sourceDate)
	if err != nil {
		return CopyDayResult{}, fmt.Errorf("copy day: list %s: %w", sourceDate, err)
	}
	if len(source) == 0 {
		return CopyDayResult{Message: fmt.Sprintf("no tasks found for %s", sourceDate)}, nil
	}

	count := 0
	for _, t := range source {
		draft := task.Draft{
			Title:         t.Title,
			Description:   t.Description,
			ScheduledTime: t.ScheduledTime,
			EndTime:       t.EndTime,
			ScheduledDate: targetDate,
			Priority:      t.Priority,
			Category:      t.Category,
		}
		if _, err := s.Create(ctx, draft); err != nil {
			// Report what landed; the caller can re-run after fixing the
			// store, duplicates are visible in the list either way.
			slog.Error("copy day: clone failed", "source", t.ID, "error", err)
			return CopyDayResult{
				Success: false,
				Message: fmt.Sprintf("copied %d of %d tasks before a store error: %v", count, len(source), err),
				Count:   count,
			}, nil
		}
		count++
	}

	return CopyDayResult{
		Success: true,
		Message: fmt.Sprintf("copied %d tasks from %s to %s", count, sourceDate, targetDate),
		Count:   count,
	}, nil
}
