package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/engine"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/schedule"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Date    string
	Summary bool
}

// listRow is one rendered task with its derived state.
type listRow struct {
	Task      task.Task     `json:"task"`
	Status    engine.Status `json:"status"`
	Remaining string        `json:"remaining,omitempty"`
	CanStart  bool          `json:"canStart"`
	CanEnd    bool          `json:"canEnd"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the day's schedule with live status",
		Long: `Show the day's schedule with each task's current status.

Without --date this is the live today view: tasks scheduled today plus
any cross-day task from yesterday still running into today.

Example:
  timetable list
  timetable list --date 2025-03-09
  timetable list --summary`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "show a specific date instead of today")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print status counts instead of the table")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	now := opts.Now()
	var tasks []task.Task
	if opts.Date == "" {
		all, err := s.List(cmd.Context())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list tasks", err)
		}
		tasks = schedule.ForDay(all, now)
	} else {
		if _, err := timeParseDate(opts.Date); err != nil {
			return WrapExitError(ExitCommandError, "invalid --date", err)
		}
		tasks, err = s.ListByDate(cmd.Context(), opts.Date)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list tasks", err)
		}
	}
	offlineNotice(f, offline)

	rows := make([]listRow, 0, len(tasks))
	for _, t := range tasks {
		row := listRow{Task: t}
		ev, err := engine.Evaluate(t, now, engine.Options{Grace: cfg.Grace.Std()})
		if err != nil {
			// A stored task with unparsable times; show it rather than
			// hide it, with no derived state.
			rows = append(rows, row)
			continue
		}
		row.Status = ev.Status
		row.Remaining = ev.Remaining
		row.CanStart = ev.CanStart
		row.CanEnd = ev.CanEnd
		rows = append(rows, row)
	}

	if opts.Format == "json" {
		return f.Success(rows)
	}
	if opts.Summary {
		renderSummary(f.Writer, rows)
		return nil
	}
	renderTable(f.Writer, rows)
	return nil
}

func renderTable(w io.Writer, rows []listRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no tasks scheduled")
		return
	}

	fmt.Fprintf(w, "%-10s  %-28s  %-24s  %-8s  %-9s  %-14s  %s\n",
		"ID", "TIME", "TITLE", "PRIORITY", "CATEGORY", "STATUS", "REMAINING")
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s  %-28s  %-24s  %-8s  %-9s  %-14s  %s\n",
			r.Task.ID, timeSpan(r.Task), r.Task.Title,
			r.Task.Priority, r.Task.Category, r.Status, r.Remaining)
	}
}

func renderSummary(w io.Writer, rows []listRow) {
	counts := map[engine.Status]int{}
	for _, r := range rows {
		counts[r.Status]++
	}

	parts := make([]string, 0, 6)
	for _, s := range []engine.Status{
		engine.StatusInProgress,
		engine.StatusReadyToStart,
		engine.StatusReadyToEnd,
		engine.StatusWaiting,
		engine.StatusCompleted,
		engine.StatusFailed,
	} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		fmt.Fprintln(w, "0 tasks")
		return
	}
	fmt.Fprintf(w, "%d tasks: %s\n", len(rows), strings.Join(parts, ", "))
}

func timeParseDate(s string) (time.Time, error) {
	return time.Parse(task.DateLayout, s)
}

// timeSpan renders a task's window in 12-hour form, marking windows that
// end on the following day.
func timeSpan(t task.Task) string {
	start, errS := task.ParseClockTime(t.ScheduledTime)
	end, errE := task.ParseClockTime(t.EndTime)
	if errS != nil || errE != nil {
		return t.ScheduledTime + " - " + t.EndTime
	}
	span := start.Format12() + " - " + end.Format12()
	if task.CrossesMidnight(start, end) {
		span += " (next day)"
	}
	return span
}
