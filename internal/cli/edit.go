package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/store"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Title       string
	Description string
	Start       string
	End         string
	Date        string
	Priority    string
	Category    string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task's fields",
		Long: `Edit a task's fields. Only the flags given change; everything else
keeps its stored value. The result is re-validated as a whole, so an edit
can never leave a task the add command would have rejected.

Example:
  timetable edit task-3 --end 11:30
  timetable edit task-3 --title "Long run" --priority high`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "new title")
	cmd.Flags().StringVar(&opts.Description, "desc", "", "new description")
	cmd.Flags().StringVar(&opts.Start, "start", "", "new start time, HH:MM")
	cmd.Flags().StringVar(&opts.End, "end", "", "new end time, HH:MM")
	cmd.Flags().StringVar(&opts.Date, "date", "", "new schedule date, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "new priority (low|medium|high)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "new category")

	return cmd
}

func runEdit(opts *EditOptions, id string, cmd *cobra.Command) error {
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

	current, err := s.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("no task with id %s", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load task", err)
	}

	// Overlay the given flags onto the stored fields and re-validate the
	// whole draft.
	draft := task.Draft{
		Title:         current.Title,
		Description:   current.Description,
		ScheduledTime: current.ScheduledTime,
		EndTime:       current.EndTime,
		ScheduledDate: current.ScheduledDate,
		Priority:      current.Priority,
		Category:      current.Category,
	}
	flags := cmd.Flags()
	if flags.Changed("title") {
		draft.Title = opts.Title
	}
	if flags.Changed("desc") {
		draft.Description = opts.Description
	}
	if flags.Changed("start") {
		draft.ScheduledTime = opts.Start
	}
	if flags.Changed("end") {
		draft.EndTime = opts.End
	}
	if flags.Changed("date") {
		draft.ScheduledDate = opts.Date
	}
	if flags.Changed("priority") {
		draft.Priority = task.Priority(opts.Priority)
	}
	if flags.Changed("category") {
		draft.Category = task.Category(opts.Category)
	}

	draft, err = task.Validate(draft)
	if err != nil {
		if ve, ok := task.AsValidationError(err); ok {
			return f.ReportValidation(ve)
		}
		return WrapExitError(ExitCommandError, "invalid task", err)
	}

	patch := task.Patch{
		Title:         &draft.Title,
		Description:   &draft.Description,
		ScheduledTime: &draft.ScheduledTime,
		EndTime:       &draft.EndTime,
		ScheduledDate: &draft.ScheduledDate,
		Priority:      &draft.Priority,
		Category:      &draft.Category,
	}
	updated, err := s.Update(cmd.Context(), id, patch)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to update task", err)
	}
	offlineNotice(f, offline)

	if opts.Format == "json" {
		return f.Success(updated)
	}
	return f.Success(fmt.Sprintf("updated %s: %s %s-%s on %s",
		updated.ID, updated.Title, updated.ScheduledTime, updated.EndTime, updated.ScheduledDate))
}
