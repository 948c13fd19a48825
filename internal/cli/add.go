package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Description string
	Start       string
	End         string
	Date        string
	Priority    string
	Category    string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the schedule",
		Long: `Add a time-boxed task to the schedule.

The date defaults to today. An end time at or before the start time means
the task runs past midnight and ends on the following day.

Example:
  timetable add "Morning run" --start 06:30 --end 07:15
  timetable add "Night shift" --start 23:00 --end 01:00 --category work`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Description, "desc", "", "task description")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start time, HH:MM (required)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end time, HH:MM (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "schedule date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Priority, "priority", string(task.PriorityMedium), "priority (low|medium|high)")
	cmd.Flags().StringVar(&opts.Category, "category", string(task.CategoryPersonal), "category (work|personal|fitness|...)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runAdd(opts *AddOptions, title string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	draft, err := task.Validate(task.Draft{
		Title:         title,
		Description:   opts.Description,
		ScheduledTime: opts.Start,
		EndTime:       opts.End,
		ScheduledDate: opts.Date,
		Priority:      task.Priority(opts.Priority),
		Category:      task.Category(opts.Category),
	})
	if err != nil {
		if ve, ok := task.AsValidationError(err); ok {
			return f.ReportValidation(ve)
		}
		return WrapExitError(ExitCommandError, "invalid task", err)
	}
	if draft.ScheduledDate == "" {
		draft.ScheduledDate = task.DateOf(opts.Now())
	}

	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	created, err := s.Create(cmd.Context(), draft)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create task", err)
	}
	offlineNotice(f, offline)

	if opts.Format == "json" {
		return f.Success(created)
	}
	return f.Success(fmt.Sprintf("added %s: %s %s-%s on %s",
		created.ID, created.Title, created.ScheduledTime, created.EndTime, created.ScheduledDate))
}
