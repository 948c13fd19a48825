package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/engine"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/store"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a task whose window is open",
		Long: `Mark a task as started.

Starting is only permitted while the engine reports the task as
ready-to-start; a task whose window has not opened yet, or that already
ran out, cannot be started.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycleAction(rootOpts, cmd, args[0], actionStart)
		},
	}
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Complete a started task",
		Long: `Mark a started task as completed.

Completion is only permitted while the engine reports the task as
in-progress or ready-to-end.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycleAction(rootOpts, cmd, args[0], actionDone)
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Long: `Delete a task from the schedule.

Deletion is the only way a task leaves the store; time passing never
removes anything.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, cmd, args[0])
		},
	}
}

type lifecycleAction int

const (
	actionStart lifecycleAction = iota
	actionDone
)

func runLifecycleAction(opts *RootOptions, cmd *cobra.Command, id string, action lifecycleAction) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	t, err := s.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("no task with id %s", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load task", err)
	}

	ev, err := engine.Evaluate(t, opts.Now(), engine.Options{Grace: cfg.Grace.Std()})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to evaluate task", err)
	}

	var (
		patch task.Patch
		verb  string
	)
	switch action {
	case actionStart:
		if !ev.CanStart {
			return NewExitError(ExitFailure,
				fmt.Sprintf("cannot start %s: task is %s", id, ev.Status))
		}
		patch, verb = task.StartPatch(), "started"
	case actionDone:
		if !ev.CanEnd {
			return NewExitError(ExitFailure,
				fmt.Sprintf("cannot complete %s: task is %s", id, ev.Status))
		}
		patch, verb = task.CompletePatch(), "completed"
	}

	updated, err := s.Update(cmd.Context(), id, patch)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to update task", err)
	}
	offlineNotice(f, offline)

	if opts.Format == "json" {
		return f.Success(updated)
	}
	return f.Success(fmt.Sprintf("%s %s: %s", verb, updated.ID, updated.Title))
}

func runRemove(opts *RootOptions, cmd *cobra.Command, id string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if err := s.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no task with id %s", id))
		}
		return WrapExitError(ExitCommandError, "failed to delete task", err)
	}
	offlineNotice(f, offline)

	if opts.Format == "json" {
		return f.Success(map[string]string{"deleted": id})
	}
	return f.Success("deleted " + id)
}
