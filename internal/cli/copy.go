package cli

import (
	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/store"
)

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <source-date> <target-date>",
		Short: "Copy one day's schedule onto another date",
		Long: `Clone every task scheduled on the source date onto the target date.

Clones are fresh tasks: new ids, lifecycle and reminder flags reset.
A source date with no tasks is reported as a failure rather than silently
copying nothing.

Example:
  timetable copy 2025-03-09 2025-03-10`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runCopy(opts *RootOptions, cmd *cobra.Command, sourceDate, targetDate string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	for _, date := range []string{sourceDate, targetDate} {
		if _, err := timeParseDate(date); err != nil {
			return WrapExitError(ExitCommandError, "invalid date", err)
		}
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	res, err := store.CopyDay(cmd.Context(), s, sourceDate, targetDate)
	if err != nil {
		return WrapExitError(ExitCommandError, "copy failed", err)
	}
	offlineNotice(f, offline)

	if res.Success {
		if opts.Format == "json" {
			return f.Success(res)
		}
		return f.Success(res.Message)
	}
	if opts.Format == "json" {
		_ = f.Error("copy_failed", res.Message, res)
	}
	return NewExitError(ExitFailure, res.Message)
}
