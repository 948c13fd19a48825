package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/engine"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/notify"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/quote"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/schedule"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reminder daemon in the foreground",
		Long: `Run the schedule daemon.

The daemon re-evaluates today's tasks every tick, persists auto-fail
write-backs, delivers start/end/periodic reminders to the terminal, and
rolls the schedule over at midnight. It runs until interrupted.

Example:
  timetable run
  timetable run --verbose --config ./config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(rootOpts, cmd)
		},
	}
	return cmd
}

func runDaemon(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	s, offline, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)
	if offline() {
		fmt.Fprintln(cmd.ErrOrStderr(), "note: database unreachable, running on the local fallback file")
	}

	// Reminder pipeline: cooldown gate, quote source, console delivery.
	dispatcherOpts := []notify.DispatcherOption{
		notify.WithEnabled(cfg.Notifications.Enabled),
		notify.WithCooldown(notify.NewCooldown(cfg.Notifications.Cooldown.Std(), opts.Now)),
		notify.WithCacheTTL(cfg.Quote.CacheTTL.Std()),
	}
	if key := cfg.Quote.APIKey(); key != "" {
		clientOpts := []quote.ClientOption{
			quote.WithTimeout(cfg.Quote.Timeout.Std()),
			quote.WithQuotaCooldown(cfg.Quote.QuotaCooldown.Std()),
		}
		if cfg.Quote.Endpoint != "" {
			clientOpts = append(clientOpts, quote.WithEndpoint(cfg.Quote.Endpoint))
		}
		dispatcherOpts = append(dispatcherOpts, notify.WithGenerator(quote.NewClient(key, clientOpts...)))
	} else {
		slog.Info("quote generation disabled, reminders use static text",
			"env", cfg.Quote.APIKeyEnv)
	}
	dispatcher := notify.NewDispatcher(notify.NewConsole(cmd.OutOrStdout()), dispatcherOpts...)

	watcher := schedule.NewWatcher(s, opts.Now,
		schedule.WithPollInterval(cfg.RolloverPoll.Std()))

	eng := engine.New(s, engine.SystemClock{}, dispatcher,
		engine.WithTickInterval(cfg.TickInterval.Std()),
		engine.WithRefreshInterval(cfg.RefreshInterval.Std()),
		engine.WithGrace(cfg.Grace.Std()),
		engine.WithRollover(watcher.Days()),
	)

	// Graceful shutdown on SIGINT/SIGTERM. The command's context drives
	// cancellation in tests.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			slog.Error("rollover watcher stopped", "error", err)
		}
	}()

	slog.Info("daemon starting",
		"db", cfg.DatabasePath,
		"tick", cfg.TickInterval.Std(),
		"notifications", cfg.Notifications.Enabled)
	fmt.Fprintln(cmd.OutOrStdout(), "Schedule daemon started. Press Ctrl-C to stop.")

	if err := eng.Run(ctx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "daemon error", err)
	}

	slog.Info("daemon stopped gracefully")
	return nil
}
