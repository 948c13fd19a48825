package cli

import (
	"fmt"
	"log/slog"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/config"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/store"
)

// openStore opens the primary database wrapped in file-store failover.
// When the database cannot even be opened the file store serves alone;
// the returned offline func reports whether the last operation was served
// by the fallback, which commands render as an offline-mode notice.
func openStore(cfg config.Config) (store.Store, func() bool, error) {
	fallback, err := store.OpenFile(cfg.FallbackPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open fallback store", err)
	}

	primary, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Warn("database unavailable, running on the fallback store",
			"path", cfg.DatabasePath, "error", err)
		return fallback, func() bool { return true }, nil
	}

	fo := store.NewFailover(primary, fallback)
	return fo, fo.Offline, nil
}

// closeStore logs instead of failing the command on close errors.
func closeStore(s store.Store) {
	if err := s.Close(); err != nil {
		slog.Error("error closing store", "error", err)
	}
}

// offlineNotice renders the store-fallback banner when applicable. It is
// a notice, not an error, and goes to the diagnostic writer so JSON
// output stays parseable.
func offlineNotice(f *OutputFormatter, offline func() bool) {
	if offline == nil || !offline() {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintln(w, "note: database unreachable, working against the local fallback file")
}
