/*
Package cli implements the gh-repo-search commands.

The root command loads configuration once and builds an App holding the
shared dependencies: the logger, the SQLite database and the single
recent-search store. Subcommands receive the App instead of reaching for
globals.
*/
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/khanglvm/gh-repo-search/internal/config"
	"github.com/khanglvm/gh-repo-search/internal/github"
	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/logging"
	"github.com/khanglvm/gh-repo-search/internal/storage"
)

// App holds the dependencies shared by every command.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	DB      *storage.SQLiteStorage
	History *history.Store

	logCloser io.Closer
}

// NewApp opens the database and hydrates the recent-search store.
// A database that cannot be opened is logged and left disabled; history
// writes then fail with a *history.StorageError.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) *App {
	db := storage.NewStorage(cfg.Storage.Path, logger)
	// Init logs and disables the database on failure
	_ = db.Init()

	store := history.New(db,
		history.WithLogger(logger),
		history.WithMaxEntries(cfg.History.MaxEntries),
	)
	store.Initialize(ctx)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		History: store,
	}
}

// SearchClient returns a GitHub client built from configuration.
func (a *App) SearchClient() (*github.Client, error) {
	return github.NewClientFromConfig(a.Config.GitHub, a.Logger)
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// newLogger builds the logger for a command. Interactive commands never
// write to the terminal.
func newLogger(cfg *config.Config, levelOverride string, interactive bool) (*log.Logger, io.Closer, error) {
	logCfg := cfg.Log
	if levelOverride != "" {
		logCfg.Level = levelOverride
	}

	var fallback io.Writer = os.Stderr
	if interactive {
		fallback = nil
	}
	return logging.New(logCfg, fallback)
}
