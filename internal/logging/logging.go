// Package logging builds the charmbracelet/log logger shared by every package.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/khanglvm/gh-repo-search/internal/config"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New creates a logger from configuration.
//
// Output goes to cfg.File through a rotating writer when set, otherwise to
// fallback. A nil fallback discards console output (the TUI owns the terminal).
// The returned closer is nil when no file was opened.
func New(cfg config.LogConfig, fallback io.Writer) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer
	var closer io.Closer
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		w, closer = lj, lj
	case fallback != nil:
		w = fallback
	default:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          config.AppName,
		ReportTimestamp: cfg.File != "",
		TimeFormat:      "2006-01-02 15:04:05",
	})
	applyStyles(logger)

	return logger, closer, nil
}

// ParseLevel converts a config level name to a log.Level.
// An empty string means warn.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return log.WarnLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.WarnLevel, fmt.Errorf("unknown log level: %s", level)
	}
	return lvl, nil
}

// Discard returns a logger that drops everything. Used as the default
// when a component is constructed without a logger.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func applyStyles(logger *log.Logger) {
	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	logger.SetStyles(styles)
}
