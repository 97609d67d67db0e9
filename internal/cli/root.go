// Package cli wires configuration, storage and the terminal app into the
// subtasks command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/subtasks/internal/config"
)

// Options holds the persistent flags
type Options struct {
	ConfigPath string
	Dir        string
}

// NewRootCmd builds the subtasks command tree. Without a subcommand it
// starts the interactive checklist.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:          "subtasks",
		Short:        "Checklist outliner with reminders",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive checklist
  subtasks

  # Add a task from a script; goes to the running instance if there is one
  subtasks add --name Groceries "milk" "eggs"

  # Print open tasks
  subtasks list`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", envOr("SUBTASKS_CONFIG", ""), "Path to config file (default ~/.config/subtasks/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", envOr("SUBTASKS_DIR", ""), "Data directory (overrides storage.dir)")

	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newSilenceCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads the config file named by the flags
func (o *Options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFromFile(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.Dir != "" {
		cfg.Storage.Dir = o.Dir
	}
	return cfg, nil
}

// openLogger creates the structured logger writing to the configured log
// file. The terminal belongs to the UI, so nothing is logged to stderr.
func openLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}))
	return logger, f.Close, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
