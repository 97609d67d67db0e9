package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pstuifzand/subtasks/internal/app"
	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/config"
	"github.com/pstuifzand/subtasks/internal/draft"
	"github.com/pstuifzand/subtasks/internal/storage"
)

// env is the opened storage of one data directory
type env struct {
	cfg      *config.Config
	clock    clock.Clock
	logger   *slog.Logger
	outlines *storage.OutlineStore
	drafts   *draft.Store
	closeFn  func() error
}

func openEnv(cfg *config.Config, logger *slog.Logger) (*env, error) {
	tag, err := storage.ParseCompressionTag(cfg.Storage.Compress)
	if err != nil {
		return nil, err
	}
	blobs, closeFn, err := storage.Open(storage.Options{
		Backend:     storage.Backend(cfg.Storage.Backend),
		Dir:         cfg.DataDir(),
		Compression: tag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var backups *storage.BackupManager
	if cfg.Storage.Backups > 0 {
		backups, err = storage.NewBackupManager(cfg.BackupDir(), cfg.Storage.Backups)
		if err != nil {
			logger.Warn("backups disabled", "error", err)
			backups = nil
		}
	}

	clk := clock.Real()
	return &env{
		cfg:      cfg,
		clock:    clk,
		logger:   logger,
		outlines: storage.NewOutlineStore(blobs, backups, logger),
		drafts:   draft.NewStore(blobs, clk, cfg.DraftDebounce(), logger),
		closeFn:  closeFn,
	}, nil
}

// engine creates and loads the editing engine
func (e *env) engine(notices *app.NoticeLog) (*app.Engine, error) {
	engine := app.NewEngine(app.EngineOptions{
		Outlines:      e.outlines,
		Drafts:        e.drafts,
		Clock:         e.clock,
		CheckboxDelay: e.cfg.CheckboxDelay(),
		Notices:       notices,
		Logger:        e.logger,
	})
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

func (e *env) Close() error {
	return errors.Join(e.drafts.Flush(), e.closeFn())
}
