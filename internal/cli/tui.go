package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/subtasks/internal/app"
	"github.com/pstuifzand/subtasks/internal/config"
	"github.com/pstuifzand/subtasks/internal/history"
	"github.com/pstuifzand/subtasks/internal/notify"
	"github.com/pstuifzand/subtasks/internal/reminder"
	"github.com/pstuifzand/subtasks/internal/socket"
	"github.com/pstuifzand/subtasks/internal/theme"
	"github.com/pstuifzand/subtasks/internal/ui"
)

func runTUI(cmd *cobra.Command, opts *Options) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	server, err := socket.NewServer(cfg.SocketPath(), logger)
	switch {
	case errors.Is(err, socket.ErrAlreadyRunning):
		return fmt.Errorf("subtasks is already running (%s)", cfg.SocketPath())
	case err != nil:
		logger.Warn("control socket unavailable", "error", err)
		server = nil
	}

	e, err := openEnv(cfg, logger)
	if err != nil {
		if server != nil {
			server.Stop()
		}
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	notices := app.NewNoticeLog(50, e.clock.Now)
	engine, err := e.engine(notices)
	if err != nil {
		if server != nil {
			server.Stop()
		}
		return err
	}

	alarm := newAlarm(cfg, e)
	desktop := notify.NewDesktop(notify.PermissionFromConfig(cfg.Reminder.Notifications), "", logger)
	scheduler := reminder.NewScheduler(engine, desktop, alarm, e.clock, cfg.PollInterval(), logger)

	hist, err := history.NewManager(filepath.Join(cfg.DataDir(), "history"))
	if err != nil {
		logger.Warn("prompt history disabled", "error", err)
		hist = nil
	}

	screen, err := ui.NewScreen(theme.LoadThemeOrDefault(cfg.Theme, cfg.ThemeDir(), logger))
	if err != nil {
		if server != nil {
			server.Stop()
		}
		engine.Close()
		return err
	}
	defer screen.Close()

	application := app.NewApp(app.Options{
		Screen:         screen,
		Engine:         engine,
		Server:         server,
		Scheduler:      scheduler,
		Player:         alarm,
		Clock:          e.clock,
		Formats:        formats(cfg),
		NoticeDuration: cfg.NoticeDuration(),
		History:        hist,
		Logger:         logger,
	})

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("subtasks started", "dir", cfg.DataDir(), "backend", cfg.Storage.Backend)
	return application.Run(ctx)
}

func newAlarm(cfg *config.Config, e *env) *notify.Alarm {
	sound, err := notify.LookupSound(cfg.Reminder.Alarm)
	if err != nil {
		e.logger.Warn("unknown alarm, using default", "alarm", cfg.Reminder.Alarm)
		sound = notify.Sounds()[0]
	}
	return notify.NewAlarm(sound, cfg.Reminder.Volume, cfg.MaxRing(), e.clock, e.logger)
}

func formats(cfg *config.Config) reminder.Formats {
	return reminder.Formats{
		Clock:   cfg.Reminder.ClockFormat,
		Weekday: cfg.Reminder.WeekdayFormat,
		Date:    cfg.Reminder.DateFormat,
	}
}
