package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/notify"
)

// DefaultInterval is how often the scheduler checks for due reminders
const DefaultInterval = 10 * time.Second

// Source gives the scheduler read access to the committed outline and a way
// to mark a reminder as fired.
type Source interface {
	ReminderSnapshot() (sections []model.Section, activeID string)
	ExpireReminder(sectionID string) error
}

// Scheduler polls the Source and fires due reminders
type Scheduler struct {
	source   Source
	notifier notify.Notifier
	player   notify.Player
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler. interval <= 0 uses DefaultInterval.
func NewScheduler(source Source, notifier notify.Notifier, player notify.Player, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source:   source,
		notifier: notifier,
		player:   player,
		clock:    clk,
		interval: interval,
		logger:   logger.With("component", "reminder"),
	}
}

// Tick fires every due reminder in timestamp order and returns the ids of
// the sections that fired. The alarm is started at most once per tick.
func (s *Scheduler) Tick(now time.Time) []string {
	sections, activeID := s.source.ReminderSnapshot()

	var fired []string
	played := false
	for _, entry := range Candidates(sections, activeID) {
		if !Due(entry, now) {
			continue
		}

		if s.notifier != nil {
			if s.notifier.Permission() == notify.PermissionGranted {
				if err := s.notifier.Show(Payload(entry.Section)); err != nil {
					s.logger.Warn("notification failed", "section", entry.SectionID, "error", err)
				}
			} else {
				s.logger.Info("notification not permitted", "section", entry.SectionID, "permission", s.notifier.Permission())
			}
		}

		if s.player != nil && !played && !s.player.IsPlaying() {
			if err := s.player.Play(); err != nil {
				s.logger.Warn("alarm failed", "error", err)
			}
			played = true
		}

		if err := s.source.ExpireReminder(entry.SectionID); err != nil {
			s.logger.Error("failed to expire reminder", "section", entry.SectionID, "error", err)
			continue
		}
		fired = append(fired, entry.SectionID)
		s.logger.Info("reminder fired", "section", entry.SectionID, "at", entry.At)
	}
	return fired
}

// Run calls Tick on every interval until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(s.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(s.clock.Now())
		}
	}
}
