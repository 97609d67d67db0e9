// Package notify delivers reminder notifications to the desktop and rings
// the alarm sound.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notification is one desktop notification. Tag identifies the section it
// belongs to so repeated notifications for the same section replace each
// other where the platform supports it.
type Notification struct {
	Title string
	Body  string
	Tag   string
}

// Permission mirrors the browser-style notification permission states
type Permission int

const (
	PermissionPrompt Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "prompt"
	}
}

// PermissionFromConfig maps the optional notifications setting to a permission
func PermissionFromConfig(enabled *bool) Permission {
	switch {
	case enabled == nil:
		return PermissionPrompt
	case *enabled:
		return PermissionGranted
	default:
		return PermissionDenied
	}
}

// Notifier shows notifications
type Notifier interface {
	Show(n Notification) error
	Permission() Permission
}

// Player is the alarm sound
type Player interface {
	Play() error
	Stop()
	IsPlaying() bool
	SetVolume(volume float64)
}

// Desktop sends notifications through the platform notification service
type Desktop struct {
	permission Permission
	icon       string
	notify     func(title, message string, icon any) error
	logger     *slog.Logger
}

// NewDesktop creates a desktop notifier. icon may be empty.
func NewDesktop(permission Permission, icon string, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{
		permission: permission,
		icon:       icon,
		notify:     beeep.Notify,
		logger:     logger.With("component", "notify"),
	}
}

// Permission returns the configured permission
func (d *Desktop) Permission() Permission {
	return d.permission
}

// Show displays n. Callers check Permission first.
func (d *Desktop) Show(n Notification) error {
	if d.permission != PermissionGranted {
		return fmt.Errorf("notifications not permitted (%s)", d.permission)
	}
	var icon any = ""
	if d.icon != "" {
		icon = d.icon
	}
	if err := d.notify(n.Title, n.Body, icon); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	d.logger.Debug("notification shown", "tag", n.Tag, "title", n.Title)
	return nil
}
