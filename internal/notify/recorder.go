package notify

import (
	"errors"
	"sync"
)

// Recorder is a Notifier that keeps every notification in memory. The
// terminal view uses it to list recent reminders; tests use it to assert
// on what was shown.
type Recorder struct {
	mu         sync.Mutex
	permission Permission
	shown      []Notification
	err        error
}

// NewRecorder creates a recorder with the given permission
func NewRecorder(permission Permission) *Recorder {
	return &Recorder{permission: permission}
}

// Show records n
func (r *Recorder) Show(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.shown = append(r.shown, n)
	return nil
}

// Permission returns the recorder's permission
func (r *Recorder) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.permission
}

// SetErr makes Show fail with err
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Shown returns the recorded notifications in order
func (r *Recorder) Shown() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.shown...)
}

// Multi fans a notification out to several notifiers. Permission is the
// first notifier's.
type Multi []Notifier

// Show delivers n to every notifier and joins their errors
func (m Multi) Show(n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Show(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Permission returns the permission of the first notifier
func (m Multi) Permission() Permission {
	if len(m) == 0 {
		return PermissionDenied
	}
	return m[0].Permission()
}

// RecordingPlayer is a Player that only counts calls
type RecordingPlayer struct {
	mu      sync.Mutex
	playing bool
	plays   int
	volume  float64
}

// Play marks the player as playing
func (p *RecordingPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.plays++
	return nil
}

// Stop marks the player as stopped
func (p *RecordingPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// IsPlaying reports whether Play was called without a following Stop
func (p *RecordingPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// SetVolume records the volume
func (p *RecordingPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

// Plays returns how many times Play was called
func (p *RecordingPlayer) Plays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}
