package notify

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/pstuifzand/subtasks/internal/clock"
)

// Tone is one beep of an alarm pattern
type Tone struct {
	Freq     float64
	Duration time.Duration
	Gap      time.Duration
}

// Sound is a named, looping beep pattern
type Sound struct {
	ID    string
	Title string
	Tones []Tone
}

var sounds = []Sound{
	{ID: "dreamscape", Title: "Dreamscape", Tones: []Tone{
		{Freq: 523.25, Duration: 180 * time.Millisecond, Gap: 60 * time.Millisecond},
		{Freq: 659.25, Duration: 180 * time.Millisecond, Gap: 60 * time.Millisecond},
		{Freq: 783.99, Duration: 360 * time.Millisecond, Gap: 600 * time.Millisecond},
	}},
	{ID: "lofi", Title: "Lo-Fi", Tones: []Tone{
		{Freq: 392.00, Duration: 250 * time.Millisecond, Gap: 150 * time.Millisecond},
		{Freq: 349.23, Duration: 250 * time.Millisecond, Gap: 700 * time.Millisecond},
	}},
	{ID: "morning-joy", Title: "Morning Joy", Tones: []Tone{
		{Freq: 659.25, Duration: 120 * time.Millisecond, Gap: 40 * time.Millisecond},
		{Freq: 783.99, Duration: 120 * time.Millisecond, Gap: 40 * time.Millisecond},
		{Freq: 1046.50, Duration: 240 * time.Millisecond, Gap: 500 * time.Millisecond},
	}},
	{ID: "oversimplified", Title: "Oversimplified", Tones: []Tone{
		{Freq: beeep.DefaultFreq, Duration: 200 * time.Millisecond, Gap: 800 * time.Millisecond},
	}},
	{ID: "soft-plucks", Title: "Soft Plucks", Tones: []Tone{
		{Freq: 880.00, Duration: 60 * time.Millisecond, Gap: 120 * time.Millisecond},
		{Freq: 987.77, Duration: 60 * time.Millisecond, Gap: 120 * time.Millisecond},
		{Freq: 880.00, Duration: 60 * time.Millisecond, Gap: 900 * time.Millisecond},
	}},
}

// DefaultSound is used when the configured sound is unknown
const DefaultSound = "dreamscape"

// Sounds returns the available alarm sounds
func Sounds() []Sound {
	return slices.Clone(sounds)
}

// LookupSound finds a sound by id or title, case-insensitively
func LookupSound(name string) (Sound, error) {
	for _, sound := range sounds {
		if strings.EqualFold(sound.ID, name) || strings.EqualFold(sound.Title, name) {
			return sound, nil
		}
	}
	return Sound{}, fmt.Errorf("unknown alarm sound: %q", name)
}

// Alarm plays a Sound in a loop on its own goroutine until Stop is called
// or the maximum ring duration passes.
type Alarm struct {
	mu       sync.Mutex
	sound    Sound
	volume   float64
	maxRing  time.Duration
	clock    clock.Clock
	beep     func(freq float64, duration int) error
	logger   *slog.Logger
	playing  bool
	stop     chan struct{}
	ringStop *clock.Timer
}

// NewAlarm creates an alarm. maxRing <= 0 rings until stopped.
func NewAlarm(sound Sound, volume float64, maxRing time.Duration, clk clock.Clock, logger *slog.Logger) *Alarm {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alarm{
		sound:   sound,
		volume:  clampVolume(volume),
		maxRing: maxRing,
		clock:   clk,
		beep:    beeep.Beep,
		logger:  logger.With("component", "alarm"),
	}
}

// Play starts ringing. Calling Play while already playing does nothing,
// so several reminders firing together share one alarm.
func (a *Alarm) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return nil
	}
	if len(a.sound.Tones) == 0 {
		return fmt.Errorf("alarm sound %q has no tones", a.sound.ID)
	}

	a.playing = true
	stop := make(chan struct{})
	a.stop = stop
	if a.maxRing > 0 {
		a.ringStop = a.clock.AfterFunc(a.maxRing, a.Stop)
	}
	go a.loop(stop)
	a.logger.Info("alarm started", "sound", a.sound.ID)
	return nil
}

// Stop silences the alarm
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		return
	}
	a.playing = false
	close(a.stop)
	if a.ringStop != nil {
		a.ringStop.Stop()
		a.ringStop = nil
	}
	a.logger.Info("alarm stopped")
}

// IsPlaying reports whether the alarm is ringing
func (a *Alarm) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// SetVolume sets the volume in [0, 1]. Zero mutes the tones while the
// alarm still counts as playing.
func (a *Alarm) SetVolume(volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = clampVolume(volume)
}

func (a *Alarm) muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume == 0
}

func (a *Alarm) loop(stop <-chan struct{}) {
	for {
		for _, tone := range a.sound.Tones {
			select {
			case <-stop:
				return
			default:
			}
			if !a.muted() {
				if err := a.beep(tone.Freq, int(tone.Duration/time.Millisecond)); err != nil {
					a.logger.Warn("beep failed", "error", err)
				}
			}
			if !a.wait(stop, tone.Gap) {
				return
			}
		}
	}
}

// wait blocks for d on the alarm's clock. Returns false when stopped.
func (a *Alarm) wait(stop <-chan struct{}, d time.Duration) bool {
	done := make(chan struct{})
	timer := a.clock.AfterFunc(d, func() { close(done) })
	select {
	case <-stop:
		timer.Stop()
		return false
	case <-done:
		return true
	}
}

func clampVolume(volume float64) float64 {
	return max(0, min(volume, 1))
}
