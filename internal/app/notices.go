package app

import (
	"sync"
	"time"
)

// Notices shown to the user
const (
	NoticeDraftRestored = "Unsaved changes detected, draft restored"
	NoticeSaved         = "Tasks saved"
	NoticeCompleted     = "Task completed"
	NoticeReset         = "Tasks reset"
	noticeNotSaved      = "Not saved: "
)

// Notice represents a status message with timestamp
type Notice struct {
	Text      string
	Timestamp time.Time
}

// NoticeLog tracks the last N notices
type NoticeLog struct {
	notices []Notice
	maxSize int
	now     func() time.Time
	mu      sync.Mutex
}

// NewNoticeLog creates a notice log with the specified max size. now stamps
// each notice; nil uses time.Now.
func NewNoticeLog(maxSize int, now func() time.Time) *NoticeLog {
	if now == nil {
		now = time.Now
	}
	return &NoticeLog{
		notices: make([]Notice, 0, maxSize),
		maxSize: maxSize,
		now:     now,
	}
}

// Add appends a notice, dropping the oldest beyond maxSize
func (nl *NoticeLog) Add(text string) {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	if text == "" {
		return
	}

	nl.notices = append(nl.notices, Notice{Text: text, Timestamp: nl.now()})
	if len(nl.notices) > nl.maxSize {
		nl.notices = nl.notices[len(nl.notices)-nl.maxSize:]
	}
}

// All returns a copy of all notices in chronological order
func (nl *NoticeLog) All() []Notice {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	result := make([]Notice, len(nl.notices))
	copy(result, nl.notices)
	return result
}

// Latest returns the newest notice if it is younger than maxAge
func (nl *NoticeLog) Latest(maxAge time.Duration) (Notice, bool) {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	if len(nl.notices) == 0 {
		return Notice{}, false
	}
	last := nl.notices[len(nl.notices)-1]
	if nl.now().Sub(last.Timestamp) > maxAge {
		return Notice{}, false
	}
	return last, true
}

// Clear removes all notices
func (nl *NoticeLog) Clear() {
	nl.mu.Lock()
	defer nl.mu.Unlock()
	nl.notices = nl.notices[:0]
}
