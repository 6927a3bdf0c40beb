package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays visible unless dismissed.
const DefaultDuration = 2200 * time.Millisecond

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Toast struct {
	Seq       uint64    `json:"seq"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	ShownAt   time.Time `json:"shown_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is what mutating components need to surface a message.
type Notifier interface {
	Show(severity Severity, message string) Toast
}

// Slot holds at most one toast. Showing a new one replaces the current toast
// and restarts the auto-clear timer; there is no queue.
type Slot struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time

	seq     uint64
	current *Toast
	timer   *time.Timer
	closed  bool
}

func NewSlot(duration time.Duration) *Slot {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Slot{
		duration: duration,
		now:      time.Now,
	}
}

func (s *Slot) Show(severity Severity, message string) Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	shown := s.now()
	t := Toast{
		Seq:       s.seq,
		Severity:  severity,
		Message:   message,
		ShownAt:   shown,
		ExpiresAt: shown.Add(s.duration),
	}
	if s.closed {
		return t
	}
	s.current = &t

	if s.timer != nil {
		s.timer.Stop()
	}
	seq := t.Seq
	s.timer = time.AfterFunc(s.duration, func() { s.expire(seq) })
	return t
}

// expire clears the slot only if the toast that scheduled it is still shown.
func (s *Slot) expire(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Seq == seq {
		s.current = nil
		s.timer = nil
	}
}

func (s *Slot) Current() (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Toast{}, false
	}
	return *s.current, true
}

func (s *Slot) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Close stops the pending timer. Later Show calls are not displayed.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.closed = true
}

func (s *Slot) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current = nil
}
