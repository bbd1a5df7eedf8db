package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of an attendance session.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
	SessionCancelled SessionState = "cancelled"
)

// WindowMode reports which marking paths are open for a session.
type WindowMode string

const (
	// ModeAuto means automatic face recognition is currently permitted.
	ModeAuto WindowMode = "auto"
	// ModeManualOnly means only manual marking is available.
	ModeManualOnly WindowMode = "manual_only"
)

// Default durations, in minutes. Overridable per session at creation.
const (
	DefaultWindowMinutes     = 20
	DefaultMaxSessionMinutes = 120
	DefaultLateAfterMinutes  = 10
)

// AttendanceSession representa uma sessão de chamada de uma turma.
// StartedAt é definido na criação e nunca muda; transições de estado são
// monotônicas (active -> completed|cancelled, estados terminais não reabrem).
type AttendanceSession struct {
	ID               uuid.UUID    `json:"id"`
	ClassID          string       `json:"class_id"`
	State            SessionState `json:"state"`
	StartedAt        time.Time    `json:"started_at"`
	EndedAt          *time.Time   `json:"ended_at,omitempty"`
	WindowMinutes    int          `json:"window_minutes"`
	MaxMinutes       int          `json:"max_minutes"`
	LateAfterMinutes int          `json:"late_after_minutes"`
	AutoEnded        bool         `json:"auto_ended"`
	EndReason        string       `json:"end_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// WindowStatus is the pure, recomputed-on-every-query view of the
// auto-recognition window for a session.
type WindowStatus struct {
	IsActive         bool       `json:"is_active"`
	Mode             WindowMode `json:"mode"`
	ElapsedMinutes   int        `json:"elapsed_minutes"`
	WindowMinutes    int        `json:"window_minutes"`
	RemainingMinutes int        `json:"remaining_minutes"`
}

// Validate checks session invariants at creation time.
func (s *AttendanceSession) Validate() error {
	if s.WindowMinutes <= 0 || s.MaxMinutes <= 0 {
		return ErrValidationFailed
	}
	if s.WindowMinutes > s.MaxMinutes {
		return ErrInvalidWindow
	}
	return nil
}

// IsTerminal reports whether the session reached a terminal state.
func (s *AttendanceSession) IsTerminal() bool {
	return s.State == SessionCompleted || s.State == SessionCancelled
}

// Window returns the auto-recognition window length.
func (s *AttendanceSession) Window() time.Duration {
	return time.Duration(s.WindowMinutes) * time.Minute
}

// MaxDuration returns the maximum total session duration.
func (s *AttendanceSession) MaxDuration() time.Duration {
	return time.Duration(s.MaxMinutes) * time.Minute
}

// IsAutoRecognitionActive decide se o reconhecimento automático está
// permitido neste instante. Função pura sobre os campos da sessão:
// elapsed <= window E estado active. Inclusivo na borda: um frame que
// chega exatamente em window_minutes ainda é aceito.
func (s *AttendanceSession) IsAutoRecognitionActive(now time.Time) bool {
	if s.State != SessionActive {
		return false
	}
	return now.Sub(s.StartedAt) <= s.Window()
}

// AllowsManualMarking reports whether manual marking is available.
// Manual marking is never gated by the recognition window, only by
// terminal session state.
func (s *AttendanceSession) AllowsManualMarking() bool {
	return !s.IsTerminal()
}

// WindowStatus computes the window report for status displays.
func (s *AttendanceSession) WindowStatus(now time.Time) WindowStatus {
	elapsed := int(now.Sub(s.StartedAt).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := s.WindowMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}

	active := s.IsAutoRecognitionActive(now)
	mode := ModeManualOnly
	if active {
		mode = ModeAuto
	}
	if !active {
		remaining = 0
	}

	return WindowStatus{
		IsActive:         active,
		Mode:             mode,
		ElapsedMinutes:   elapsed,
		WindowMinutes:    s.WindowMinutes,
		RemainingMinutes: remaining,
	}
}

// AttendanceStatusAt derives the record status for a mark at the given
// instant: present within the grace period, late afterwards.
func (s *AttendanceSession) AttendanceStatusAt(now time.Time) AttendanceStatus {
	if now.Sub(s.StartedAt) <= time.Duration(s.LateAfterMinutes)*time.Minute {
		return StatusPresent
	}
	return StatusLate
}

// Ended returns a copy of the session transitioned to the given terminal
// state. Transitions out of a terminal state are rejected; the persistence
// layer additionally guards this with a state filter on the update.
func (s AttendanceSession) Ended(now time.Time, state SessionState, reason string, auto bool) (AttendanceSession, error) {
	if s.IsTerminal() {
		return s, ErrSessionClosed
	}
	if state != SessionCompleted && state != SessionCancelled {
		return s, ErrValidationFailed
	}

	s.State = state
	s.EndedAt = &now
	s.EndReason = reason
	s.AutoEnded = auto
	return s, nil
}
