package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/event"
)

type SessionStoreInterface interface {
	Create(ctx context.Context, session *domain.AttendanceSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error)
	End(ctx context.Context, id uuid.UUID, state domain.SessionState, reason string, endedAt time.Time, autoEnded bool) error
}

type AttendanceStoreInterface interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error)
}

// SessionDefaults são os valores usados quando a criação não especifica
type SessionDefaults struct {
	WindowMinutes    int
	MaxMinutes       int
	LateAfterMinutes int
}

// SessionService gerencia o ciclo de vida das sessões de chamada e a
// marcação manual de presença.
type SessionService struct {
	sessions   SessionStoreInterface
	attendance AttendanceStoreInterface
	events     event.Sink
	defaults   SessionDefaults
	now        func() time.Time
}

func NewSessionService(
	sessions SessionStoreInterface,
	attendance AttendanceStoreInterface,
	events event.Sink,
	defaults SessionDefaults,
) *SessionService {
	if defaults.WindowMinutes <= 0 {
		defaults.WindowMinutes = domain.DefaultWindowMinutes
	}
	if defaults.MaxMinutes <= 0 {
		defaults.MaxMinutes = domain.DefaultMaxSessionMinutes
	}
	if defaults.LateAfterMinutes <= 0 {
		defaults.LateAfterMinutes = domain.DefaultLateAfterMinutes
	}

	return &SessionService{
		sessions:   sessions,
		attendance: attendance,
		events:     events,
		defaults:   defaults,
		now:        time.Now,
	}
}

// WithClock troca a fonte de tempo (útil em testes)
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Start abre uma nova sessão de chamada para a turma. Parâmetros zero
// caem nos defaults configurados.
func (s *SessionService) Start(ctx context.Context, classID string, windowMinutes, maxMinutes, lateAfterMinutes int) (*domain.AttendanceSession, error) {
	if classID == "" {
		return nil, domain.ErrValidationFailed
	}

	if windowMinutes <= 0 {
		windowMinutes = s.defaults.WindowMinutes
	}
	if maxMinutes <= 0 {
		maxMinutes = s.defaults.MaxMinutes
	}
	if lateAfterMinutes <= 0 {
		lateAfterMinutes = s.defaults.LateAfterMinutes
	}

	session := &domain.AttendanceSession{
		ClassID:          classID,
		State:            domain.SessionActive,
		StartedAt:        s.now(),
		WindowMinutes:    windowMinutes,
		MaxMinutes:       maxMinutes,
		LateAfterMinutes: lateAfterMinutes,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// End encerra manualmente a sessão. cancelled indica cancelamento em
// vez de conclusão normal.
func (s *SessionService) End(ctx context.Context, sessionID uuid.UUID, cancelled bool) (*domain.AttendanceSession, error) {
	state := domain.SessionCompleted
	reason := "manual"
	if cancelled {
		state = domain.SessionCancelled
		reason = "cancelled"
	}

	now := s.now()
	if err := s.sessions.End(ctx, sessionID, state, reason, now, false); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, event.TypeSessionEnded, event.SessionEnded{
		SessionID: session.ID,
		ClassID:   session.ClassID,
		State:     session.State,
		Reason:    session.EndReason,
		AutoEnded: session.AutoEnded,
		EndedAt:   now,
	})

	return session, nil
}

// Get retorna a sessão pelo id
func (s *SessionService) Get(ctx context.Context, sessionID uuid.UUID) (*domain.AttendanceSession, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// WindowStatus recalcula o estado da janela de reconhecimento a cada
// consulta; nada é persistido.
func (s *SessionService) WindowStatus(ctx context.Context, sessionID uuid.UUID) (*domain.WindowStatus, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status := session.WindowStatus(s.now())
	return &status, nil
}

// MarkManual registra presença manualmente. Disponível durante toda a
// sessão não terminal, mesmo com a janela de reconhecimento expirada.
func (s *SessionService) MarkManual(ctx context.Context, sessionID uuid.UUID, studentID string, status domain.AttendanceStatus, markedBy string) (*domain.AttendanceRecord, error) {
	if studentID == "" {
		return nil, domain.ErrValidationFailed
	}
	if !domain.ValidAttendanceStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.AllowsManualMarking() {
		return nil, domain.ErrSessionClosed
	}

	now := s.now()
	record := &domain.AttendanceRecord{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		Method:    domain.MethodManual,
		MarkedBy:  markedBy,
		MarkedAt:  now,
	}

	if err := s.attendance.Create(ctx, record); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, event.TypeAttendanceMarked, event.AttendanceMarked{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		Method:    domain.MethodManual,
		MarkedAt:  now,
	})

	return record, nil
}

// ListAttendance retorna todos os registros da sessão
func (s *SessionService) ListAttendance(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	return s.attendance.ListBySession(ctx, sessionID)
}
