package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

const (
	TypeAttendanceMarked = "attendance.marked"
	TypeSessionEnded     = "session.ended"
)

// Payload é o envelope de todo evento emitido pelo serviço
type Payload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// AttendanceMarked é emitido quando uma presença é registrada, tanto
// por reconhecimento quanto por marcação manual
type AttendanceMarked struct {
	SessionID  uuid.UUID                 `json:"session_id"`
	StudentID  string                    `json:"student_id"`
	Status     domain.AttendanceStatus   `json:"status"`
	Method     domain.VerificationMethod `json:"method"`
	Confidence *float64                  `json:"confidence,omitempty"`
	MarkedAt   time.Time                 `json:"marked_at"`
}

// SessionEnded é emitido quando uma sessão chega a estado terminal
type SessionEnded struct {
	SessionID uuid.UUID           `json:"session_id"`
	ClassID   string              `json:"class_id"`
	State     domain.SessionState `json:"state"`
	Reason    string              `json:"reason"`
	AutoEnded bool                `json:"auto_ended"`
	EndedAt   time.Time           `json:"ended_at"`
}

// Sink recebe eventos do pipeline. A publicação nunca deve falhar o
// fluxo principal: erros são responsabilidade do sink.
type Sink interface {
	Publish(ctx context.Context, eventType string, data interface{})
}

// SlogSink loga todos os eventos de forma estruturada. É sempre o sink
// base; o webhook sink é opcional em cima dele.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Publish(ctx context.Context, eventType string, data interface{}) {
	s.logger.InfoContext(ctx, "event published", "type", eventType, "data", data)
}

// MultiSink encaminha cada evento para todos os sinks configurados
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Publish(ctx context.Context, eventType string, data interface{}) {
	for _, s := range m.sinks {
		s.Publish(ctx, eventType, data)
	}
}
