package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/event"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/matcher"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

type SessionRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error)
}

type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
}

// RecognitionService é o orquestrador do pipeline por frame: valida a
// janela da sessão, detecta a face, extrai o embedding, compara com a
// galeria e registra a presença. Rejeições esperadas (sem face, fora da
// janela, não reconhecido) são outcomes, nunca erros; erro só quando a
// infraestrutura falha.
type RecognitionService struct {
	sessions   SessionRepositoryInterface
	attendance AttendanceRepositoryInterface
	provider   provider.FaceProvider
	gallery    *gallery.Cache
	events     event.Sink
	threshold  float64
	now        func() time.Time
}

func NewRecognitionService(
	sessions SessionRepositoryInterface,
	attendance AttendanceRepositoryInterface,
	faceProvider provider.FaceProvider,
	galleryCache *gallery.Cache,
	events event.Sink,
	threshold float64,
) *RecognitionService {
	return &RecognitionService{
		sessions:   sessions,
		attendance: attendance,
		provider:   faceProvider,
		gallery:    galleryCache,
		events:     events,
		threshold:  threshold,
		now:        time.Now,
	}
}

// WithClock troca a fonte de tempo (útil em testes)
func (s *RecognitionService) WithClock(now func() time.Time) *RecognitionService {
	s.now = now
	return s
}

// Recognize processa um frame contra a sessão. Pipeline completo:
// janela -> detecção -> embedding -> matching -> registro idempotente.
func (s *RecognitionService) Recognize(ctx context.Context, sessionID uuid.UUID, imageBytes []byte) (*domain.RecognitionResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		// sessão inexistente é tratada como fechada: o frame é um
		// descarte esperado, não um erro do cliente de captura
		if errors.Is(err, domain.ErrSessionNotFound) {
			return &domain.RecognitionResult{Outcome: domain.OutcomeSessionClosed}, nil
		}
		return nil, err
	}

	now := s.now()

	if session.IsTerminal() {
		return &domain.RecognitionResult{Outcome: domain.OutcomeSessionClosed}, nil
	}

	if !session.IsAutoRecognitionActive(now) {
		return &domain.RecognitionResult{Outcome: domain.OutcomeWindowExpired}, nil
	}

	detectedFaces, err := s.provider.DetectFaces(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("session %s: detect faces: %w", sessionID, err)
	}

	if len(detectedFaces) == 0 {
		return &domain.RecognitionResult{Outcome: domain.OutcomeNoFace}, nil
	}

	if len(detectedFaces) > 1 {
		return &domain.RecognitionResult{Outcome: domain.OutcomeMultipleFaces}, nil
	}

	embedding, err := s.provider.ExtractEmbedding(ctx, imageBytes)
	if err != nil {
		// detecção e extração podem divergir entre backends
		if errors.Is(err, domain.ErrNoFaceDetected) {
			return &domain.RecognitionResult{Outcome: domain.OutcomeNoFace}, nil
		}
		if errors.Is(err, domain.ErrMultipleFaces) {
			return &domain.RecognitionResult{Outcome: domain.OutcomeMultipleFaces}, nil
		}
		return nil, fmt.Errorf("session %s: extract embedding: %w", sessionID, err)
	}

	snapshot, err := s.gallery.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("session %s: load gallery: %w", sessionID, err)
	}

	match := matcher.BestMatch(matcher.Normalize(embedding), snapshot)
	if !match.Found || match.Confidence < s.threshold {
		return &domain.RecognitionResult{Outcome: domain.OutcomeNotRecognized}, nil
	}

	status := session.AttendanceStatusAt(now)
	confidence := match.Confidence

	record := &domain.AttendanceRecord{
		SessionID:  sessionID,
		StudentID:  match.StudentID,
		Status:     status,
		Method:     domain.MethodFaceRecognition,
		Confidence: &confidence,
		MarkedAt:   now,
	}

	if err := s.attendance.Create(ctx, record); err != nil {
		// já marcado (por frame anterior ou manualmente): no-op, o
		// registro existente nunca é sobrescrito
		if errors.Is(err, domain.ErrAttendanceExists) {
			return &domain.RecognitionResult{
				Outcome:    domain.OutcomeAlreadyMarked,
				StudentID:  match.StudentID,
				Confidence: match.Confidence,
				Distance:   match.Distance,
			}, nil
		}
		return nil, err
	}

	s.events.Publish(ctx, event.TypeAttendanceMarked, event.AttendanceMarked{
		SessionID:  sessionID,
		StudentID:  match.StudentID,
		Status:     status,
		Method:     domain.MethodFaceRecognition,
		Confidence: &confidence,
		MarkedAt:   now,
	})

	return &domain.RecognitionResult{
		Outcome:    domain.OutcomeMarked,
		StudentID:  match.StudentID,
		Status:     status,
		Confidence: match.Confidence,
		Distance:   match.Distance,
	}, nil
}
