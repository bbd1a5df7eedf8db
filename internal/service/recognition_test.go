package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/event"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/matcher"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Shared mocks for the service package tests

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.AttendanceSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceSession), args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, id uuid.UUID, state domain.SessionState, reason string, endedAt time.Time, autoEnded bool) error {
	args := m.Called(ctx, id, state, reason, endedAt, autoEnded)
	return args.Error(0)
}

func (m *MockSessionRepository) EndExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttendanceRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

type MockEncodingRepository struct {
	mock.Mock
}

func (m *MockEncodingRepository) Add(ctx context.Context, encoding *domain.FaceEncoding) error {
	args := m.Called(ctx, encoding)
	return args.Error(0)
}

func (m *MockEncodingRepository) RemoveAllByStudent(ctx context.Context, studentID string) (int, error) {
	args := m.Called(ctx, studentID)
	return args.Int(0), args.Error(1)
}

type MockFaceProvider struct {
	mock.Mock
}

func (m *MockFaceProvider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.DetectedFace), args.Error(1)
}

func (m *MockFaceProvider) ExtractEmbedding(ctx context.Context, image []byte) ([]float64, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

// staticLoader serve a galeria fixa para o cache nos testes
type staticLoader struct {
	gallery map[string][][]float64
	err     error
}

func (l *staticLoader) LoadGallery(ctx context.Context) (map[string][][]float64, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.gallery, nil
}

// recordingSink captura os eventos publicados
type recordingSink struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Type string
	Data interface{}
}

func (s *recordingSink) Publish(ctx context.Context, eventType string, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, publishedEvent{Type: eventType, Data: data})
}

func (s *recordingSink) all() []publishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publishedEvent(nil), s.events...)
}

var _ event.Sink = (*recordingSink)(nil)

func activeSession(id uuid.UUID, startedAt time.Time) *domain.AttendanceSession {
	return &domain.AttendanceSession{
		ID:               id,
		ClassID:          "turma-101",
		State:            domain.SessionActive,
		StartedAt:        startedAt,
		WindowMinutes:    20,
		MaxMinutes:       120,
		LateAfterMinutes: 10,
	}
}

func TestRecognitionService_Recognize(t *testing.T) {
	sessionID := uuid.New()
	baseTime := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	frame := make([]byte, 5000)

	// "alice" está a distância 0 do probe unitário, "bob" longe
	probe := matcher.Normalize([]float64{1, 0, 0})
	galleryData := map[string][][]float64{
		"alice": {matcher.Normalize([]float64{1, 0, 0})},
		"bob":   {matcher.Normalize([]float64{0, 1, 0})},
	}

	oneFace := []provider.DetectedFace{{Confidence: 0.99, QualityScore: 0.95}}

	tests := []struct {
		name        string
		now         time.Time
		setupMocks  func(*MockSessionRepository, *MockAttendanceRepository, *MockFaceProvider)
		galleryData map[string][][]float64
		wantOutcome domain.Outcome
		wantStudent string
		wantStatus  domain.AttendanceStatus
		wantErr     bool
		wantEvents  int
	}{
		{
			name: "marks present inside grace period",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
				ar.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
					return r.StudentID == "alice" &&
						r.Status == domain.StatusPresent &&
						r.Method == domain.MethodFaceRecognition &&
						r.Confidence != nil
				})).Return(nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeMarked,
			wantStudent: "alice",
			wantStatus:  domain.StatusPresent,
			wantEvents:  1,
		},
		{
			name: "marks late after grace period",
			now:  baseTime.Add(15 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
				ar.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
					return r.Status == domain.StatusLate
				})).Return(nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeMarked,
			wantStudent: "alice",
			wantStatus:  domain.StatusLate,
			wantEvents:  1,
		},
		{
			name: "frame exactly at window boundary is accepted",
			now:  baseTime.Add(20 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
				ar.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeMarked,
			wantStudent: "alice",
			wantStatus:  domain.StatusLate,
			wantEvents:  1,
		},
		{
			name: "window expired",
			now:  baseTime.Add(20*time.Minute + time.Second),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeWindowExpired,
		},
		{
			name: "closed session",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				session := activeSession(sessionID, baseTime)
				session.State = domain.SessionCompleted
				sr.On("GetByID", mock.Anything, sessionID).Return(session, nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeSessionClosed,
		},
		{
			name: "unknown session",
			now:  baseTime,
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(nil, domain.ErrSessionNotFound)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeSessionClosed,
		},
		{
			name: "no face in frame",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return([]provider.DetectedFace{}, nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeNoFace,
		},
		{
			name: "multiple faces in frame",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return([]provider.DetectedFace{
					{Confidence: 0.99}, {Confidence: 0.97},
				}, nil)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeMultipleFaces,
		},
		{
			name: "empty gallery is not recognized",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
			},
			galleryData: map[string][][]float64{},
			wantOutcome: domain.OutcomeNotRecognized,
		},
		{
			name: "below threshold is not recognized",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
			},
			// only a distant identity enrolled
			galleryData: map[string][][]float64{
				"bob": {matcher.Normalize([]float64{0, 1, 0})},
			},
			wantOutcome: domain.OutcomeNotRecognized,
		},
		{
			name: "already marked is a no-op",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(probe, nil)
				ar.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAttendanceExists)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeAlreadyMarked,
			wantStudent: "alice",
		},
		{
			name: "extract reports no face",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, frame).Return(nil, domain.ErrNoFaceDetected)
			},
			galleryData: galleryData,
			wantOutcome: domain.OutcomeNoFace,
		},
		{
			name: "provider infrastructure error propagates",
			now:  baseTime.Add(5 * time.Minute),
			setupMocks: func(sr *MockSessionRepository, ar *MockAttendanceRepository, fp *MockFaceProvider) {
				sr.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
				fp.On("DetectFaces", mock.Anything, frame).Return(nil, errors.New("provider unavailable"))
			},
			galleryData: galleryData,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionRepo := new(MockSessionRepository)
			attendanceRepo := new(MockAttendanceRepository)
			faceProvider := new(MockFaceProvider)
			sink := &recordingSink{}

			tt.setupMocks(sessionRepo, attendanceRepo, faceProvider)

			cache := gallery.NewCache(&staticLoader{gallery: tt.galleryData})
			svc := NewRecognitionService(sessionRepo, attendanceRepo, faceProvider, cache, sink, 0.6).
				WithClock(func() time.Time { return tt.now })

			result, err := svc.Recognize(context.Background(), sessionID, frame)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			if tt.wantStudent != "" {
				assert.Equal(t, tt.wantStudent, result.StudentID)
			}
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, result.Status)
			}

			assert.Len(t, sink.all(), tt.wantEvents)

			sessionRepo.AssertExpectations(t)
			attendanceRepo.AssertExpectations(t)
			faceProvider.AssertExpectations(t)
		})
	}
}

func TestRecognitionService_ThresholdBoundary(t *testing.T) {
	sessionID := uuid.New()
	baseTime := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	frame := make([]byte, 5000)

	// vetores unitários com distância conhecida: d = 2*sin(theta/2)

	t.Run("confidence equal to threshold is accepted", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		attendanceRepo := new(MockAttendanceRepository)
		faceProvider := new(MockFaceProvider)
		sink := &recordingSink{}

		sessionRepo.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
		faceProvider.On("DetectFaces", mock.Anything, frame).Return([]provider.DetectedFace{{Confidence: 0.99}}, nil)
		faceProvider.On("ExtractEmbedding", mock.Anything, frame).Return([]float64{1, 0}, nil)
		attendanceRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		// aluno cadastrado a distância 0.4 do probe normalizado
		theta := 2 * 0.2013579207903308 // 2*asin(0.2)
		enrolledVec := []float64{cosApprox(theta), sinApprox(theta)}
		cache := gallery.NewCache(&staticLoader{gallery: map[string][][]float64{
			"alice": {matcher.Normalize(enrolledVec)},
		}})

		svc := NewRecognitionService(sessionRepo, attendanceRepo, faceProvider, cache, sink, 0.6).
			WithClock(func() time.Time { return baseTime.Add(time.Minute) })

		result, err := svc.Recognize(context.Background(), sessionID, frame)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeMarked, result.Outcome)
		assert.InDelta(t, 0.6, result.Confidence, 0.01)
	})

	t.Run("confidence just below threshold is rejected", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		attendanceRepo := new(MockAttendanceRepository)
		faceProvider := new(MockFaceProvider)
		sink := &recordingSink{}

		sessionRepo.On("GetByID", mock.Anything, sessionID).Return(activeSession(sessionID, baseTime), nil)
		faceProvider.On("DetectFaces", mock.Anything, frame).Return([]provider.DetectedFace{{Confidence: 0.99}}, nil)
		faceProvider.On("ExtractEmbedding", mock.Anything, frame).Return([]float64{1, 0}, nil)

		// distância ~0.45 -> confidence ~0.55 < 0.6
		theta := 2 * 0.2275 // 2*asin(0.225)
		enrolledVec := []float64{cosApprox(theta), sinApprox(theta)}
		cache := gallery.NewCache(&staticLoader{gallery: map[string][][]float64{
			"alice": {matcher.Normalize(enrolledVec)},
		}})

		svc := NewRecognitionService(sessionRepo, attendanceRepo, faceProvider, cache, sink, 0.6).
			WithClock(func() time.Time { return baseTime.Add(time.Minute) })

		result, err := svc.Recognize(context.Background(), sessionID, frame)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotRecognized, result.Outcome)
		assert.Empty(t, sink.all())
	})
}

func cosApprox(x float64) float64 {
	// série de Taylor é suficiente para os ângulos pequenos dos testes
	return 1 - x*x/2 + x*x*x*x/24 - x*x*x*x*x*x/720
}

func sinApprox(x float64) float64 {
	return x - x*x*x/6 + x*x*x*x*x/120 - x*x*x*x*x*x*x/5040
}
