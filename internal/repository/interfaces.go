package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// PgxPool é o subconjunto de pgxpool.Pool que os repositórios usam.
// Permite trocar o pool real por pgxmock nos testes.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EncodingRepositoryInterface defines operations for face encoding data access
type EncodingRepositoryInterface interface {
	Add(ctx context.Context, encoding *domain.FaceEncoding) error
	RemoveAllByStudent(ctx context.Context, studentID string) (int, error)
	LoadGallery(ctx context.Context) (map[string][][]float64, error)
	CountStudents(ctx context.Context) (int, error)
}

// SessionRepositoryInterface defines operations for attendance session data access
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.AttendanceSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error)
	End(ctx context.Context, id uuid.UUID, state domain.SessionState, reason string, endedAt time.Time, autoEnded bool) error
	EndExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// AttendanceRepositoryInterface defines operations for attendance record data access
type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	Find(ctx context.Context, sessionID uuid.UUID, studentID string) (*domain.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error)
}
