package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create insere o registro de presença. A constraint UNIQUE
// (session_id, student_id) é a garantia de idempotência: a segunda
// marcação do mesmo aluno na mesma sessão vira ErrAttendanceExists.
func (r *AttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records
			(id, session_id, student_id, status, method, confidence, marked_by, marked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.SessionID,
		record.StudentID,
		record.Status,
		record.Method,
		record.Confidence,
		record.MarkedBy,
		record.MarkedAt,
	).Scan(&record.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAttendanceExists
		}
		return fmt.Errorf("create attendance record: %w", err)
	}

	return nil
}

func (r *AttendanceRepository) Find(ctx context.Context, sessionID uuid.UUID, studentID string) (*domain.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, student_id, status, method, confidence, marked_by, marked_at, created_at
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`

	var record domain.AttendanceRecord
	err := r.pool.QueryRow(ctx, query, sessionID, studentID).Scan(
		&record.ID,
		&record.SessionID,
		&record.StudentID,
		&record.Status,
		&record.Method,
		&record.Confidence,
		&record.MarkedBy,
		&record.MarkedAt,
		&record.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAttendanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance record: %w", err)
	}

	return &record, nil
}

func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, student_id, status, method, confidence, marked_by, marked_at, created_at
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY marked_at ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var record domain.AttendanceRecord
		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.StudentID,
			&record.Status,
			&record.Method,
			&record.Confidence,
			&record.MarkedBy,
			&record.MarkedAt,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}

	return records, nil
}
