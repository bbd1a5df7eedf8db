package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type SessionRepository struct {
	pool PgxPool
}

func NewSessionRepository(pool PgxPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.AttendanceSession) error {
	query := `
		INSERT INTO attendance_sessions
			(id, class_id, state, started_at, window_minutes, max_minutes, late_after_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.ClassID,
		session.State,
		session.StartedAt,
		session.WindowMinutes,
		session.MaxMinutes,
		session.LateAfterMinutes,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error) {
	query := `
		SELECT id, class_id, state, started_at, ended_at, window_minutes, max_minutes,
		       late_after_minutes, auto_ended, end_reason, created_at, updated_at
		FROM attendance_sessions
		WHERE id = $1
	`

	var session domain.AttendanceSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.ClassID,
		&session.State,
		&session.StartedAt,
		&session.EndedAt,
		&session.WindowMinutes,
		&session.MaxMinutes,
		&session.LateAfterMinutes,
		&session.AutoEnded,
		&session.EndReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

// End transiciona a sessão para um estado terminal. O guard
// state = 'active' garante que sessões já encerradas nunca reabrem,
// mesmo com chamadas concorrentes.
func (r *SessionRepository) End(ctx context.Context, id uuid.UUID, state domain.SessionState, reason string, endedAt time.Time, autoEnded bool) error {
	query := `
		UPDATE attendance_sessions
		SET state = $1,
		    end_reason = $2,
		    ended_at = $3,
		    auto_ended = $4,
		    updated_at = NOW()
		WHERE id = $5 AND state = 'active'
	`

	result, err := r.pool.Exec(ctx, query, state, reason, endedAt, autoEnded, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}

	if result.RowsAffected() == 0 {
		// ou a sessão não existe, ou já estava encerrada
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrSessionClosed
	}

	return nil
}

// EndExpired encerra todas as sessões ativas que passaram da duração
// máxima e retorna os ids afetados. Usado pelo worker de auto-end.
func (r *SessionRepository) EndExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE attendance_sessions
		SET state = 'completed',
		    end_reason = 'max_duration',
		    ended_at = $1,
		    auto_ended = true,
		    updated_at = NOW()
		WHERE state = 'active'
		  AND started_at + (max_minutes * INTERVAL '1 minute') <= $1
		RETURNING id
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("end expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}

	return ids, nil
}
