package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/event"
)

type SessionSweeperInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AttendanceSession, error)
	EndExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// AutoEndWorker varre periodicamente as sessões ativas e encerra as que
// passaram da duração máxima. A transição fica registrada com
// auto_ended e end_reason max_duration.
type AutoEndWorker struct {
	sessions SessionSweeperInterface
	events   event.Sink
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

func NewAutoEndWorker(sessions SessionSweeperInterface, events event.Sink, logger *slog.Logger) *AutoEndWorker {
	return &AutoEndWorker{
		sessions: sessions,
		events:   events,
		logger:   logger,
		interval: time.Minute,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval troca o período da varredura (útil em testes)
func (w *AutoEndWorker) WithInterval(interval time.Duration) *AutoEndWorker {
	w.interval = interval
	return w
}

// WithClock troca a fonte de tempo (útil em testes)
func (w *AutoEndWorker) WithClock(now func() time.Time) *AutoEndWorker {
	w.now = now
	return w
}

func (w *AutoEndWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("session auto-end worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session auto-end worker stopped")
			return
		case <-w.stopCh:
			w.logger.Info("session auto-end worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("failed to sweep expired sessions", "error", err)
			}
		}
	}
}

func (w *AutoEndWorker) Stop() {
	close(w.stopCh)
}

func (w *AutoEndWorker) sweep(ctx context.Context) error {
	now := w.now()

	ids, err := w.sessions.EndExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("end expired sessions: %w", err)
	}

	for _, id := range ids {
		session, err := w.sessions.GetByID(ctx, id)
		if err != nil {
			w.logger.Error("failed to load auto-ended session", "session_id", id, "error", err)
			continue
		}

		w.logger.Info("session auto-ended",
			"session_id", id,
			"class_id", session.ClassID,
			"started_at", session.StartedAt,
		)

		w.events.Publish(ctx, event.TypeSessionEnded, event.SessionEnded{
			SessionID: session.ID,
			ClassID:   session.ClassID,
			State:     session.State,
			Reason:    session.EndReason,
			AutoEnded: true,
			EndedAt:   now,
		})
	}

	return nil
}
