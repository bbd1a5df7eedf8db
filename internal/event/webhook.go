package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

// WebhookSink entrega eventos por HTTP POST no endpoint configurado,
// assinados com HMAC-SHA256. Entregas que falham vão para a tabela
// event_queue e o worker tenta de novo com backoff.
type WebhookSink struct {
	db     repository.PgxPool
	client *http.Client
	logger *slog.Logger
	url    string
	secret string
}

func NewWebhookSink(db repository.PgxPool, logger *slog.Logger, url, secret string) *WebhookSink {
	return &WebhookSink{
		db: db,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		url:    url,
		secret: secret,
	}
}

func (s *WebhookSink) Publish(ctx context.Context, eventType string, data interface{}) {
	payload, err := json.Marshal(Payload{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal event", "type", eventType, "error", err)
		return
	}

	if err := s.deliver(ctx, eventType, payload); err != nil {
		s.logger.WarnContext(ctx, "event delivery failed, enqueueing retry",
			"type", eventType, "error", err)
		if err := s.enqueue(ctx, eventType, payload, err.Error()); err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue event", "type", eventType, "error", err)
		}
	}
}

func (s *WebhookSink) deliver(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Presenca-Signature", Sign(s.secret, payload))
	req.Header.Set("X-Presenca-Event", eventType)
	req.Header.Set("User-Agent", "Presenca-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil
}

func (s *WebhookSink) enqueue(ctx context.Context, eventType string, payload []byte, errorMsg string) error {
	query := `
		INSERT INTO event_queue (event_type, payload, next_retry_at, last_error)
		VALUES ($1, $2, NOW() + INTERVAL '1 second', $3)
	`

	_, err := s.db.Exec(ctx, query, eventType, payload, errorMsg)
	if err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}

	return nil
}
