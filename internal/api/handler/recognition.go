package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// RecognitionService interface for the service
type RecognitionService interface {
	Recognize(ctx context.Context, sessionID uuid.UUID, imageBytes []byte) (*domain.RecognitionResult, error)
}

// RecognitionHandler handles per-frame recognition requests
type RecognitionHandler struct {
	service RecognitionService
	logger  *slog.Logger
}

func NewRecognitionHandler(service RecognitionService, logger *slog.Logger) *RecognitionHandler {
	return &RecognitionHandler{
		service: service,
		logger:  logger,
	}
}

// Recognize POST /v1/sessions/:id/recognize - process one camera frame.
// Todo outcome é resposta 200: frames rejeitados (sem face, fora da
// janela, não reconhecido) são parte do fluxo normal, não erros.
func (h *RecognitionHandler) Recognize(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("recognize frame: %w", err)
	}

	result, err := h.service.Recognize(c.Context(), sessionID, imageBytes)
	if err != nil {
		return err
	}

	if result.Outcome == domain.OutcomeMarked {
		h.logger.Info("attendance marked by recognition",
			"session_id", sessionID,
			"student_id", result.StudentID,
			"status", result.Status,
			"confidence", result.Confidence,
		)
	}

	return c.JSON(result)
}
