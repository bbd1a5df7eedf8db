package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// EnrollmentService interface for the service
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID string, imageBytes []byte, sourceImage string) (*domain.FaceEncoding, error)
	Revoke(ctx context.Context, studentID string) (int, error)
}

// EnrollmentHandler handles face enrollment requests
type EnrollmentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

func NewEnrollmentHandler(service EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger,
	}
}

// EnrollResponse response for enroll endpoint
type EnrollResponse struct {
	EncodingID string `json:"encoding_id"`
	StudentID  string `json:"student_id"`
	CreatedAt  string `json:"created_at"`
}

// RevokeResponse response for revoke endpoint
type RevokeResponse struct {
	StudentID string `json:"student_id"`
	Removed   int    `json:"removed"`
}

// Enroll POST /v1/enrollments - register a face encoding for a student
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	// 1. Extract student_id from form
	studentID := strings.TrimSpace(c.FormValue("student_id"))
	if studentID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("student_id is required"))
	}

	// 2. Extract and validate image
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("enroll student: %w", err)
	}

	sourceImage := strings.TrimSpace(c.FormValue("source_image"))

	// 3. Call service to enroll
	encoding, err := h.service.Enroll(c.Context(), studentID, imageBytes, sourceImage)
	if err != nil {
		return err
	}

	h.logger.Info("student enrolled",
		"student_id", studentID,
		"encoding_id", encoding.ID,
	)

	// 4. Return response
	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		EncodingID: encoding.ID.String(),
		StudentID:  encoding.StudentID,
		CreatedAt:  encoding.CreatedAt.Format(time.RFC3339),
	})
}

// Revoke DELETE /v1/enrollments/:student_id - remove all encodings (LGPD)
func (h *EnrollmentHandler) Revoke(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Params("student_id"))
	if studentID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("student_id is required"))
	}

	removed, err := h.service.Revoke(c.Context(), studentID)
	if err != nil {
		return err
	}

	h.logger.Info("student encodings revoked",
		"student_id", studentID,
		"removed", removed,
	)

	return c.JSON(RevokeResponse{
		StudentID: studentID,
		Removed:   removed,
	})
}
