package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// SessionService interface for the service
type SessionService interface {
	Start(ctx context.Context, classID string, windowMinutes, maxMinutes, lateAfterMinutes int) (*domain.AttendanceSession, error)
	End(ctx context.Context, sessionID uuid.UUID, cancelled bool) (*domain.AttendanceSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.AttendanceSession, error)
	WindowStatus(ctx context.Context, sessionID uuid.UUID) (*domain.WindowStatus, error)
	MarkManual(ctx context.Context, sessionID uuid.UUID, studentID string, status domain.AttendanceStatus, markedBy string) (*domain.AttendanceRecord, error)
	ListAttendance(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error)
}

// SessionHandler handles attendance session requests
type SessionHandler struct {
	service SessionService
	logger  *slog.Logger
}

func NewSessionHandler(service SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// StartSessionRequest request body for session creation
type StartSessionRequest struct {
	ClassID          string `json:"class_id"`
	WindowMinutes    int    `json:"window_minutes"`
	MaxMinutes       int    `json:"max_minutes"`
	LateAfterMinutes int    `json:"late_after_minutes"`
}

// EndSessionRequest request body for ending a session
type EndSessionRequest struct {
	Cancelled bool `json:"cancelled"`
}

// MarkManualRequest request body for manual attendance marking
type MarkManualRequest struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	MarkedBy  string `json:"marked_by"`
}

// AttendanceListResponse response for the attendance listing
type AttendanceListResponse struct {
	SessionID string                    `json:"session_id"`
	Records   []domain.AttendanceRecord `json:"records"`
	Total     int                       `json:"total"`
}

// Start POST /v1/sessions - open a new attendance session
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	session, err := h.service.Start(c.Context(), strings.TrimSpace(req.ClassID), req.WindowMinutes, req.MaxMinutes, req.LateAfterMinutes)
	if err != nil {
		return err
	}

	h.logger.Info("session started",
		"session_id", session.ID,
		"class_id", session.ClassID,
		"window_minutes", session.WindowMinutes,
	)

	return c.Status(fiber.StatusCreated).JSON(session)
}

// End POST /v1/sessions/:id/end - close a session
func (h *SessionHandler) End(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	var req EndSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrValidationFailed.WithError(err)
		}
	}

	session, err := h.service.End(c.Context(), sessionID, req.Cancelled)
	if err != nil {
		return err
	}

	h.logger.Info("session ended",
		"session_id", session.ID,
		"state", session.State,
	)

	return c.JSON(session)
}

// Get GET /v1/sessions/:id - session details
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	session, err := h.service.Get(c.Context(), sessionID)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Window GET /v1/sessions/:id/window - current recognition window state
func (h *SessionHandler) Window(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	status, err := h.service.WindowStatus(c.Context(), sessionID)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// MarkManual POST /v1/sessions/:id/attendance - manual attendance marking
func (h *SessionHandler) MarkManual(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	var req MarkManualRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	record, err := h.service.MarkManual(
		c.Context(),
		sessionID,
		strings.TrimSpace(req.StudentID),
		domain.AttendanceStatus(req.Status),
		strings.TrimSpace(req.MarkedBy),
	)
	if err != nil {
		return err
	}

	h.logger.Info("attendance marked manually",
		"session_id", sessionID,
		"student_id", record.StudentID,
		"status", record.Status,
	)

	return c.Status(fiber.StatusCreated).JSON(record)
}

// ListAttendance GET /v1/sessions/:id/attendance - all records of the session
func (h *SessionHandler) ListAttendance(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	records, err := h.service.ListAttendance(c.Context(), sessionID)
	if err != nil {
		return err
	}

	if records == nil {
		records = []domain.AttendanceRecord{}
	}

	return c.JSON(AttendanceListResponse{
		SessionID: sessionID.String(),
		Records:   records,
		Total:     len(records),
	})
}

// parseSessionID extrai e valida o id da sessão da URL
func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(errors.New("invalid session id"))
	}
	return sessionID, nil
}
