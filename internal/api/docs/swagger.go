package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// EnrollResponse represents the response for a successful enrollment
type EnrollResponse struct {
	EncodingID string `json:"encoding_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StudentID  string `json:"student_id" example:"student-42"`
	CreatedAt  string `json:"created_at" example:"2026-03-10T08:00:00Z"`
}

// RevokeResponse represents the response for encoding revocation
type RevokeResponse struct {
	StudentID string `json:"student_id" example:"student-42"`
	Removed   int    `json:"removed" example:"2"`
}

// SessionResponse represents an attendance session
type SessionResponse struct {
	ID               string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClassID          string `json:"class_id" example:"turma-101"`
	State            string `json:"state" example:"active"`
	StartedAt        string `json:"started_at" example:"2026-03-10T08:00:00Z"`
	WindowMinutes    int    `json:"window_minutes" example:"20"`
	MaxMinutes       int    `json:"max_minutes" example:"120"`
	LateAfterMinutes int    `json:"late_after_minutes" example:"10"`
	AutoEnded        bool   `json:"auto_ended" example:"false"`
	EndReason        string `json:"end_reason,omitempty" example:"manual"`
}

// StartSessionRequest represents the session creation payload
type StartSessionRequest struct {
	ClassID          string `json:"class_id" example:"turma-101"`
	WindowMinutes    int    `json:"window_minutes" example:"20"`
	MaxMinutes       int    `json:"max_minutes" example:"120"`
	LateAfterMinutes int    `json:"late_after_minutes" example:"10"`
}

// EndSessionRequest represents the session end payload
type EndSessionRequest struct {
	Cancelled bool `json:"cancelled" example:"false"`
}

// WindowStatusResponse represents the recognition window state
type WindowStatusResponse struct {
	IsActive         bool   `json:"is_active" example:"true"`
	Mode             string `json:"mode" example:"auto"`
	ElapsedMinutes   int    `json:"elapsed_minutes" example:"5"`
	WindowMinutes    int    `json:"window_minutes" example:"20"`
	RemainingMinutes int    `json:"remaining_minutes" example:"15"`
}

// RecognitionResponse represents the outcome of processing one frame
type RecognitionResponse struct {
	Outcome    string  `json:"outcome" example:"marked"`
	StudentID  string  `json:"student_id,omitempty" example:"student-42"`
	Status     string  `json:"status,omitempty" example:"present"`
	Confidence float64 `json:"confidence,omitempty" example:"0.87"`
	Distance   float64 `json:"distance,omitempty" example:"0.13"`
}

// MarkManualRequest represents the manual marking payload
type MarkManualRequest struct {
	StudentID string `json:"student_id" example:"student-42"`
	Status    string `json:"status" example:"present"`
	MarkedBy  string `json:"marked_by" example:"prof-silva"`
}

// AttendanceRecordResponse represents one attendance record
type AttendanceRecordResponse struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID  string  `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	StudentID  string  `json:"student_id" example:"student-42"`
	Status     string  `json:"status" example:"present"`
	Method     string  `json:"method" example:"face_recognition"`
	Confidence float64 `json:"confidence,omitempty" example:"0.87"`
	MarkedBy   string  `json:"marked_by,omitempty" example:"prof-silva"`
	MarkedAt   string  `json:"marked_at" example:"2026-03-10T08:05:00Z"`
}

// AttendanceListResponse represents the attendance listing
type AttendanceListResponse struct {
	SessionID string                     `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Records   []AttendanceRecordResponse `json:"records"`
	Total     int                        `json:"total" example:"28"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Presenca Attendance API",
		Version:     "v1.0.0",
		Description: "Face recognition attendance pipeline: student enrollment, attendance sessions and per-frame recognition",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/enrollments - Enroll student
		endpoint.New(
			endpoint.POST,
			"/enrollments",
			endpoint.WithTags("Enrollments"),
			endpoint.WithSummary("Enroll a student face"),
			endpoint.WithDescription("Extracts a face embedding from the image and registers it for the student. A student may have multiple encodings; the image must contain exactly one face."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "201", "Student enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DIMENSION_MISMATCH", Message: "Embedding dimension does not match the gallery"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/enrollments/:student_id - Revoke student encodings
		endpoint.New(
			endpoint.DELETE,
			"/enrollments/{student_id}",
			endpoint.WithTags("Enrollments"),
			endpoint.WithSummary("Revoke all encodings of a student"),
			endpoint.WithDescription("Removes every stored face encoding for the student (LGPD compliance)"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("student_id", parameter.Path, parameter.WithDescription("Student identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RevokeResponse{}, "200", "Encodings removed (zero for students without encodings)"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions - Start session
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Start an attendance session"),
			endpoint.WithDescription("Opens a new attendance session for a class. Zero-valued window parameters fall back to the configured defaults."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(StartSessionRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session started"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_WINDOW", Message: "Window longer than max duration"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/:id/end - End session
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/end",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("End an attendance session"),
			endpoint.WithDescription("Completes or cancels the session. Ending is idempotent-safe: a second call returns a conflict."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithBody(EndSessionRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session ended"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "SESSION_CLOSED", Message: "Session already ended"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/sessions/:id - Get session
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get a session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/sessions/:id/window - Window status
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/window",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get the recognition window state"),
			endpoint.WithDescription("Recomputed on every query from the session start time; nothing is persisted for the window itself."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WindowStatusResponse{}, "200", "Window status"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/:id/recognize - Recognize frame
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/recognize",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Process one camera frame"),
			endpoint.WithDescription("Runs the full pipeline for one frame: window check, face detection, embedding extraction, gallery matching and idempotent marking. Every outcome (marked, already_marked, not_recognized, no_face, multiple_faces, window_expired, session_closed) is a 200 response."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognitionResponse{}, "200", "Frame processed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/:id/attendance - Mark manually
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Mark attendance manually"),
			endpoint.WithDescription("Manual marking is available for the whole session lifetime, even after the recognition window expires."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithBody(MarkManualRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceRecordResponse{}, "201", "Attendance marked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "SESSION_CLOSED", Message: "Session already ended"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "ATTENDANCE_ALREADY_MARKED", Message: "Student already marked"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INVALID_STATUS", Message: "Invalid attendance status"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/sessions/:id/attendance - List attendance
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance records of a session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListResponse{}, "200", "Attendance records"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
