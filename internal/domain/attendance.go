package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is the status recorded for a student in a session.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// ValidAttendanceStatus reports whether the given status is one of the
// accepted values for manual marking.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// VerificationMethod indica como o registro de presença foi criado.
type VerificationMethod string

const (
	MethodFaceRecognition VerificationMethod = "face_recognition"
	MethodManual          VerificationMethod = "manual"
)

// AttendanceRecord é o registro de presença de um aluno em uma sessão.
// No máximo um registro por par (sessão, aluno); um segundo match automático
// para um aluno já marcado é no-op, nunca sobrescreve uma marcação manual.
// Confidence só existe quando o método é face_recognition.
type AttendanceRecord struct {
	ID         uuid.UUID          `json:"id"`
	SessionID  uuid.UUID          `json:"session_id"`
	StudentID  string             `json:"student_id"`
	Status     AttendanceStatus   `json:"status"`
	Method     VerificationMethod `json:"method"`
	Confidence *float64           `json:"confidence,omitempty"`
	MarkedBy   string             `json:"marked_by"`
	MarkedAt   time.Time          `json:"marked_at"`
	CreatedAt  time.Time          `json:"created_at"`
}
