package domain

// Outcome is the closed set of results a recognition attempt can produce.
// Every value except infrastructure errors is an expected, side-effect-free
// rejection or a successful mark; callers branch on it, they never catch it.
type Outcome string

const (
	// OutcomeMarked means a record was created for the matched student.
	OutcomeMarked Outcome = "marked"
	// OutcomeAlreadyMarked means the matched student already has a record
	// in this session; repeated frames are cheap no-ops, treated as success.
	OutcomeAlreadyMarked Outcome = "already_marked"
	// OutcomeNotRecognized means no enrolled identity cleared the
	// acceptance threshold (including an empty gallery and ambiguous ties).
	OutcomeNotRecognized Outcome = "not_recognized"
	// OutcomeNoFace means the detector found no face in the frame.
	OutcomeNoFace Outcome = "no_face"
	// OutcomeMultipleFaces means the detector found more than one face.
	OutcomeMultipleFaces Outcome = "multiple_faces"
	// OutcomeWindowExpired means the auto-recognition window is over;
	// manual marking remains available through its own path.
	OutcomeWindowExpired Outcome = "window_expired"
	// OutcomeSessionClosed means the session is terminal or does not exist.
	OutcomeSessionClosed Outcome = "session_closed"
)

// RecognitionResult is what a recognize call returns for a frame.
// StudentID, Status, Confidence and Distance are only meaningful for
// OutcomeMarked and OutcomeAlreadyMarked.
type RecognitionResult struct {
	Outcome    Outcome          `json:"outcome"`
	StudentID  string           `json:"student_id,omitempty"`
	Status     AttendanceStatus `json:"status,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	Distance   float64          `json:"distance,omitempty"`
}
