package domain

import (
	"time"

	"github.com/google/uuid"
)

// FaceEncoding representa um embedding facial cadastrado para um aluno.
// Um aluno pode ter várias encodings (ângulos diferentes); cada encoding é
// imutável depois de gravada — substituição é delete + add.
type FaceEncoding struct {
	ID          uuid.UUID `json:"id"`
	StudentID   string    `json:"student_id"`
	Embedding   []float64 `json:"-"`
	SourceImage string    `json:"source_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dimension returns the embedding dimensionality of this encoding.
func (e *FaceEncoding) Dimension() int {
	return len(e.Embedding)
}
