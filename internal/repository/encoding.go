package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type EncodingRepository struct {
	pool PgxPool
}

func NewEncodingRepository(pool PgxPool) *EncodingRepository {
	return &EncodingRepository{pool: pool}
}

// Add insere um novo encoding. Um aluno pode ter vários encodings; o
// matcher usa o melhor de todos na comparação.
func (r *EncodingRepository) Add(ctx context.Context, encoding *domain.FaceEncoding) error {
	query := `
		INSERT INTO face_encodings (id, student_id, embedding, source_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if encoding.ID == uuid.Nil {
		encoding.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		encoding.ID,
		encoding.StudentID,
		toVector(encoding.Embedding),
		encoding.SourceImage,
	).Scan(&encoding.CreatedAt, &encoding.UpdatedAt)

	if err != nil {
		return fmt.Errorf("add encoding: %w", err)
	}

	return nil
}

// RemoveAllByStudent apaga todos os encodings do aluno e retorna quantos
// foram removidos. A operação é idempotente: aluno sem encodings
// retorna zero, não erro.
func (r *EncodingRepository) RemoveAllByStudent(ctx context.Context, studentID string) (int, error) {
	query := `
		DELETE FROM face_encodings
		WHERE student_id = $1
	`

	result, err := r.pool.Exec(ctx, query, studentID)
	if err != nil {
		return 0, fmt.Errorf("remove encodings: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// LoadGallery carrega todos os encodings agrupados por aluno
func (r *EncodingRepository) LoadGallery(ctx context.Context) (map[string][][]float64, error) {
	query := `
		SELECT student_id, embedding
		FROM face_encodings
		ORDER BY student_id, created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}
	defer rows.Close()

	gallery := make(map[string][][]float64)
	for rows.Next() {
		var studentID string
		var embedding pgvector.Vector

		if err := rows.Scan(&studentID, &embedding); err != nil {
			return nil, fmt.Errorf("scan encoding: %w", err)
		}

		gallery[studentID] = append(gallery[studentID], fromVector(embedding))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery: %w", err)
	}

	return gallery, nil
}

// CountStudents retorna quantos alunos distintos têm encodings
func (r *EncodingRepository) CountStudents(ctx context.Context) (int, error) {
	query := `SELECT COUNT(DISTINCT student_id) FROM face_encodings`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}

	return count, nil
}

func toVector(embedding []float64) pgvector.Vector {
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	return pgvector.NewVector(floats)
}

func fromVector(vec pgvector.Vector) []float64 {
	slice := vec.Slice()
	embedding := make([]float64, len(slice))
	for i, v := range slice {
		embedding[i] = float64(v)
	}
	return embedding
}
