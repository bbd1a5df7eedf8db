package service

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/matcher"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

type EncodingRepositoryInterface interface {
	Add(ctx context.Context, encoding *domain.FaceEncoding) error
	RemoveAllByStudent(ctx context.Context, studentID string) (int, error)
}

// EnrollmentService cadastra e revoga encodings faciais dos alunos.
// Toda escrita invalida o cache da galeria, que é recarregado na
// próxima leitura.
type EnrollmentService struct {
	encodings EncodingRepositoryInterface
	provider  provider.FaceProvider
	gallery   *gallery.Cache
}

func NewEnrollmentService(
	encodings EncodingRepositoryInterface,
	faceProvider provider.FaceProvider,
	galleryCache *gallery.Cache,
) *EnrollmentService {
	return &EnrollmentService{
		encodings: encodings,
		provider:  faceProvider,
		gallery:   galleryCache,
	}
}

// Enroll extrai o embedding da imagem e o registra para o aluno.
// A imagem precisa ter exatamente uma face, e o embedding precisa ter
// a mesma dimensão da galeria já cadastrada.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, imageBytes []byte, sourceImage string) (*domain.FaceEncoding, error) {
	detectedFaces, err := s.provider.DetectFaces(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("student %s: detect faces: %w", studentID, err)
	}

	if len(detectedFaces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	if len(detectedFaces) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	embedding, err := s.provider.ExtractEmbedding(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("student %s: extract embedding: %w", studentID, err)
	}

	embedding = matcher.Normalize(embedding)

	// dimensão é estabelecida pelo primeiro cadastro; todos os
	// seguintes precisam bater
	dim, err := s.gallery.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("student %s: gallery dimension: %w", studentID, err)
	}
	if dim > 0 && len(embedding) != dim {
		return nil, domain.ErrDimensionMismatch
	}

	encoding := &domain.FaceEncoding{
		StudentID:   studentID,
		Embedding:   embedding,
		SourceImage: sourceImage,
	}

	if err := s.encodings.Add(ctx, encoding); err != nil {
		return nil, err
	}

	s.gallery.Invalidate()

	return encoding, nil
}

// Revoke remove todos os encodings do aluno e retorna quantos eram
func (s *EnrollmentService) Revoke(ctx context.Context, studentID string) (int, error) {
	removed, err := s.encodings.RemoveAllByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}

	s.gallery.Invalidate()

	return removed, nil
}
