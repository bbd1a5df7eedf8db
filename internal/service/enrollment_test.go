package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

func TestEnrollmentService_Enroll(t *testing.T) {
	image := make([]byte, 5000)
	oneFace := []provider.DetectedFace{{Confidence: 0.99, QualityScore: 0.9}}

	tests := []struct {
		name        string
		setupMocks  func(*MockEncodingRepository, *MockFaceProvider)
		galleryData map[string][][]float64
		wantErr     error
	}{
		{
			name: "successful enrollment",
			setupMocks: func(er *MockEncodingRepository, fp *MockFaceProvider) {
				fp.On("DetectFaces", mock.Anything, image).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, image).Return([]float64{3, 4, 0}, nil)
				er.On("Add", mock.Anything, mock.MatchedBy(func(e *domain.FaceEncoding) bool {
					return e.StudentID == "alice" && len(e.Embedding) == 3
				})).Return(nil)
			},
			galleryData: map[string][][]float64{},
		},
		{
			name: "no face in image",
			setupMocks: func(er *MockEncodingRepository, fp *MockFaceProvider) {
				fp.On("DetectFaces", mock.Anything, image).Return([]provider.DetectedFace{}, nil)
			},
			galleryData: map[string][][]float64{},
			wantErr:     domain.ErrNoFaceDetected,
		},
		{
			name: "multiple faces in image",
			setupMocks: func(er *MockEncodingRepository, fp *MockFaceProvider) {
				fp.On("DetectFaces", mock.Anything, image).Return([]provider.DetectedFace{
					{Confidence: 0.99}, {Confidence: 0.95},
				}, nil)
			},
			galleryData: map[string][][]float64{},
			wantErr:     domain.ErrMultipleFaces,
		},
		{
			name: "dimension mismatch against established gallery",
			setupMocks: func(er *MockEncodingRepository, fp *MockFaceProvider) {
				fp.On("DetectFaces", mock.Anything, image).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, image).Return([]float64{1, 0}, nil)
			},
			galleryData: map[string][][]float64{
				"bob": {{1, 0, 0}},
			},
			wantErr: domain.ErrDimensionMismatch,
		},
		{
			name: "repository failure propagates",
			setupMocks: func(er *MockEncodingRepository, fp *MockFaceProvider) {
				fp.On("DetectFaces", mock.Anything, image).Return(oneFace, nil)
				fp.On("ExtractEmbedding", mock.Anything, image).Return([]float64{1, 0, 0}, nil)
				er.On("Add", mock.Anything, mock.Anything).Return(errors.New("connection lost"))
			},
			galleryData: map[string][][]float64{},
			wantErr:     errors.New("connection lost"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encodingRepo := new(MockEncodingRepository)
			faceProvider := new(MockFaceProvider)
			tt.setupMocks(encodingRepo, faceProvider)

			cache := gallery.NewCache(&staticLoader{gallery: tt.galleryData})
			svc := NewEnrollmentService(encodingRepo, faceProvider, cache)

			encoding, err := svc.Enroll(context.Background(), "alice", image, "photo.jpg")

			if tt.wantErr != nil {
				require.Error(t, err)
				var appErr *domain.AppError
				if errors.As(tt.wantErr, &appErr) {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, encoding)
			assert.Equal(t, "alice", encoding.StudentID)

			// embedding armazenado deve ser unitário
			var norm float64
			for _, v := range encoding.Embedding {
				norm += v * v
			}
			assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

			encodingRepo.AssertExpectations(t)
			faceProvider.AssertExpectations(t)
		})
	}
}

func TestEnrollmentService_EnrollInvalidatesGallery(t *testing.T) {
	image := make([]byte, 5000)

	loader := &staticLoader{gallery: map[string][][]float64{}}
	cache := gallery.NewCache(loader)

	// popula o cache antes do cadastro
	snapshot, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	encodingRepo := new(MockEncodingRepository)
	faceProvider := new(MockFaceProvider)
	faceProvider.On("DetectFaces", mock.Anything, image).Return([]provider.DetectedFace{{Confidence: 0.99}}, nil)
	faceProvider.On("ExtractEmbedding", mock.Anything, image).Return([]float64{1, 0, 0}, nil)
	encodingRepo.On("Add", mock.Anything, mock.Anything).Return(nil)

	svc := NewEnrollmentService(encodingRepo, faceProvider, cache)

	_, err = svc.Enroll(context.Background(), "alice", image, "")
	require.NoError(t, err)

	// após invalidar, o snapshot seguinte relê do loader
	loader.gallery = map[string][][]float64{"alice": {{1, 0, 0}}}
	snapshot, err = cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snapshot, "alice")
}

func TestEnrollmentService_Revoke(t *testing.T) {
	t.Run("removes all encodings", func(t *testing.T) {
		encodingRepo := new(MockEncodingRepository)
		encodingRepo.On("RemoveAllByStudent", mock.Anything, "alice").Return(3, nil)

		cache := gallery.NewCache(&staticLoader{gallery: map[string][][]float64{}})
		svc := NewEnrollmentService(encodingRepo, new(MockFaceProvider), cache)

		removed, err := svc.Revoke(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		encodingRepo.AssertExpectations(t)
	})

	t.Run("unknown student is a no-op", func(t *testing.T) {
		encodingRepo := new(MockEncodingRepository)
		encodingRepo.On("RemoveAllByStudent", mock.Anything, "ghost").Return(0, nil)

		cache := gallery.NewCache(&staticLoader{gallery: map[string][][]float64{}})
		svc := NewEnrollmentService(encodingRepo, new(MockFaceProvider), cache)

		removed, err := svc.Revoke(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})
}
