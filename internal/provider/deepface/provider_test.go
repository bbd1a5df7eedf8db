package deepface

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// testImage gera um PNG 100x100 válido em memória
func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := DefaultConfig()
	config.BaseURL = srv.URL
	config.RetryCount = 0
	return NewWithClient(NewClient(config))
}

func TestDetectFaces(t *testing.T) {
	t.Run("single face with normalized bounding box", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/analyze", r.URL.Path)
			_ = json.NewEncoder(w).Encode(AnalyzeResponse{
				Results: []AnalyzeResult{
					{Region: FacialArea{X: 10, Y: 20, W: 50, H: 40}, FaceConfidence: 0.98},
				},
			})
		})

		faces, err := p.DetectFaces(context.Background(), testImage(t))
		require.NoError(t, err)
		require.Len(t, faces, 1)
		assert.InDelta(t, 0.10, faces[0].BoundingBox.X, 1e-9)
		assert.InDelta(t, 0.20, faces[0].BoundingBox.Y, 1e-9)
		assert.InDelta(t, 0.50, faces[0].BoundingBox.Width, 1e-9)
		assert.InDelta(t, 0.40, faces[0].BoundingBox.Height, 1e-9)
		assert.InDelta(t, 0.98, faces[0].Confidence, 1e-9)
	})

	t.Run("empty frame returns empty slice", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(AnalyzeResponse{})
		})

		faces, err := p.DetectFaces(context.Background(), testImage(t))
		require.NoError(t, err)
		assert.Empty(t, faces)
	})

	t.Run("unparseable image", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("service should not be called")
		})

		_, err := p.DetectFaces(context.Background(), []byte("not an image"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})
}

func TestExtractEmbedding(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/represent", r.URL.Path)

			var req RepresentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Img, "base64,")

			_ = json.NewEncoder(w).Encode(RepresentResponse{
				Results: []RepresentResult{
					{Embedding: []float64{0.1, 0.2, 0.3}, FaceConfidence: 0.99},
				},
			})
		})

		emb, err := p.ExtractEmbedding(context.Background(), testImage(t))
		require.NoError(t, err)
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, emb)
	})

	t.Run("no face", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(RepresentResponse{})
		})

		_, err := p.ExtractEmbedding(context.Background(), testImage(t))
		assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
	})

	t.Run("multiple faces", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(RepresentResponse{
				Results: []RepresentResult{{Embedding: []float64{0.1}}, {Embedding: []float64{0.2}}},
			})
		})

		_, err := p.ExtractEmbedding(context.Background(), testImage(t))
		assert.ErrorIs(t, err, domain.ErrMultipleFaces)
	})

	t.Run("service unavailable after retries", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := p.ExtractEmbedding(context.Background(), testImage(t))
		assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
	})
}
