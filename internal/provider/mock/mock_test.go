package mock

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func validImage() []byte {
	return bytes.Repeat([]byte("fake-jpeg-data"), 100)
}

func TestDetectFaces(t *testing.T) {
	p := New()
	ctx := context.Background()

	t.Run("valid image returns single face", func(t *testing.T) {
		faces, err := p.DetectFaces(ctx, validImage())
		require.NoError(t, err)
		require.Len(t, faces, 1)
		assert.InDelta(t, 0.99, faces[0].Confidence, 0.001)
		assert.Greater(t, faces[0].BoundingBox.Width, 0.0)
	})

	t.Run("image too small", func(t *testing.T) {
		_, err := p.DetectFaces(ctx, []byte("tiny"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})
}

func TestExtractEmbedding(t *testing.T) {
	p := New()
	ctx := context.Background()

	t.Run("deterministic", func(t *testing.T) {
		img := validImage()
		a, err := p.ExtractEmbedding(ctx, img)
		require.NoError(t, err)
		b, err := p.ExtractEmbedding(ctx, img)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("dimension and normalization", func(t *testing.T) {
		emb, err := p.ExtractEmbedding(ctx, validImage())
		require.NoError(t, err)
		require.Len(t, emb, embeddingDimension)

		norm := 0.0
		for _, v := range emb {
			norm += v * v
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	})

	t.Run("different images differ", func(t *testing.T) {
		a, err := p.ExtractEmbedding(ctx, validImage())
		require.NoError(t, err)
		b, err := p.ExtractEmbedding(ctx, bytes.Repeat([]byte("other-image-data"), 100))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("image too small", func(t *testing.T) {
		_, err := p.ExtractEmbedding(ctx, []byte("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})
}
