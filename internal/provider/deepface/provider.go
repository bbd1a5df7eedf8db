package deepface

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Provider implementa provider.FaceProvider usando o serviço DeepFace
// (self-hosted). Embeddings vêm do modelo configurado (Facenet512 por
// padrão) e já chegam com dimensão fixa por modelo.
type Provider struct {
	client *Client
}

// New cria um Provider apontando para a URL do serviço DeepFace
func New(baseURL string) *Provider {
	config := DefaultConfig()
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Provider{client: NewClient(config)}
}

// NewWithClient permite injetar um client customizado (útil em testes)
func NewWithClient(client *Client) *Provider {
	return &Provider{client: client}
}

// DetectFaces detecta faces na imagem via POST /analyze.
// Retorna slice vazio quando o frame não tem nenhuma face.
func (p *Provider) DetectFaces(ctx context.Context, img []byte) ([]provider.DetectedFace, error) {
	width, height, err := imageDimensions(img)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	resp, err := p.client.Analyze(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("deepface analyze: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, r := range resp.Results {
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(r.Region.X) / float64(width),
				Y:      float64(r.Region.Y) / float64(height),
				Width:  float64(r.Region.W) / float64(width),
				Height: float64(r.Region.H) / float64(height),
			},
			Confidence:   r.FaceConfidence,
			QualityScore: r.FaceConfidence,
		})
	}

	return faces, nil
}

// ExtractEmbedding gera o embedding da face via POST /represent.
// A imagem deve conter exatamente uma face; o chamador valida a
// contagem antes com DetectFaces.
func (p *Provider) ExtractEmbedding(ctx context.Context, img []byte) ([]float64, error) {
	resp, err := p.client.Represent(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("deepface represent: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if len(resp.Results) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	embedding := resp.Results[0].Embedding
	if len(embedding) == 0 {
		return nil, ErrNoFaceInResponse
	}

	return embedding, nil
}

// imageDimensions lê apenas o header da imagem para normalizar as
// bounding boxes em coordenadas relativas
func imageDimensions(img []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, ErrInvalidImageFormat
	}
	return cfg.Width, cfg.Height, nil
}

var _ provider.FaceProvider = (*Provider)(nil)
