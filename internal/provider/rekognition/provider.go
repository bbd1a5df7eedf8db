package rekognition

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
)

// detectFacesAPI é o subconjunto do client Rekognition que o provider usa.
// Interface do lado do consumidor para permitir mock nos testes.
type detectFacesAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Provider implementa provider.FaceProvider usando AWS Rekognition como
// detector. A API DetectFaces não expõe o embedding interno da AWS, então
// o embedding é derivado da geometria dos landmarks faciais: cada ponto
// em coordenadas relativas à bounding box, ordenados pelo tipo do
// landmark para garantir determinismo entre chamadas.
type Provider struct {
	api    detectFacesAPI
	config Config
}

// New cria um Provider usando a cadeia padrão de credenciais AWS
func New(ctx context.Context, cfg Config) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		api:    rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// NewWithAPI permite injetar um client customizado (útil em testes)
func NewWithAPI(api detectFacesAPI, cfg Config) *Provider {
	return &Provider{api: api, config: cfg}
}

// DetectFaces detecta faces na imagem. Bounding boxes da AWS já chegam
// em coordenadas relativas; confidence vem na escala 0-100 e é
// convertido para 0-1.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	details, err := p.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	faces := make([]provider.DetectedFace, 0, len(details))
	for _, d := range details {
		if d.Confidence != nil && *d.Confidence < p.config.MinConfidence {
			continue
		}

		face := provider.DetectedFace{
			Confidence:   float64(aws.ToFloat32(d.Confidence)) / 100,
			QualityScore: qualityScore(d.Quality),
		}
		if d.BoundingBox != nil {
			face.BoundingBox = provider.BoundingBox{
				X:      float64(aws.ToFloat32(d.BoundingBox.Left)),
				Y:      float64(aws.ToFloat32(d.BoundingBox.Top)),
				Width:  float64(aws.ToFloat32(d.BoundingBox.Width)),
				Height: float64(aws.ToFloat32(d.BoundingBox.Height)),
			}
		}
		faces = append(faces, face)
	}

	return faces, nil
}

// ExtractEmbedding deriva o embedding geométrico da única face da
// imagem. O chamador valida a contagem de faces antes com DetectFaces.
func (p *Provider) ExtractEmbedding(ctx context.Context, image []byte) ([]float64, error) {
	details, err := p.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	if len(details) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if len(details) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	return landmarkEmbedding(details[0])
}

func (p *Provider) detect(ctx context.Context, image []byte) ([]types.FaceDetail, error) {
	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := p.api.DetectFaces(ctx, input)
	if err != nil {
		return nil, parseAWSError(err)
	}

	return output.FaceDetails, nil
}

// landmarkEmbedding monta o vetor (x, y) de cada landmark em coordenadas
// relativas à bounding box da face, o que dá invariância a translação e
// escala. A ordenação por tipo de landmark fixa a ordem das dimensões.
func landmarkEmbedding(d types.FaceDetail) ([]float64, error) {
	if d.BoundingBox == nil || aws.ToFloat32(d.BoundingBox.Width) <= 0 || aws.ToFloat32(d.BoundingBox.Height) <= 0 {
		return nil, ErrMissingBoundingBox
	}
	if len(d.Landmarks) == 0 {
		return nil, ErrMissingLandmarks
	}

	landmarks := make([]types.Landmark, len(d.Landmarks))
	copy(landmarks, d.Landmarks)
	sort.Slice(landmarks, func(i, j int) bool {
		return string(landmarks[i].Type) < string(landmarks[j].Type)
	})

	left := float64(aws.ToFloat32(d.BoundingBox.Left))
	top := float64(aws.ToFloat32(d.BoundingBox.Top))
	width := float64(aws.ToFloat32(d.BoundingBox.Width))
	height := float64(aws.ToFloat32(d.BoundingBox.Height))

	embedding := make([]float64, 0, len(landmarks)*2)
	for _, lm := range landmarks {
		x := (float64(aws.ToFloat32(lm.X)) - left) / width
		y := (float64(aws.ToFloat32(lm.Y)) - top) / height
		embedding = append(embedding, x, y)
	}

	return embedding, nil
}

func qualityScore(q *types.ImageQuality) float64 {
	if q == nil {
		return 0
	}
	return (float64(aws.ToFloat32(q.Sharpness)) + float64(aws.ToFloat32(q.Brightness))) / 200
}

// parseAWSError mapeia erros da API AWS para os erros do domínio
func parseAWSError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeInvalidParameter, errCodeInvalidImageFormat, errCodeImageTooLarge:
			return domain.ErrInvalidImage.WithError(err)
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	}
	return fmt.Errorf("rekognition detect faces: %w", err)
}

var _ provider.FaceProvider = (*Provider)(nil)
