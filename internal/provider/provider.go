package provider

import "context"

// FaceProvider define a interface para backends de detecção e codificação
// facial. O orquestrador depende só deste contrato, nunca de uma biblioteca
// concreta.
type FaceProvider interface {
	// DetectFaces detecta faces na imagem e retorna informações sobre cada uma.
	// Uma imagem sem face retorna slice vazio, não erro: frame desocupado é
	// resultado esperado e o chamador decide o outcome pela contagem.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// ExtractEmbedding extrai o embedding da única face na imagem.
	// Determinístico: para modelo fixo e imagem idêntica, a saída se repete.
	ExtractEmbedding(ctx context.Context, image []byte) ([]float64, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	QualityScore float64     `json:"quality_score"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
