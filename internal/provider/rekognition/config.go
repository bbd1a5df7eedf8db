package rekognition

// Config holds AWS Rekognition provider configuration
type Config struct {
	// Region é a região AWS onde as chamadas DetectFaces são feitas
	Region string

	// MinConfidence filtra detecções abaixo deste limiar (escala 0-100 da AWS)
	MinConfidence float32
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 80,
	}
}
