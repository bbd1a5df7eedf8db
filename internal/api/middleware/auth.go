package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// Auth valida a chave de API do serviço. A chave viaja como Bearer
// token; o serviço guarda apenas o hash SHA-256 (API_KEY_HASH).
func Auth(apiKeyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractBearerToken(c)
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		// comparação em tempo constante; nunca revela se a chave
		// existe ou só está errada
		hash := domain.HashAPIKey(apiKey)
		if subtle.ConstantTimeCompare([]byte(hash), []byte(apiKeyHash)) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// extractBearerToken extrai o token do header Authorization
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Formato esperado: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
