package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
)

const (
	apiKeyPrefix = "presenca_"
	apiKeyLength = 32
	base62Chars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// GenerateServiceKey gera a chave de API do serviço.
// Retorna: (plainKey, hash). A chave em claro só aparece uma vez, na geração;
// o serviço guarda apenas o hash (API_KEY_HASH).
// Formato: presenca_<random32>
func GenerateServiceKey() (string, string, error) {
	randomPart, err := generateSecureRandomString(apiKeyLength)
	if err != nil {
		return "", "", err
	}

	plainKey := apiKeyPrefix + randomPart
	return plainKey, HashAPIKey(plainKey), nil
}

// HashAPIKey gera o hash SHA256 de uma API key
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// IsValidKeyFormat verifica se a API key tem o formato correto
func IsValidKeyFormat(key string) bool {
	if !strings.HasPrefix(key, apiKeyPrefix) {
		return false
	}

	randomPart := strings.TrimPrefix(key, apiKeyPrefix)
	if len(randomPart) != apiKeyLength {
		return false
	}

	for _, char := range randomPart {
		if !strings.ContainsRune(base62Chars, char) {
			return false
		}
	}

	return true
}

// generateSecureRandomString gera uma string aleatória segura usando crypto/rand
func generateSecureRandomString(length int) (string, error) {
	result := make([]byte, length)
	base62Len := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}
