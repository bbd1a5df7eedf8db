package event

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign assina o payload com HMAC-SHA256 no formato "sha256=<hex>",
// enviado no header X-Presenca-Signature de cada webhook.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify confere a assinatura em tempo constante. É o que o receptor
// do webhook deve fazer do lado dele.
func Verify(secret string, payload []byte, signature string) bool {
	want := Sign(secret, payload)
	return hmac.Equal([]byte(signature), []byte(want))
}
