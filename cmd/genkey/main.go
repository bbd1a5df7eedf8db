package main

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// Gera a chave de API do serviço. Imprime a chave em claro uma única
// vez; configure API_KEY_HASH com o hash.
func main() {
	key, hash, err := domain.GenerateServiceKey()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("KEY=%s\nAPI_KEY_HASH=%s\n", key, hash)
}
