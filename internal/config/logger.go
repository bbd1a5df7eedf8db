package config

import (
	"log/slog"
	"os"
)

// NewLogger monta o logger padrão do serviço: JSON em produção (para
// ingestão estruturada), texto legível com origem do log em dev.
func NewLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: env == "development",
	}))
}
