package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/nikolayk812/oja-market/internal/config"
	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" writes human readable
// lines, anything else JSON.
func New(cfg config.Log, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("zerolog.ParseLevel: %w", err)
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "storefront").Logger(), nil
}
