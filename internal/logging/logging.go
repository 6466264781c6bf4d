package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"btcreport/internal/config"
)

// New builds the process logger. Format "console" renders human-readable
// lines on stderr; anything else emits JSON. Logs go to stderr so stdout
// stays clean for the table and JSON subcommand output.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
