package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New() zerolog.Logger {
	// Cloud Logging parses the level from a "severity" field.
	zerolog.LevelFieldName = "severity"

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// ConsoleWriter gives readable logs during local development.
	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return logger.Level(zerolog.DebugLevel)
	}

	return logger.Level(zerolog.InfoLevel)
}
