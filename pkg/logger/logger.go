package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It starts disabled so that any code
// running before InitLogger (flag parsing, config loading) never panics
// on a nil writer, it just drops the line.
var Log zerolog.Logger = zerolog.New(nil).Level(zerolog.Disabled)

// InitLogger configures the global logger from a level name. levelName
// plays the role the spec's environment variable plays in the source this
// was distilled from: empty or unrecognised values fall back to "info".
func InitLogger(levelName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro

	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000000",
	}

	Log = zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Get returns the global logger, for callers that want a *zerolog.Logger
// rather than the package-level value.
func Get() *zerolog.Logger {
	return &Log
}
