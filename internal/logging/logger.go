// Package logging builds the hclog loggers used across copynaut.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by the logger.
const (
	EnvLevel = "COPYNAUT_LOG_LEVEL"
	EnvJSON  = "COPYNAUT_JSON_LOG"
)

const linePrefix = "✂ "

// NewLogger creates a logger writing to output, or stderr when output is nil.
// Text output gets a marker on every line; COPYNAUT_JSON_LOG=1 switches to JSON.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSON) == "1"
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// LevelFromEnv returns the configured log level, "warn" when unset.
func LevelFromEnv() string {
	level := strings.TrimSpace(os.Getenv(EnvLevel))
	if level == "" {
		return "warn"
	}
	return level
}
