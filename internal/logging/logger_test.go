package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixWriter_HoldsPartialLines(t *testing.T) {
	var out bytes.Buffer
	pw := NewPrefixWriter("> ", &out)

	n, err := pw.Write([]byte("first\nsec"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "> first\n", out.String())

	_, err = pw.Write([]byte("ond\nthird\n"))
	require.NoError(t, err)
	assert.Equal(t, "> first\n> second\n> third\n", out.String())
}

func TestNewLogger_Text(t *testing.T) {
	t.Setenv(EnvJSON, "")
	var out bytes.Buffer
	log := NewLogger("copynaut", "info", &out)

	log.Debug("hidden")
	log.Info("exported clipping", "path", "/tmp/a.png")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], linePrefix))
	assert.Contains(t, lines[0], "copynaut: exported clipping")
	assert.Contains(t, lines[0], "path=/tmp/a.png")
}

func TestNewLogger_JSON(t *testing.T) {
	t.Setenv(EnvJSON, "1")
	var out bytes.Buffer
	NewLogger("copynaut", "debug", &out).Debug("next clipping", "buffer", "b1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "next clipping", entry["@message"])
	assert.Equal(t, "b1", entry["buffer"])
	assert.Equal(t, "copynaut", entry["@module"])
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, "warn", LevelFromEnv())
	t.Setenv(EnvLevel, "trace")
	assert.Equal(t, "trace", LevelFromEnv())
}
