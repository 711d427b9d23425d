package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

type sent struct{ app, title, message string }

func newTestManager(enabled bool, min Level, out *bytes.Buffer) (*NotificationManager, *[]sent) {
	var got []sent
	n := NewNotificationManager(enabled, "copynaut", min, hclog.New(&hclog.LoggerOptions{
		Output: out,
		Level:  hclog.Trace,
	}))
	n.notify = func(app, title, message string) error {
		got = append(got, sent{app, title, message})
		return nil
	}
	return n, &got
}

func TestNotify_FiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	n, got := newTestManager(true, LevelWarn, &out)

	n.Info("Exported", "clip.png")
	n.Warn("Skipped", "won't overwrite")
	n.Error("Failed", "bad rule")

	assert.Equal(t, []sent{
		{"copynaut", "Skipped", "won't overwrite"},
		{"copynaut", "Failed", "bad rule"},
	}, *got)
	assert.Contains(t, out.String(), "[INFO]  clip.png")
	assert.Contains(t, out.String(), "[ERROR] bad rule")
}

func TestNotify_DisabledOnlyLogs(t *testing.T) {
	var out bytes.Buffer
	n, got := newTestManager(false, LevelInfo, &out)

	n.Error("Failed", "bad rule")
	assert.Empty(t, *got)
	assert.Contains(t, out.String(), "bad rule")
}

func TestNotify_PlatformErrorIsLogged(t *testing.T) {
	var out bytes.Buffer
	n, _ := newTestManager(true, LevelInfo, &out)
	n.notify = func(string, string, string) error { return errors.New("no dbus") }

	n.Info("Exported", "clip.png")
	assert.Contains(t, out.String(), "no dbus")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel(" Warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
	assert.Equal(t, "error", LevelError.String())
}

func TestValidRuleKey(t *testing.T) {
	assert.True(t, ValidRuleKey("05_dash-es.v2"))
	assert.False(t, ValidRuleKey("has space"))
	assert.False(t, ValidRuleKey(""))
	assert.False(t, ValidRuleKey("a=b"))
}
