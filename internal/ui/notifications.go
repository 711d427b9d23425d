// Package ui shows desktop notifications and dialogs.
package ui

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Level orders notifications by importance.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

// ParseLevel maps "info", "warn" and "error" to a level; anything else is
// info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// NotificationManager sends desktop notifications at or above a minimum
// level. Every notification is also logged, so a disabled manager still
// leaves a record.
type NotificationManager struct {
	enabled  bool
	appName  string
	minLevel Level
	logger   hclog.Logger
	notify   func(appName, title, message string) error
}

// NewNotificationManager creates a manager. With enabled false it only logs.
func NewNotificationManager(enabled bool, appName string, minLevel Level, logger hclog.Logger) *NotificationManager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &NotificationManager{
		enabled:  enabled,
		appName:  appName,
		minLevel: minLevel,
		logger:   logger,
		notify:   platformNotify,
	}
}

// Notify logs the message and, if enabled and important enough, shows it.
func (n *NotificationManager) Notify(level Level, title, message string) {
	switch level {
	case LevelError:
		n.logger.Error(message, "title", title)
	case LevelWarn:
		n.logger.Warn(message, "title", title)
	default:
		n.logger.Info(message, "title", title)
	}
	if !n.enabled || level < n.minLevel {
		return
	}
	if err := n.notify(n.appName, title, message); err != nil {
		n.logger.Debug("desktop notification failed", "error", err)
	}
}

func (n *NotificationManager) Info(title, message string)  { n.Notify(LevelInfo, title, message) }
func (n *NotificationManager) Warn(title, message string)  { n.Notify(LevelWarn, title, message) }
func (n *NotificationManager) Error(title, message string) { n.Notify(LevelError, title, message) }
