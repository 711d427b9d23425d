//go:build windows

package ui

import (
	"errors"
	"strings"

	"github.com/go-toast/toast"
)

var errPlatformUnavailable = errors.New("notifications are disabled in Windows settings")

func platformNotify(appName, title, message string) error {
	n := toast.Notification{
		AppID:   appName,
		Title:   title,
		Message: message,
	}
	if err := n.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			return errPlatformUnavailable
		}
		return err
	}
	return nil
}
