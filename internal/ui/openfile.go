package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFileInDefaultApp hands path to the desktop's default handler and
// returns without waiting for it.
func OpenFileInDefaultApp(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cmd.String(), err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
