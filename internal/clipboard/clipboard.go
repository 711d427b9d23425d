// Package clipboard wraps the system clipboard and finds image file paths
// in copied text.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/h2non/filetype"
	"github.com/hashicorp/go-hclog"
)

// Backend is a text clipboard.
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type system struct{}

func (system) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (system) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Manager handles clipboard reads and writes.
type Manager struct {
	backend Backend
	logger  hclog.Logger
}

// NewManager returns a manager for the system clipboard.
func NewManager(logger hclog.Logger) *Manager {
	return NewManagerWith(system{}, logger)
}

// NewManagerWith returns a manager over an arbitrary backend.
func NewManagerWith(b Backend, logger hclog.Logger) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{backend: b, logger: logger}
}

// Available reports whether a system clipboard utility was found.
func Available() bool {
	return !clipboard.Unsupported
}

// ReadAll returns the clipboard text.
func (m *Manager) ReadAll() (string, error) {
	text, err := m.backend.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return text, nil
}

// WriteAll replaces the clipboard text.
func (m *Manager) WriteAll(text string) error {
	if err := m.backend.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	m.logger.Debug("clipboard updated", "length", len(text))
	return nil
}

// ImagePaths reads the clipboard and returns the image files it lists.
func (m *Manager) ImagePaths() ([]string, error) {
	text, err := m.ReadAll()
	if err != nil {
		return nil, err
	}
	paths, skipped := Candidates(text)
	for _, s := range skipped {
		m.logger.Info("skipping clipboard line", "line", s.Line, "reason", s.Reason)
	}
	return paths, nil
}

// Skipped is a clipboard line that did not name a usable image.
type Skipped struct {
	Line   string
	Reason string
}

// Candidates returns the lines of text that name existing image files, in
// order. A file:// prefix is stripped. Remote URLs are not fetched.
func Candidates(text string) ([]string, []Skipped) {
	var paths []string
	var skipped []Skipped
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		path := strings.TrimPrefix(line, "file://")
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			skipped = append(skipped, Skipped{line, "remote URL"})
			continue
		}
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			skipped = append(skipped, Skipped{line, "not a file"})
			continue
		}
		if !isImage(path) {
			skipped = append(skipped, Skipped{line, "not an image"})
			continue
		}
		paths = append(paths, path)
	}
	return paths, skipped
}

func isImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return filetype.IsImage(head[:n])
}
