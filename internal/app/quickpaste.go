package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TanaroSch/copynaut/internal/export"
)

// QuickPaste pushes every image file listed on the clipboard onto the
// clipping stack. Clippings are named by their path relative to base, or
// by their full path when base is empty or not an ancestor. Files that fail
// to load are reported and skipped.
func (a *Application) QuickPaste(base string) ([]string, error) {
	if a.clipboard == nil {
		return nil, a.fail("Quick Paste Failed", fmt.Errorf("no clipboard available"))
	}
	paths, err := a.clipboard.ImagePaths()
	if err != nil {
		return nil, a.fail("Quick Paste Failed", err)
	}

	var added []string
	failed := 0
	for _, p := range paths {
		img, _, err := export.Load(p)
		if err != nil {
			failed++
			a.logger.Warn("could not load clipboard image", "path", p, "error", err)
			continue
		}
		name, err := a.buffers.Add(relativeName(base, p), img)
		if err != nil {
			return added, a.fail("Quick Paste Failed", err)
		}
		added = append(added, name)
	}

	msg := fmt.Sprintf("Added %d image(s) to the clipping stack.", len(added))
	if failed > 0 {
		a.notifier.Warn("Quick Paste", fmt.Sprintf("%s %d could not be loaded.", msg, failed))
	} else {
		a.notifier.Info("Quick Paste", msg)
	}
	return added, nil
}

func relativeName(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
