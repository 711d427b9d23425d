// Package exportpath builds the file paths clippings are exported to.
package exportpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

var (
	// ErrConfig reports an invalid numbering configuration.
	ErrConfig = errors.New("invalid export path configuration")
	// ErrExhausted is returned when no free numbered name was found.
	ErrExhausted = errors.New("no free filename found")
	// ErrWontOverwrite is returned when a path that was free at probe time
	// exists by the time it is written.
	ErrWontOverwrite = errors.New("won't overwrite existing file")
)

// maxProbes bounds the numbered filename search.
const maxProbes = 0xFFFFFF

// compressorExts are single-file compressor suffixes that combine with the
// extension before them.
var compressorExts = map[string]bool{
	".gz":    true,
	".bz2":   true,
	".bzip2": true,
	".xz":    true,
}

// SplitExt splits path into base and extension, keeping compressor suffixes
// together with the extension they compress: "foo.tar.gz" gives
// ("foo", ".tar.gz").
func SplitExt(path string) (string, string) {
	dir, file := filepath.Split(path)
	base, ext := splitOne(file)
	if compressorExts[ext] && strings.Contains(base, ".") {
		var inner string
		base, inner = splitOne(base)
		ext = inner + ext
	}
	return dir + base, ext
}

// splitOne splits off the last extension. Leading dots do not start an
// extension, so ".png" has no extension.
func splitOne(file string) (string, string) {
	i := strings.LastIndex(file, ".")
	if i <= 0 || strings.Trim(file[:i], ".") == "" {
		return file, ""
	}
	return file[:i], file[i:]
}

// DashJoin joins two name parts with a single '-'. Empty parts are dropped.
func DashJoin(lhs, rhs string) string {
	if rhs == "" {
		return lhs
	}
	if lhs == "" {
		return rhs
	}
	return strings.TrimRight(lhs, "-") + "-" + strings.TrimLeft(rhs, "-")
}

// Numbered returns path if nothing exists there, otherwise the first free
// base-NN.ext, with the number zero-padded to digits.
func Numbered(path string, digits int) (string, error) {
	if digits < 1 || digits > 100 {
		return "", fmt.Errorf("%w: invalid number of digits %d", ErrConfig, digits)
	}
	if !exists(path) {
		return path, nil
	}
	base, ext := SplitExt(path)
	for i := 1; i < maxProbes; i++ {
		candidate := fmt.Sprintf("%s-%0*d%s", base, digits, i, ext)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: reached bailout at %d probes for %s", ErrExhausted, maxProbes, path)
}

// Request describes one export destination.
type Request struct {
	// SourceFilename is the document the clipping was taken from.
	SourceFilename string
	// Directory is the configured export directory; relative directories are
	// resolved against the source file's directory.
	Directory string
	// DestName is the expanded and edited export name template, including
	// the extension that selects the file format.
	DestName string
	// Suffix is the expanded and edited per-export suffix.
	Suffix string
	// Digits is the width of collision numbers.
	Digits int
}

// Resolve builds the export path for r:
//
//	<dir>/<source basename>-<dest base>-<suffix><ext>
//
// It creates the parent directory and numbers the name if it is taken.
func Resolve(r Request) (string, error) {
	destbase, ext := SplitExt(r.DestName)
	if strings.HasPrefix(destbase, ".") {
		// The name template expanded to nothing but an extension, e.g.
		// "{layerpath_multiple}.png" on a single-layer image.
		ext = r.DestName
		destbase = ""
	}

	dir, err := homedir.Expand(r.Directory)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(r.SourceFilename), dir)
	}

	srcbase, _ := SplitExt(filepath.Base(r.SourceFilename))
	name := DashJoin(srcbase, destbase)
	if r.Suffix != "" {
		name = DashJoin(name, r.Suffix)
	}
	path := filepath.Join(dir, name) + ext

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	return Numbered(path, r.Digits)
}

// CheckFree reports ErrWontOverwrite if path exists.
func CheckFree(path string) error {
	if exists(path) {
		return fmt.Errorf("%w: %s", ErrWontOverwrite, path)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
