package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CWebP names the cwebp binary used for webp output. The standard library
// and x/image only decode webp.
var CWebP = "cwebp"

func encodeWebP(w io.Writer, img image.Image, opts Options) error {
	bin, err := exec.LookPath(CWebP)
	if err != nil {
		return fmt.Errorf("webp export needs %s: %w", CWebP, err)
	}
	dir, err := os.MkdirTemp("", "copynaut-webp-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.webp")
	if err := writeFile(in, func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-quiet", "-q", strconv.Itoa(clampQuality(opts.WebPQuality)), in, "-o", out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", CWebP, err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(out)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
