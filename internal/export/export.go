// Package export encodes finished clippings, picking the encoder from the
// destination file's extension.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/TanaroSch/copynaut/internal/exportpath"
)

// ErrUnsupportedFormat is returned for destination extensions without an
// encoder.
var ErrUnsupportedFormat = errors.New("file format not supported")

// Options carries encoder settings.
type Options struct {
	// WebPQuality and JPEGQuality are percentages, 0 to 100.
	WebPQuality int
	JPEGQuality int
	// LayerName names the single layer of layered formats.
	LayerName string
}

// Format encodes images of one file type.
type Format interface {
	Name() string
	Encode(w io.Writer, img image.Image, opts Options) error
}

type formatFunc struct {
	name   string
	encode func(w io.Writer, img image.Image, opts Options) error
}

func (f formatFunc) Name() string { return f.name }

func (f formatFunc) Encode(w io.Writer, img image.Image, opts Options) error {
	return f.encode(w, img, opts)
}

var (
	pngFormat = formatFunc{"png", func(w io.Writer, img image.Image, _ Options) error {
		return imgio.PNGEncoder()(w, img)
	}}
	bmpFormat = formatFunc{"bmp", func(w io.Writer, img image.Image, _ Options) error {
		return bmp.Encode(w, img)
	}}
	tiffFormat = formatFunc{"tiff", func(w io.Writer, img image.Image, _ Options) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}}
	jpegFormat = formatFunc{"jpeg", encodeJPEG}
	webpFormat = formatFunc{"webp", encodeWebP}
	oraFormat  = formatFunc{"ora", encodeORA}
)

var byExt = map[string]Format{
	".png":  pngFormat,
	".ora":  oraFormat,
	".webp": webpFormat,
	".jpg":  jpegFormat,
	".jpeg": jpegFormat,
	".bmp":  bmpFormat,
	".tif":  tiffFormat,
	".tiff": tiffFormat,
}

// FormatFor returns the encoder for path's extension, compared without case.
func FormatFor(path string) (Format, error) {
	_, ext := exportpath.SplitExt(path)
	f, ok := byExt[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.ToLower(ext))
	}
	return f, nil
}

// Save encodes img to path. The file must not exist: one that appeared since
// its name was chosen yields exportpath.ErrWontOverwrite.
func Save(path string, img image.Image, opts Options) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", exportpath.ErrWontOverwrite, path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	err = format.Encode(bw, img, opts)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("encoding %s as %s: %w", path, format.Name(), err)
	}
	return nil
}
