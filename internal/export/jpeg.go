package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"io"
)

// JPEGComment is stored in a COM segment of every exported jpeg.
const JPEGComment = "Exported by Copynaut"

func encodeJPEG(w io.Writer, img image.Image, opts Options) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(opts.JPEGQuality)}); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return errors.New("jpeg stream does not start with SOI")
	}
	for _, part := range [][]byte{data[:2], commentSegment(JPEGComment), data[2:]} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

// commentSegment builds a COM marker segment; the length field counts
// itself but not the marker.
func commentSegment(text string) []byte {
	seg := make([]byte, 4, 4+len(text))
	seg[0], seg[1] = 0xFF, 0xFE
	binary.BigEndian.PutUint16(seg[2:], uint16(len(text)+2))
	return append(seg, text...)
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}
