package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/copynaut/internal/exportpath"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", "png"},
		{"a.PNG", "png"},
		{"dir.x/a.jpg", "jpeg"},
		{"a.JPEG", "jpeg"},
		{"a.webp", "webp"},
		{"a.ora", "ora"},
		{"a.tif", "tiff"},
		{"a.bmp", "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatFor(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}

	for _, path := range []string{"a.gif", "a", "a.xcf.gz"} {
		_, err := FormatFor(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, path)
	}
}

func TestSave_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.png")
	require.NoError(t, Save(path, checker(4, 3), Options{}))

	img, kind, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "png", kind)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestSave_WontOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.png")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	err := Save(path, checker(1, 1), Options{})
	assert.ErrorIs(t, err, exportpath.ErrWontOverwrite)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestSave_UnsupportedLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.gif")
	assert.ErrorIs(t, Save(path, checker(1, 1), Options{}), ErrUnsupportedFormat)
	assert.NoFileExists(t, path)
}

func TestSave_JPEGComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.jpg")
	require.NoError(t, Save(path, checker(8, 8), Options{JPEGQuality: 80}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF, 0xFE}))
	n := int(data[4])<<8 | int(data[5])
	assert.Equal(t, len(JPEGComment)+2, n)
	assert.Equal(t, JPEGComment, string(data[6:6+len(JPEGComment)]))

	img, kind, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", kind)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestSave_ORA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.ora")
	require.NoError(t, Save(path, checker(600, 300), Options{LayerName: "Sky & Sea"}))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	members := map[string]*zip.File{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		members[f.Name] = f
	}
	assert.Equal(t, []string{
		"mimetype", "stack.xml", "data/layer0.png", "mergedimage.png", "Thumbnails/thumbnail.png",
	}, names)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, oraMimetype, string(readMember(t, members["mimetype"])))

	var doc oraImage
	require.NoError(t, xml.Unmarshal(readMember(t, members["stack.xml"]), &doc))
	assert.Equal(t, 600, doc.W)
	assert.Equal(t, 300, doc.H)
	require.Len(t, doc.Stack.Layers, 1)
	assert.Equal(t, "Sky & Sea", doc.Stack.Layers[0].Name)
	assert.Equal(t, oraLayerPath, doc.Stack.Layers[0].Src)

	thumb, err := png.Decode(bytes.NewReader(readMember(t, members["Thumbnails/thumbnail.png"])))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(256, 128), thumb.Bounds().Size())
}

func readMember(t *testing.T, f *zip.File) []byte {
	t.Helper()
	require.NotNil(t, f)
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestSave_WebPUsesCWebP(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake cwebp is a shell script")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "quality")
	script := "#!/bin/sh\necho \"$3\" > " + log + "\ncp \"$4\" \"$6\"\n"
	fake := filepath.Join(dir, "cwebp")
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))

	old := CWebP
	CWebP = fake
	t.Cleanup(func() { CWebP = old })

	path := filepath.Join(dir, "clip.webp")
	require.NoError(t, Save(path, checker(2, 2), Options{WebPQuality: 77}))

	q, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, "77\n", string(q))

	// the fake copies its png input through unchanged
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestSave_WebPWithoutCWebP(t *testing.T) {
	old := CWebP
	CWebP = filepath.Join(t.TempDir(), "no-such-cwebp")
	t.Cleanup(func() { CWebP = old })

	path := filepath.Join(t.TempDir(), "clip.webp")
	assert.Error(t, Save(path, checker(1, 1), Options{}))
	assert.NoFileExists(t, path)
}

func TestCrop(t *testing.T) {
	img := checker(10, 10)

	got := Crop(img, image.Rect(2, 3, 6, 5))
	assert.Equal(t, image.Rect(0, 0, 4, 2), got.Bounds())
	assert.Equal(t, color.NRGBAModel.Convert(img.At(2, 3)), color.NRGBAModel.Convert(got.At(0, 0)))

	assert.Same(t, img, Crop(img, img.Bounds()))
	assert.Same(t, img, Crop(img, image.Rectangle{}))
	assert.Equal(t, image.Rect(0, 0, 2, 2), Crop(img, image.Rect(8, 8, 20, 20)).Bounds())
}

func TestCrop_OffsetSourceSavesFromOrigin(t *testing.T) {
	src := checker(10, 10).SubImage(image.Rect(1, 1, 9, 9))

	got := Crop(src, image.Rect(3, 4, 5, 7))
	require.Equal(t, image.Rect(0, 0, 2, 3), got.Bounds())
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, color.NRGBAModel.Convert(src.At(x+3, y+4)), color.NRGBAModel.Convert(got.At(x, y)), "pixel %d,%d", x, y)
		}
	}

	path := filepath.Join(t.TempDir(), "crop.png")
	require.NoError(t, Save(path, got, Options{}))
	back, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 3), back.Bounds())
}

func TestReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.png")
	require.NoError(t, Save(path, checker(2, 2), Options{}))
	require.NoError(t, Replace(path, checker(5, 5), Options{}))

	img, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
