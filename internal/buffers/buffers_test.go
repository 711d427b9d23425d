package buffers

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStore_AddIsHeadFirst(t *testing.T) {
	s, err := Open(t.TempDir(), hclog.NewNullLogger())
	require.NoError(t, err)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"first", "second", "third"} {
		got, err := s.Add(n, solid(2, 2, color.White))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
	names, err = s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, names)
}

func TestStore_AddUniquifies(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)

	var got []string
	for i := 0; i < 3; i++ {
		name, err := s.Add("photo:Sky", solid(1, 1, color.Black))
		require.NoError(t, err)
		got = append(got, name)
	}
	assert.Equal(t, []string{"photo:Sky", "photo:Sky #1", "photo:Sky #2"}, got)
}

func TestStore_ImageAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	red := color.NRGBA{R: 255, A: 255}
	_, err = s.Add("red", solid(3, 2, red))
	require.NoError(t, err)
	_, err = s.Add("blue", solid(1, 1, color.NRGBA{B: 255, A: 255}))
	require.NoError(t, err)

	img, err := s.Image("red")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, red, color.NRGBAModel.Convert(img.At(1, 1)))

	require.NoError(t, s.Delete("red"))
	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, names)

	_, err = s.Image("red")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("red"), ErrNotFound)

	files, err := filepath.Glob(filepath.Join(dir, "buffer-*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	_, err = s.Add("a", solid(1, 1, color.White))
	require.NoError(t, err)

	again, err := Open(dir, nil)
	require.NoError(t, err)
	names, err := again.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestStore_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFile), []byte("{"), 0o644))
	s, err := Open(dir, nil)
	require.NoError(t, err)
	_, err = s.Names()
	assert.Error(t, err)
}
