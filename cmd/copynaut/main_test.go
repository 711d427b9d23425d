package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	configPath, buffersDir, logLevel, notify, notifyLevel = "", "", "", false, "info"
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.ini"),
		"--buffers", filepath.Join(dir, "buffers"),
		"--log-level", "off",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeImage(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestCLI_CopyBuffersPaste(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	target := filepath.Join(dir, "target.png")
	writeImage(t, src, 8, 6, color.Black)
	writeImage(t, target, 8, 6, color.White)

	out, err := run(t, dir, "copy", src, "--layer", "Sky", "--selection", "2x2+3+1")
	require.NoError(t, err)
	assert.Equal(t, "photo:Sky [[8x6+3,1]]\n", out)

	out, err = run(t, dir, "buffers")
	require.NoError(t, err)
	assert.Equal(t, "1\tphoto:Sky\tphoto:Sky [[8x6+3,1]]\n", out)

	out, err = run(t, dir, "paste", target)
	require.NoError(t, err)
	assert.Equal(t, "photo:Sky\t3,1\n", out)

	out, err = run(t, dir, "buffers")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_ExpandAndExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writeImage(t, src, 4, 4, color.Black)

	out, err := run(t, dir, "expand", src, "--template", "export", "--layer", "Group", "--layer", "Sky")
	require.NoError(t, err)
	assert.Equal(t, "Group_Sky.png\n", out)

	out, err = run(t, dir, "export", src, "--document", filepath.Join(dir, "photo.xcf"),
		"--layer", "Group", "--layer", "Sky", "--suffix", "final")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo-Group_Sky-final.png")+"\n", out)
}

func TestCLI_ExportUnsupportedIsSkipped(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writeImage(t, src, 2, 2, color.Black)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.ini"),
		[]byte("[export]\nname template = {layername}.gif\n"), 0o600))

	out, err := run(t, dir, "export", src)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_Rules(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "rules", "add", "--list", "export", "--key", "04_lower", "--rule", "/Sky/sky/")
	require.NoError(t, err)

	out, err := run(t, dir, "rules", "test", "photo:Group/Sky [[1x1+0,0]]")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "photo:Group_sky", lines[len(lines)-1])
	assert.Contains(t, out, "04_lower\tphoto:Group_[-S-]{+s+}ky")

	_, err = run(t, dir, "rules", "add", "--key", "05_x", "--pattern", "a", "--flags", "q")
	assert.Error(t, err)
	_, err = run(t, dir, "rules", "test", "--list", "nope", "x")
	assert.Error(t, err)
}

func TestCLI_Config(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "created "+filepath.Join(dir, "config.ini")+"\n", out)

	out, err = run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[clipping stack]")
	assert.Contains(t, out, "last-in-first-out")
}
