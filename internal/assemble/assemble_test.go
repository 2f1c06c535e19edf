package assemble

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manhwa-translate/internal/workdir"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestAssemble(t *testing.T) {
	tmpDir := t.TempDir()
	overlayDir := filepath.Join(tmpDir, "overlayed")
	require.NoError(t, os.MkdirAll(overlayDir, 0o755))

	writePNG(t, filepath.Join(overlayDir, "1.png"), image.NewNRGBA(image.Rect(0, 0, 300, 400)))
	writeJPEG(t, filepath.Join(overlayDir, "2.jpg"), image.NewRGBA(image.Rect(0, 0, 640, 200)))
	writePNG(t, filepath.Join(overlayDir, "10.png"), image.NewGray(image.Rect(0, 0, 50, 60)))
	require.NoError(t, os.WriteFile(filepath.Join(overlayDir, "readme.txt"), []byte("skip"), 0o644))

	outPath := filepath.Join(tmpDir, "final_translated_output.pdf")
	manifestPath := filepath.Join(tmpDir, "manifest.yaml")

	var buf bytes.Buffer
	n, err := Assemble(context.Background(), overlayDir, outPath, manifestPath, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pages, err := api.PageCountFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	// Lexicographic order: 1.png, 10.png, 2.jpg.
	dims, err := api.PageDimsFile(outPath)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	assert.InDelta(t, 300, dims[0].Width, 0.01)
	assert.InDelta(t, 400, dims[0].Height, 0.01)
	assert.InDelta(t, 50, dims[1].Width, 0.01)
	assert.InDelta(t, 640, dims[2].Width, 0.01)
	assert.InDelta(t, 200, dims[2].Height, 0.01)

	assert.Contains(t, buf.String(), "PDF saved to "+outPath)

	m, err := workdir.LoadManifest(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, outPath, m.Output)
}

func TestAssembleNoImages(t *testing.T) {
	tmpDir := t.TempDir()
	overlayDir := filepath.Join(tmpDir, "overlayed")
	require.NoError(t, os.MkdirAll(overlayDir, 0o755))
	outPath := filepath.Join(tmpDir, "out.pdf")

	var buf bytes.Buffer
	n, err := Assemble(context.Background(), overlayDir, outPath, "", &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "No images found.\n", buf.String())

	_, err = os.Stat(outPath)
	assert.True(t, os.IsNotExist(err), "no PDF should be written")
}

func TestAssembleUndecodableImage(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "1.png"), []byte("not a png"), 0o644))

	var buf bytes.Buffer
	_, err := Assemble(context.Background(), tmpDir, filepath.Join(tmpDir, "out.pdf"), "", &buf)
	assert.Error(t, err)
}

func TestLoadRGBDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})
	src.SetNRGBA(1, 0, color.NRGBA{G: 200, B: 10, A: 0})

	path := filepath.Join(t.TempDir(), "alpha.png")
	writePNG(t, path, src)

	rgb, err := loadRGB(path)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgb.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{G: 200, B: 10, A: 255}, rgb.RGBAAt(1, 0))
}
