package overlay

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

var red = color.RGBA{R: 220, A: 255}

func testRenderer() *Renderer {
	return &Renderer{Face: basicfont.Face7x13, Padding: 5}
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 == 220 && g == 0 && b == 0
}

// --- layout ---

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{187, 2, 93},
		{87, 2, 43},
		{-4, 2, -2},
		{-5, 2, -3},
		{0, 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}

func TestLayoutCentersText(t *testing.T) {
	label, _ := testRenderer().Layout(image.Rect(0, 0, 200, 100), "Hi")

	// The ink of "Hi" in basicfont is 13x13: two 7 px advances less the
	// blank column after the last glyph.
	assert.Equal(t, image.Rect(93, 43, 106, 56), label.TextBox)
	assert.Equal(t, image.Rect(88, 38, 112, 62), label.Background)
}

func TestLayoutWiderThanImage(t *testing.T) {
	label, _ := testRenderer().Layout(image.Rect(0, 0, 10, 20), "Hi")
	assert.Equal(t, -2, label.TextBox.Min.X)
}

// --- Render ---

func TestRender(t *testing.T) {
	src := solid(200, 100, red)
	out := testRenderer().Render(src, nil, []string{"Hi", "ignored second line"})

	assert.True(t, isWhite(out.At(88, 38)), "top-left of padded box")
	assert.True(t, isWhite(out.At(111, 61)), "bottom-right of padded box")
	assert.True(t, isRed(out.At(112, 62)), "outside the box")
	assert.True(t, isRed(out.At(112, 50)), "right of the box")
	assert.True(t, isRed(out.At(0, 0)), "corner untouched")

	var dark int
	for y := 43; y < 56; y++ {
		for x := 93; x < 106; x++ {
			if r, _, _, _ := out.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "text pixels should be drawn")

	assert.True(t, isRed(src.At(100, 50)), "source image must not be modified")
}

func TestRenderPalettedReturnsRGBA(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 120, 60), color.Palette{red, color.Black})
	out := testRenderer().Render(src, nil, []string{"Hi"})

	_, ok := out.(*image.RGBA)
	assert.True(t, ok, "rendered image type = %T", out)
	assert.True(t, isRed(out.At(0, 0)), "palette colors carried over")
}

func TestRenderIgnoresRecords(t *testing.T) {
	r := testRenderer()
	records := []types.RecognitionRecord{{BBox: [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Text: "x", Confidence: 1}}

	a := r.Render(solid(120, 60, red), nil, []string{"Same"})
	b := r.Render(solid(120, 60, red), records, []string{"Same"})
	assert.Equal(t, a, b)
}

func TestRenderNoTranslations(t *testing.T) {
	src := solid(20, 20, red)
	assert.Same(t, src, testRenderer().Render(src, nil, nil))
}

func TestNewRendererFallsBack(t *testing.T) {
	r := NewRenderer(types.OverlayConfig{FontPath: filepath.Join(t.TempDir(), "missing.ttf"), FontSize: 20, Padding: 5})
	assert.Equal(t, basicfont.Face7x13, r.Face)
	assert.Equal(t, 5, r.Padding)
}

func TestLoadFaceInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not a font"), 0o644))
	_, err := LoadFace(path, 20)
	assert.Error(t, err)

	_, err = LoadFace("", 20)
	assert.Error(t, err)
}

// --- ReadTranslations ---

func TestReadTranslations(t *testing.T) {
	dir := t.TempDir()

	lines, err := ReadTranslations(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, lines)

	path := filepath.Join(dir, "1.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Hello  \n\n   \n[Translation Error]\nBye"), 0o644))
	lines, err = ReadTranslations(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "[Translation Error]", "Bye"}, lines)
}

// --- OverlayAll ---

func TestOverlayAll(t *testing.T) {
	tmpDir := t.TempDir()
	imageDir := filepath.Join(tmpDir, "output")
	ocrDir := filepath.Join(tmpDir, "ocr_results")
	transDir := filepath.Join(tmpDir, "translations")
	overlayDir := filepath.Join(tmpDir, "overlayed")
	manifestPath := filepath.Join(tmpDir, "manifest.yaml")
	for _, dir := range []string{imageDir, ocrDir, transDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	var pngBuf, jpgBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, solid(200, 100, red)))
	require.NoError(t, jpeg.Encode(&jpgBuf, solid(80, 40, red), nil))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "1.png"), pngBuf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "2.jpg"), jpgBuf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "3.png"), pngBuf.Bytes(), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(ocrDir, "1.json"), []byte(`[{"bbox": [[0,0],[1,0],[1,1],[0,1]], "text": "안녕", "confidence": 0.9}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(transDir, "1.txt"), []byte("Hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(transDir, "3.txt"), []byte("\n  \n"), 0o644))

	var buf bytes.Buffer
	summary, err := OverlayAll(context.Background(), testRenderer(), imageDir, ocrDir, transDir, overlayDir, manifestPath, &buf)
	require.NoError(t, err)
	assert.Equal(t, Summary{Rendered: 1, Copied: 2}, summary)
	assert.Equal(t, 3, summary.Total())

	copied, err := os.ReadFile(filepath.Join(overlayDir, "2.jpg"))
	require.NoError(t, err)
	assert.Equal(t, jpgBuf.Bytes(), copied, "image without translations is copied byte for byte")

	blank, err := os.ReadFile(filepath.Join(overlayDir, "3.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBuf.Bytes(), blank)

	f, err := os.Open(filepath.Join(overlayDir, "1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
	assert.True(t, isWhite(img.At(90, 40)))

	assert.Contains(t, buf.String(), "overlaid 1.png")
	assert.Contains(t, buf.String(), "copied  2.jpg (no translations)")

	m, err := workdir.LoadManifest(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(overlayDir, "2.jpg"), workdir.Page(m, "2").Overlay)
}

func TestOverlayAllKeepsJPEGFormat(t *testing.T) {
	tmpDir := t.TempDir()
	imageDir := filepath.Join(tmpDir, "output")
	transDir := filepath.Join(tmpDir, "translations")
	overlayDir := filepath.Join(tmpDir, "overlayed")
	require.NoError(t, os.MkdirAll(imageDir, 0o755))
	require.NoError(t, os.MkdirAll(transDir, 0o755))

	var jpgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpgBuf, solid(160, 80, red), nil))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "1.jpeg"), jpgBuf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(transDir, "1.txt"), []byte("Wait!"), 0o644))

	var buf bytes.Buffer
	_, err := OverlayAll(context.Background(), testRenderer(), imageDir, filepath.Join(tmpDir, "ocr_results"), transDir, overlayDir, "", &buf)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(overlayDir, "1.jpeg"))
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
