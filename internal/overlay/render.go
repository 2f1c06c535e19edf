// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package overlay composites translated text onto the extracted images.
package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Renderer draws a single centered label on an image.
type Renderer struct {
	Face    font.Face
	Padding int
}

// NewRenderer loads the configured font. When the font file is missing or
// unparsable the built-in 7x13 bitmap face is used instead.
func NewRenderer(cfg types.OverlayConfig) *Renderer {
	face, err := LoadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		slog.Warn("overlay.font_fallback", "font", cfg.FontPath, "error", err)
		face = basicfont.Face7x13
	}
	return &Renderer{Face: face, Padding: cfg.Padding}
}

// LoadFace parses a TrueType or OpenType file and returns a face of size
// pixels.
func LoadFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return nil, fmt.Errorf("no font configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", path, err)
	}
	return face, nil
}

// Label is the placement of the rendered text: the ink box of the text and
// the padded white box behind it, both in image coordinates.
type Label struct {
	Text       string
	TextBox    image.Rectangle
	Background image.Rectangle
}

// Layout measures text and centers it in bounds with floor division.
func (r *Renderer) Layout(bounds image.Rectangle, text string) (Label, fixed.Point26_6) {
	ink, _ := font.BoundString(r.Face, text)
	minX, minY := ink.Min.X.Floor(), ink.Min.Y.Floor()
	tw := ink.Max.X.Ceil() - minX
	th := ink.Max.Y.Ceil() - minY

	x := bounds.Min.X + floorDiv(bounds.Dx()-tw, 2)
	y := bounds.Min.Y + floorDiv(bounds.Dy()-th, 2)

	pad := r.Padding
	label := Label{
		Text:       text,
		TextBox:    image.Rect(x, y, x+tw, y+th),
		Background: image.Rect(x-pad, y-pad, x+tw+pad+1, y+th+pad+1),
	}
	dot := fixed.P(x-minX, y-minY)
	return label, dot
}

// Render returns a copy of img with translations[0] drawn in black on a
// white box at the center. Only the first translation is drawn and the
// recognition records do not influence placement. With no translations img
// is returned unchanged.
func (r *Renderer) Render(img image.Image, records []types.RecognitionRecord, translations []string) image.Image {
	if len(translations) == 0 {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)

	label, dot := r.Layout(b, translations[0])
	draw.Draw(dst, label.Background.Intersect(b), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: r.Face,
		Dot:  dot,
	}
	d.DrawString(label.Text)
	return dst
}

// floorDiv divides rounding toward negative infinity, so text wider than the
// image starts left of the origin.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
