// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble concatenates the overlay images into the output PDF, one
// page per image with the page sized to the image.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/go-pdf/fpdf"

	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Assemble writes every image in overlayDir, in lexicographic order, as one
// page of the PDF at outPath and returns the page count. When the directory
// has no images it prints "No images found." and writes nothing.
func Assemble(ctx context.Context, overlayDir, outPath, manifestPath string, w io.Writer) (int, error) {
	names, err := workdir.ListImages(overlayDir)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No images found.")
		return 0, nil
	}

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rgb, err := loadRGB(filepath.Join(overlayDir, name))
		if err != nil {
			return 0, fmt.Errorf("loading %s: %w", name, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, rgb); err != nil {
			return 0, fmt.Errorf("encoding %s: %w", name, err)
		}

		b := rgb.Bounds()
		wd, ht := float64(b.Dx()), float64(b.Dy())
		imgName := "page" + strconv.Itoa(i+1)
		opt := fpdf.ImageOptions{ImageType: "PNG"}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: wd, Ht: ht})
		pdf.RegisterImageOptionsReader(imgName, opt, &buf)
		pdf.ImageOptions(imgName, 0, 0, wd, ht, false, opt, 0, "")
		if err := pdf.Error(); err != nil {
			return 0, fmt.Errorf("adding page for %s: %w", name, err)
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return 0, fmt.Errorf("writing %s: %w", outPath, err)
	}

	if err := workdir.UpdateManifest(manifestPath, func(m *types.Manifest) { m.Output = outPath }); err != nil {
		return 0, fmt.Errorf("updating manifest: %w", err)
	}

	fmt.Fprintf(w, "PDF saved to %s (%d pages)\n", outPath, len(names))
	return len(names), nil
}

// loadRGB decodes an image and drops its alpha channel, keeping the
// unpremultiplied color of every pixel fully opaque.
func loadRGB(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if opaque, ok := src.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, nil
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return dst, nil
}
