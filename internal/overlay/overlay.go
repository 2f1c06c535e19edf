// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package overlay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// jpegQuality matches the default quality of the original image writer.
const jpegQuality = 75

// Summary holds counts from an overlay run.
type Summary struct {
	Rendered int
	Copied   int
}

// Total returns the number of images written.
func (s Summary) Total() int {
	return s.Rendered + s.Copied
}

// ReadTranslations reads {stem}.txt lines, trimmed with blank lines dropped.
// A missing file yields no translations.
func ReadTranslations(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading translations %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// OverlayAll writes one image per file in imageDir to overlayDir under the
// same name. Images without translations are copied byte for byte; the
// others are rendered with r and re-encoded in their original format.
func OverlayAll(ctx context.Context, r *Renderer, imageDir, ocrDir, transDir, overlayDir, manifestPath string, w io.Writer) (Summary, error) {
	names, err := workdir.ListImages(imageDir)
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var summary Summary
	written := make(map[string]string, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		stem := workdir.Stem(name)
		records, err := recognize.ReadRecordsIfExists(filepath.Join(ocrDir, stem+".json"))
		if err != nil {
			return summary, err
		}
		translations, err := ReadTranslations(filepath.Join(transDir, stem+".txt"))
		if err != nil {
			return summary, err
		}

		src := filepath.Join(imageDir, name)
		dst := filepath.Join(overlayDir, name)

		if len(translations) == 0 {
			if err := copyFile(src, dst); err != nil {
				return summary, err
			}
			fmt.Fprintf(w, "copied  %s (no translations)\n", name)
			summary.Copied++
			written[stem] = dst
			continue
		}

		if err := renderFile(r, src, dst, records, translations); err != nil {
			return summary, fmt.Errorf("overlaying %s: %w", name, err)
		}
		fmt.Fprintf(w, "overlaid %s\n", name)
		summary.Rendered++
		written[stem] = dst
	}

	err = workdir.UpdateManifest(manifestPath, func(m *types.Manifest) {
		for _, name := range names {
			stem := workdir.Stem(name)
			if path, ok := written[stem]; ok {
				workdir.Page(m, stem).Overlay = path
			}
		}
	})
	if err != nil {
		return summary, fmt.Errorf("updating manifest: %w", err)
	}

	fmt.Fprintf(w, "\nOverlaid %d image(s), copied %d unchanged\n", summary.Rendered, summary.Copied)
	return summary, nil
}

func renderFile(r *Renderer, src, dst string, records []types.RecognitionRecord, translations []string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	out := r.Render(img, records, translations)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, out)
	case "jpeg":
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
