// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recognize runs text recognition over the extracted images and
// writes one JSON file of recognition records per image.
package recognize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Engine recognizes text lines in one image. Implementations are configured
// for a single script and report each line as its own region.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]types.RecognitionRecord, error)
}

// Summary holds counts from a recognition run.
type Summary struct {
	Images  int
	Regions int
}

// RecognizeAll runs engine over every image in imageDir in lexicographic
// order and writes {stem}.json to ocrDir. The first engine failure stops the
// run; files already written stay in place.
func RecognizeAll(ctx context.Context, engine Engine, imageDir, ocrDir, manifestPath string, w io.Writer) (Summary, error) {
	names, err := workdir.ListImages(imageDir)
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(ocrDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var summary Summary
	pages := make(map[string]int, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		imagePath := filepath.Join(imageDir, name)
		records, err := engine.Recognize(ctx, imagePath)
		if err != nil {
			return summary, fmt.Errorf("recognizing %s: %w", name, err)
		}

		data, err := MarshalRecords(records)
		if err != nil {
			return summary, fmt.Errorf("encoding records for %s: %w", name, err)
		}

		stem := workdir.Stem(name)
		outPath := filepath.Join(ocrDir, stem+".json")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", outPath, err)
		}

		fmt.Fprintf(w, "recognized %s (%d regions)\n", name, len(records))
		summary.Images++
		summary.Regions += len(records)
		pages[stem] = len(records)
	}

	err = workdir.UpdateManifest(manifestPath, func(m *types.Manifest) {
		for _, name := range names {
			stem := workdir.Stem(name)
			n, ok := pages[stem]
			if !ok {
				continue
			}
			page := workdir.Page(m, stem)
			if page.Image == "" {
				page.Image = filepath.Join(imageDir, name)
			}
			page.OCR = filepath.Join(ocrDir, stem+".json")
			page.Regions = n
		}
	})
	if err != nil {
		return summary, fmt.Errorf("updating manifest: %w", err)
	}

	fmt.Fprintf(w, "\nRecognized %d region(s) in %d image(s)\n", summary.Regions, summary.Images)
	return summary, nil
}
