// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate sends recognized Korean text to a generative-language API
// and writes one translation line per text block.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Sentinel is the line persisted in place of a failed translation.
const Sentinel = "[Translation Error]"

// previewRunes is the length of the source text preview in failure logs.
const previewRunes = 20

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found in environment variables")

	// ErrEmptyTranslation is returned when the API answers with blank text.
	ErrEmptyTranslation = errors.New("empty translation in response")
)

// Backend translates one text block. Implementations are called
// sequentially, once per block.
type Backend interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Result is the outcome of one translation request: either Text or Err.
type Result struct {
	Source string
	Text   string
	Err    error
}

// Line returns the text persisted for the block.
func (r Result) Line() string {
	if r.Err != nil {
		return Sentinel
	}
	return r.Text
}

// Summary holds counts from a translation run.
type Summary struct {
	Files      int
	Translated int
	Failed     int
}

// HasFailures reports whether any block fell back to the sentinel.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// TranslateRecords translates every record whose text is non-empty after
// trimming, in order. A failed request never stops the loop.
func TranslateRecords(ctx context.Context, backend Backend, records []types.RecognitionRecord) []Result {
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		text := strings.TrimSpace(rec.Text)
		if text == "" {
			continue
		}

		translated, err := backend.Translate(ctx, text)
		translated = singleLine(translated)
		if err == nil && translated == "" {
			err = ErrEmptyTranslation
		}
		if err != nil {
			slog.Warn("translate.failed", "preview", Preview(text), "error", err)
			results = append(results, Result{Source: text, Err: err})
			continue
		}
		results = append(results, Result{Source: text, Text: translated})
	}
	return results
}

// lineBreaks folds multi-line answers so each block stays one line of the
// translation file.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(strings.TrimSpace(s)))
}

// Preview returns the first 20 characters of text for logs.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes])
}

// JoinLines joins the persisted lines with newlines and no trailing newline.
func JoinLines(results []Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Line()
	}
	return strings.Join(lines, "\n")
}

// TranslateAll translates every OCR file in ocrDir (lexicographic order) and
// writes {stem}.txt to transDir. An OCR file that fails schema validation
// stops the run; failed translations do not.
func TranslateAll(ctx context.Context, backend Backend, ocrDir, transDir, manifestPath string, w io.Writer) (Summary, error) {
	names, err := workdir.List(ocrDir, ".json")
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(transDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var summary Summary
	type pageCounts struct{ translated, failed int }
	pages := make(map[string]pageCounts, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		records, err := recognize.ReadRecords(filepath.Join(ocrDir, name))
		if err != nil {
			return summary, err
		}

		fmt.Fprintf(w, "translating %s (%d regions)\n", name, len(records))

		results := TranslateRecords(ctx, backend, records)
		var counts pageCounts
		for i, r := range results {
			if r.Err != nil {
				fmt.Fprintf(w, "failed  %s block %d %q: %v\n", name, i+1, Preview(r.Source), r.Err)
				counts.failed++
				continue
			}
			counts.translated++
		}

		stem := workdir.Stem(name)
		outPath := filepath.Join(transDir, stem+".txt")
		if err := os.WriteFile(outPath, []byte(JoinLines(results)), 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", outPath, err)
		}

		summary.Files++
		summary.Translated += counts.translated
		summary.Failed += counts.failed
		pages[stem] = counts
	}

	err = workdir.UpdateManifest(manifestPath, func(m *types.Manifest) {
		for _, name := range names {
			stem := workdir.Stem(name)
			counts, ok := pages[stem]
			if !ok {
				continue
			}
			page := workdir.Page(m, stem)
			page.Translation = filepath.Join(transDir, stem+".txt")
			page.Translated = counts.translated
			page.Failed = counts.failed
		}
	})
	if err != nil {
		return summary, fmt.Errorf("updating manifest: %w", err)
	}

	fmt.Fprintf(w, "\nTranslated %d block(s) in %d file(s), %d failed\n", summary.Translated, summary.Files, summary.Failed)
	return summary, nil
}
