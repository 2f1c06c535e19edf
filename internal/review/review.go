// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review builds a spreadsheet that lines up every recognized text
// region with its translation, for proofreading a run.
package review

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/internal/translate"
	"github.com/pdiddy/manhwa-translate/internal/workdir"
)

const sheet = "Review"

// Row is one recognized region and its translation.
type Row struct {
	Page        string
	Region      int
	Source      string
	Confidence  float64
	Translation string
}

// Failed reports whether the translation is the error sentinel.
func (r Row) Failed() bool {
	return r.Translation == translate.Sentinel
}

// Summary holds counts from a review build.
type Summary struct {
	Pages  int
	Rows   int
	Failed int
}

// CollectRows reads every OCR file in ocrDir (lexicographic order) and pairs
// each record with its translation line. Translation lines belong to the
// records with non-empty text, in order; records with blank text get no
// translation.
func CollectRows(ctx context.Context, ocrDir, transDir string) ([]Row, int, error) {
	names, err := workdir.List(ocrDir, ".json")
	if err != nil {
		return nil, 0, err
	}

	var rows []Row
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		records, err := recognize.ReadRecords(filepath.Join(ocrDir, name))
		if err != nil {
			return nil, 0, err
		}

		stem := workdir.Stem(name)
		lines, err := readLines(filepath.Join(transDir, stem+".txt"))
		if err != nil {
			return nil, 0, err
		}

		next := 0
		for i, rec := range records {
			row := Row{Page: stem, Region: i + 1, Source: rec.Text, Confidence: rec.Confidence}
			if strings.TrimSpace(rec.Text) != "" {
				if next < len(lines) {
					row.Translation = lines[next]
				}
				next++
			}
			rows = append(rows, row)
		}
	}
	return rows, len(names), nil
}

// readLines returns the raw lines of a translation file, or none when absent.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading translations %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return strings.Split(string(data), "\n"), nil
}

var headers = []string{"Page", "Region", "Source Text", "Confidence", "Translation"}

var colWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "B", 8},
	{"C", "C", 40},
	{"D", "D", 12},
	{"E", "E", 60},
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("writing cell %s: %w", cell, err)
	}
	return nil
}

// writeRows fills the review sheet with the header and rows and returns the
// number of failed rows. The first excelize error stops the write.
func writeRows(f *excelize.File, rows []Row) (int, error) {
	for i, h := range headers {
		if err := setCell(f, i+1, 1, h); err != nil {
			return 0, err
		}
	}

	failedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("creating style: %w", err)
	}

	failed := 0
	for i, r := range rows {
		row := i + 2

		var page any = r.Page
		if n, err := strconv.Atoi(r.Page); err == nil {
			page = n
		}
		for col, v := range []any{page, r.Region, r.Source, r.Confidence, r.Translation} {
			if err := setCell(f, col+1, row, v); err != nil {
				return 0, err
			}
		}

		if r.Failed() {
			failed++
			from, _ := excelize.CoordinatesToCellName(1, row)
			to, _ := excelize.CoordinatesToCellName(len(headers), row)
			if err := f.SetCellStyle(sheet, from, to, failedStyle); err != nil {
				return 0, fmt.Errorf("styling row %d: %w", row, err)
			}
		}
	}

	for _, c := range colWidths {
		if err := f.SetColWidth(sheet, c.from, c.to, c.width); err != nil {
			return 0, fmt.Errorf("setting width of %s:%s: %w", c.from, c.to, err)
		}
	}
	return failed, nil
}

// Build writes the review workbook for ocrDir and transDir to outPath.
func Build(ctx context.Context, ocrDir, transDir, outPath string, w io.Writer) (Summary, error) {
	start := time.Now()

	rows, pages, err := CollectRows(ctx, ocrDir, transDir)
	if err != nil {
		return Summary{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return Summary{}, fmt.Errorf("naming sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return Summary{}, fmt.Errorf("locating sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	failed, err := writeRows(f, rows)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Pages: pages, Rows: len(rows), Failed: failed}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := f.SaveAs(outPath); err != nil {
		return Summary{}, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("review.xlsx.ok", "path", outPath, "rows", summary.Rows, "elapsed_ms", time.Since(start).Milliseconds())
	fmt.Fprintf(w, "Review workbook saved to %s (%d rows from %d pages, %d failed)\n", outPath, summary.Rows, summary.Pages, summary.Failed)
	return summary, nil
}
