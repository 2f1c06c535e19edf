package review

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupDirs(t *testing.T) (ocrDir, transDir string) {
	t.Helper()
	tmpDir := t.TempDir()
	ocrDir = filepath.Join(tmpDir, "ocr_results")
	transDir = filepath.Join(tmpDir, "translations")
	require.NoError(t, os.MkdirAll(ocrDir, 0o755))
	require.NoError(t, os.MkdirAll(transDir, 0o755))

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(filepath.Join(ocrDir, "1.json"), `[
		{"bbox": [[0,0],[1,0],[1,1],[0,1]], "text": "안녕", "confidence": 0.91},
		{"bbox": [], "text": "", "confidence": 0.2},
		{"bbox": [], "text": "뭐야", "confidence": 0.5}
	]`)
	write(filepath.Join(transDir, "1.txt"), "Hello\n[Translation Error]")
	write(filepath.Join(ocrDir, "2.json"), `[{"bbox": [], "text": "가자", "confidence": 0.7}]`)
	return ocrDir, transDir
}

func TestCollectRows(t *testing.T) {
	ocrDir, transDir := setupDirs(t)

	rows, pages, err := CollectRows(context.Background(), ocrDir, transDir)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{Page: "1", Region: 1, Source: "안녕", Confidence: 0.91, Translation: "Hello"}, rows[0])
	assert.Equal(t, "", rows[1].Translation, "blank record has no translation")
	assert.Equal(t, "[Translation Error]", rows[2].Translation)
	assert.True(t, rows[2].Failed())
	assert.Equal(t, "", rows[3].Translation, "missing translation file yields empty translations")
}

func TestBuild(t *testing.T) {
	ocrDir, transDir := setupDirs(t)
	outPath := filepath.Join(t.TempDir(), "review.xlsx")

	var buf bytes.Buffer
	summary, err := Build(context.Background(), ocrDir, transDir, outPath, &buf)
	require.NoError(t, err)
	assert.Equal(t, Summary{Pages: 2, Rows: 4, Failed: 1}, summary)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus one row per OCR record")
	assert.Equal(t, []string{"Page", "Region", "Source Text", "Confidence", "Translation"}, rows[0])
	assert.Equal(t, []string{"1", "1", "안녕", "0.91", "Hello"}, rows[1])
	assert.Equal(t, "가자", rows[4][2])

	assert.Contains(t, buf.String(), "4 rows from 2 pages, 1 failed")
}

func TestBuildInvalidOCR(t *testing.T) {
	ocrDir, transDir := setupDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(ocrDir, "3.json"), []byte(`{"oops": true}`), 0o644))

	var buf bytes.Buffer
	_, err := Build(context.Background(), ocrDir, transDir, filepath.Join(t.TempDir(), "r.xlsx"), &buf)
	assert.Error(t, err)
}

func TestBuildCellWriteError(t *testing.T) {
	ocrDir, transDir := setupDirs(t)
	// Spreadsheet cells hold at most 32767 characters.
	long := strings.Repeat("가", 32768)
	require.NoError(t, os.WriteFile(filepath.Join(ocrDir, "3.json"),
		[]byte(`[{"bbox": [], "text": "`+long+`", "confidence": 0.4}]`), 0o644))
	outPath := filepath.Join(t.TempDir(), "review.xlsx")

	var buf bytes.Buffer
	_, err := Build(context.Background(), ocrDir, transDir, outPath, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing cell C6")
	assert.NoFileExists(t, outPath)
}
