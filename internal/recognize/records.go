// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// recordsSchema describes the per-image OCR file: an array of regions, each
// with a polygon of [x, y] points, the recognized text and a confidence.
const recordsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["bbox", "text", "confidence"],
    "properties": {
      "bbox": {
        "type": "array",
        "items": {
          "type": "array",
          "minItems": 2,
          "maxItems": 2,
          "items": {"type": "number"}
        }
      },
      "text": {"type": "string"},
      "confidence": {"type": "number", "minimum": 0, "maximum": 1}
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ocr-records.json", strings.NewReader(recordsSchema)); err != nil {
		panic(fmt.Sprintf("add OCR schema: %v", err))
	}
	return compiler.MustCompile("ocr-records.json")
}

// NewRecord builds a record from raw engine output: text is trimmed and the
// confidence clamped to [0, 1].
func NewRecord(bbox [][]float64, text string, confidence float64) types.RecognitionRecord {
	if bbox == nil {
		bbox = [][]float64{}
	}
	if math.IsNaN(confidence) {
		confidence = 0
	}
	return types.RecognitionRecord{
		BBox:       bbox,
		Text:       strings.TrimSpace(text),
		Confidence: math.Min(1, math.Max(0, confidence)),
	}
}

// ParseRecords validates data against the OCR file schema and decodes it.
func ParseRecords(data []byte) ([]types.RecognitionRecord, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal OCR JSON: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("OCR JSON does not match schema: %w", err)
	}

	var records []types.RecognitionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding OCR records: %w", err)
	}
	if records == nil {
		records = []types.RecognitionRecord{}
	}
	return records, nil
}

// ReadRecords reads and validates the OCR file at path.
func ReadRecords(path string) ([]types.RecognitionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OCR file %s: %w", path, err)
	}
	records, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecordsIfExists is ReadRecords with a missing file read as no records.
func ReadRecordsIfExists(path string) ([]types.RecognitionRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []types.RecognitionRecord{}, nil
	}
	return ReadRecords(path)
}

// MarshalRecords encodes records as a 2-space indented JSON array without
// HTML escaping, so Hangul and punctuation are written literally. An empty
// slice encodes as [].
func MarshalRecords(records []types.RecognitionRecord) ([]byte, error) {
	if records == nil {
		records = []types.RecognitionRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RectPolygon converts an axis-aligned box to the four-corner polygon used by
// the OCR file: top-left, top-right, bottom-right, bottom-left.
func RectPolygon(r image.Rectangle) [][]float64 {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return [][]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// Line is one text line reported by a box-based recognizer.
type Line struct {
	Box  image.Rectangle
	Text string

	// Confidence is in [0, 1]; NewRecord clamps it.
	Confidence float64
}

// LineRecords converts lines to records in order, one record per line. Lines
// whose text is blank are kept with empty text.
func LineRecords(lines []Line) []types.RecognitionRecord {
	records := make([]types.RecognitionRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, NewRecord(RectPolygon(l.Box), l.Text, l.Confidence))
	}
	return records
}
