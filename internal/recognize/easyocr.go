// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/manhwa-translate/internal/container"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// EasyOCREngine runs an EasyOCR container per image. The container reads the
// encoded image on stdin and prints [[bbox, text, confidence], ...] as JSON.
type EasyOCREngine struct {
	Runtime container.Runtime
	Image   string

	// Language is the EasyOCR language code, "ko" for Korean.
	Language string
}

// NewEasyOCREngine returns an engine for image on rt. A Tesseract language
// code is mapped to its EasyOCR equivalent.
func NewEasyOCREngine(rt container.Runtime, image, language string) *EasyOCREngine {
	return &EasyOCREngine{Runtime: rt, Image: image, Language: easyOCRLanguage(language)}
}

var easyOCRLanguages = map[string]string{
	"kor": "ko",
	"eng": "en",
	"jpn": "ja",
}

func easyOCRLanguage(lang string) string {
	if code, ok := easyOCRLanguages[lang]; ok {
		return code
	}
	return lang
}

// Recognize implements Engine.
func (e *EasyOCREngine) Recognize(ctx context.Context, imagePath string) ([]types.RecognitionRecord, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	args := []string{"--lang", e.Language, "--paragraph=false", "--gpu=false"}
	var out bytes.Buffer
	if err := e.Runtime.Run(ctx, e.Image, args, f, &out); err != nil {
		return nil, err
	}
	return parseEasyOCROutput(out.Bytes())
}

// parseEasyOCROutput decodes the EasyOCR readtext result triples.
func parseEasyOCROutput(data []byte) ([]types.RecognitionRecord, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &rows); err != nil {
		return nil, fmt.Errorf("parsing EasyOCR output: %w", err)
	}

	records := make([]types.RecognitionRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("EasyOCR result %d: want [bbox, text, confidence], got %d fields", i, len(row))
		}
		var (
			bbox [][]float64
			text string
			conf float64
		)
		if err := json.Unmarshal(row[0], &bbox); err != nil {
			return nil, fmt.Errorf("EasyOCR result %d bbox: %w", i, err)
		}
		if err := json.Unmarshal(row[1], &text); err != nil {
			return nil, fmt.Errorf("EasyOCR result %d text: %w", i, err)
		}
		if err := json.Unmarshal(row[2], &conf); err != nil {
			return nil, fmt.Errorf("EasyOCR result %d confidence: %w", i, err)
		}
		records = append(records, NewRecord(bbox, text, conf))
	}
	return records, nil
}
