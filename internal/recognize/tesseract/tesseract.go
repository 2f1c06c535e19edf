// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tesseract implements the in-process recognizer on top of
// gosseract. It links libtesseract through cgo, which is why it lives apart
// from package recognize.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Engine recognizes text lines with Tesseract. A fresh client is created per
// image so state never leaks between pages.
type Engine struct {
	// Language is the Tesseract traineddata name, "kor" for Korean.
	Language string

	clientFactory func() *gosseract.Client
}

// New returns an Engine for language.
func New(language string) *Engine {
	return &Engine{Language: language, clientFactory: gosseract.NewClient}
}

// Recognize implements recognize.Engine. Each text line becomes one record
// with its box as a four-corner polygon.
func (e *Engine) Recognize(ctx context.Context, imagePath string) ([]types.RecognitionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.Language); err != nil {
		return nil, fmt.Errorf("set language %s: %w", e.Language, err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text lines: %w", err)
	}

	lines := make([]recognize.Line, len(boxes))
	for i, b := range boxes {
		lines[i] = recognize.Line{Box: b.Box, Text: b.Word, Confidence: b.Confidence / 100}
	}
	return recognize.LineRecords(lines), nil
}
