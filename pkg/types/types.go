// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the manhwa-translate pipeline:
// recognition records, the page manifest, projects, and stage configuration.
package types

import "time"

// RecognitionRecord is one detected text region within an image.
// The JSON form is the per-image OCR file format.
type RecognitionRecord struct {
	// BBox is the bounding polygon, usually four [x, y] points.
	BBox [][]float64 `json:"bbox" yaml:"bbox"`

	// Text is the recognized text, trimmed of surrounding whitespace.
	Text string `json:"text" yaml:"text"`

	// Confidence is the recognizer's certainty in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// PageEntry links one extracted image to its files at every stage.
// ID is the filename stem shared by all of them.
type PageEntry struct {
	ID          string `json:"id" yaml:"id"`
	Image       string `json:"image" yaml:"image"`
	OCR         string `json:"ocr,omitempty" yaml:"ocr,omitempty"`
	Translation string `json:"translation,omitempty" yaml:"translation,omitempty"`
	Overlay     string `json:"overlay,omitempty" yaml:"overlay,omitempty"`

	// Regions is the number of recognition records for the image.
	Regions int `json:"regions" yaml:"regions"`

	// Translated counts text blocks that came back from the API.
	Translated int `json:"translated" yaml:"translated"`

	// Failed counts text blocks replaced by the error sentinel.
	Failed int `json:"failed" yaml:"failed"`
}

// Manifest is the ordered record of a pipeline run.
type Manifest struct {
	// Source is the PDF the images were extracted from.
	Source string `json:"source" yaml:"source"`

	// Output is the assembled PDF, once written.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Pages is kept in extraction order.
	Pages []PageEntry `json:"pages" yaml:"pages"`
}
