// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProjectStatus tracks a project through the pipeline.
type ProjectStatus string

const (
	StatusPending    ProjectStatus = "pending"
	StatusProcessing ProjectStatus = "processing"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// Project is an uploaded document and the outcome of its last run.
type Project struct {
	// ID is a random UUID assigned at creation.
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	Status ProjectStatus `json:"status" yaml:"status"`

	// PDFPath is the uploaded copy of the source document.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// TranslatedPDFPath is set when a run completes.
	TranslatedPDFPath string `json:"translated_pdf_path,omitempty" yaml:"translated_pdf_path,omitempty"`

	// Error records the failure message of the last run. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Pages is the manifest of the last run.
	Pages []PageEntry `json:"pages,omitempty" yaml:"pages,omitempty"`
}
