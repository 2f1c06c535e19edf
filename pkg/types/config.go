// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LayoutConfig names the working files and directories shared by the stages.
// Stages join their inputs and outputs by filename stem inside these directories.
type LayoutConfig struct {
	// InputPDF is the source document read by the extract stage.
	InputPDF string `json:"input_pdf" yaml:"input_pdf" mapstructure:"input_pdf"`

	// ImageDir receives the extracted images ("output").
	ImageDir string `json:"image_dir" yaml:"image_dir" mapstructure:"image_dir"`

	// OCRDir receives one JSON record list per image ("ocr_results").
	OCRDir string `json:"ocr_dir" yaml:"ocr_dir" mapstructure:"ocr_dir"`

	// TranslationDir receives one newline-joined text file per image ("translations").
	TranslationDir string `json:"translation_dir" yaml:"translation_dir" mapstructure:"translation_dir"`

	// OverlayDir receives the composited images ("overlayed").
	OverlayDir string `json:"overlay_dir" yaml:"overlay_dir" mapstructure:"overlay_dir"`

	// OutputPDF is the assembled document.
	OutputPDF string `json:"output_pdf" yaml:"output_pdf" mapstructure:"output_pdf"`

	// ManifestPath is the YAML manifest updated by every stage.
	ManifestPath string `json:"manifest_path" yaml:"manifest_path" mapstructure:"manifest_path"`
}

// StageDirs returns the per-stage output directories in pipeline order.
func (l LayoutConfig) StageDirs() []string {
	return []string{l.ImageDir, l.OCRDir, l.TranslationDir, l.OverlayDir}
}

// OCREngine selects the text recognizer.
type OCREngine string

const (
	EngineTesseract OCREngine = "tesseract"
	EngineEasyOCR   OCREngine = "easyocr"
)

// OCRConfig holds settings for the recognition stage.
type OCRConfig struct {
	// Engine selects tesseract (in-process) or easyocr (container).
	Engine OCREngine `json:"engine" yaml:"engine" mapstructure:"engine"`

	// Language is the single target script. Tesseract uses "kor"; the
	// easyocr engine maps it to "ko".
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// ContainerImage is the EasyOCR image used by the easyocr engine.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the model identifier in the endpoint path (e.g. "gemini-1.5-flash-latest").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key, sent as the "key" query parameter.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// TranslationConfig holds settings for the translation stage.
type TranslationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the generative-language API root. Tests point it at httptest servers.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a single translation request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	Temperature     float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	TopK            int     `json:"top_k" yaml:"top_k" mapstructure:"top_k"`
	TopP            float64 `json:"top_p" yaml:"top_p" mapstructure:"top_p"`
	MaxOutputTokens int     `json:"max_output_tokens" yaml:"max_output_tokens" mapstructure:"max_output_tokens"`

	// RateLimitRetries is the number of retries on HTTP 429. Zero disables retries.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// OverlayConfig holds settings for the overlay stage.
type OverlayConfig struct {
	// FontPath is a TrueType/OpenType font file. When it cannot be loaded the
	// renderer falls back to a built-in bitmap face.
	FontPath string `json:"font_path" yaml:"font_path" mapstructure:"font_path"`

	// FontSize is the point size used with FontPath.
	FontSize float64 `json:"font_size" yaml:"font_size" mapstructure:"font_size"`

	// Padding is the white margin drawn around the label, in pixels.
	Padding int `json:"padding" yaml:"padding" mapstructure:"padding"`
}

// ProjectConfig holds settings for the project store.
type ProjectConfig struct {
	// UploadsDir receives copies of uploaded source PDFs.
	UploadsDir string `json:"uploads_dir" yaml:"uploads_dir" mapstructure:"uploads_dir"`

	// ProjectsDir holds the SQLite database and its exports.
	ProjectsDir string `json:"projects_dir" yaml:"projects_dir" mapstructure:"projects_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Layout      LayoutConfig      `json:"layout" yaml:"layout" mapstructure:"layout"`
	OCR         OCRConfig         `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Translation TranslationConfig `json:"translation" yaml:"translation" mapstructure:"translation"`
	Overlay     OverlayConfig     `json:"overlay" yaml:"overlay" mapstructure:"overlay"`
	Project     ProjectConfig     `json:"project" yaml:"project" mapstructure:"project"`
}

// DefaultPipelineConfig returns the fixed layout and request parameters the
// stage scripts have always used.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Layout: LayoutConfig{
			InputPDF:       "input/main-raw.pdf",
			ImageDir:       "output",
			OCRDir:         "ocr_results",
			TranslationDir: "translations",
			OverlayDir:     "overlayed",
			OutputPDF:      "final_translated_output.pdf",
			ManifestPath:   "manifest.yaml",
		},
		OCR: OCRConfig{
			Engine:         EngineTesseract,
			Language:       "kor",
			ContainerImage: "easyocr:latest",
		},
		Translation: TranslationConfig{
			AIConfig: AIConfig{
				Model: "gemini-1.5-flash-latest",
			},
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         30 * time.Second,
			Temperature:     0.3,
			TopK:            40,
			TopP:            0.8,
			MaxOutputTokens: 256,
		},
		Overlay: OverlayConfig{
			FontPath: "arial.ttf",
			FontSize: 20,
			Padding:  5,
		},
		Project: ProjectConfig{
			UploadsDir:  "uploads",
			ProjectsDir: "projects",
		},
	}
}
