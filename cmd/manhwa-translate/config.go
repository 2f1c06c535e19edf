// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manhwa-translate/internal/container"
	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/internal/recognize/tesseract"
	"github.com/pdiddy/manhwa-translate/internal/secrets"
	"github.com/pdiddy/manhwa-translate/internal/translate"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// setConfigDefaults registers every key of the default configuration with
// viper so MANHWA_* environment variables can override any of them.
func setConfigDefaults() {
	data, err := yaml.Marshal(types.DefaultPipelineConfig())
	if err != nil {
		panic(fmt.Sprintf("marshaling default config: %v", err))
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("unmarshaling default config: %v", err))
	}
	setDefaults("", m)
	viper.SetDefault("translation.api_key", "")
}

func setDefaults(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig returns the pipeline configuration from defaults, the config
// file and the environment, with any flags set on cmd applied last.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	layoutFlags := map[string]*string{
		"input":           &cfg.Layout.InputPDF,
		"image-dir":       &cfg.Layout.ImageDir,
		"ocr-dir":         &cfg.Layout.OCRDir,
		"translation-dir": &cfg.Layout.TranslationDir,
		"overlay-dir":     &cfg.Layout.OverlayDir,
		"output":          &cfg.Layout.OutputPDF,
		"manifest":        &cfg.Layout.ManifestPath,
	}
	for name, dst := range layoutFlags {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	flags := cmd.Flags()
	if f := flags.Lookup("engine"); f != nil && f.Changed {
		cfg.OCR.Engine = types.OCREngine(f.Value.String())
	}
	if f := flags.Lookup("model"); f != nil && f.Changed {
		cfg.Translation.Model = f.Value.String()
	}
	if flags.Changed("retries") {
		cfg.Translation.RateLimitRetries, _ = flags.GetInt("retries")
	}
	if f := flags.Lookup("font"); f != nil && f.Changed {
		cfg.Overlay.FontPath = f.Value.String()
	}
	if noManifest, _ := flags.GetBool("no-manifest"); noManifest {
		cfg.Layout.ManifestPath = ""
	}
	return cfg, nil
}

// addLayoutFlags registers the directory flags named in names.
func addLayoutFlags(cmd *cobra.Command, names ...string) {
	def := types.DefaultPipelineConfig().Layout
	usage := map[string][2]string{
		"input":           {def.InputPDF, "source PDF"},
		"image-dir":       {def.ImageDir, "directory of extracted images"},
		"ocr-dir":         {def.OCRDir, "directory of OCR JSON files"},
		"translation-dir": {def.TranslationDir, "directory of translation text files"},
		"overlay-dir":     {def.OverlayDir, "directory of overlay images"},
		"output":          {def.OutputPDF, "assembled output PDF"},
	}
	for _, name := range names {
		u := usage[name]
		cmd.Flags().String(name, u[0], u[1])
	}
	cmd.Flags().String("manifest", def.ManifestPath, "pipeline manifest file")
	cmd.Flags().Bool("no-manifest", false, "do not read or write the manifest")
}

// resolveAPIKey fills the translation API key from GEMINI_API_KEY or the
// secrets directory when the configuration does not set one.
func resolveAPIKey(cfg *types.TranslationConfig) {
	if cfg.APIKey != "" {
		return
	}
	cfg.APIKey = secrets.Resolve(secrets.GeminiAPIKeyEnv, secrets.GeminiAPIKeyFile, loadedSecrets)
}

func newBackend(cfg types.PipelineConfig) (translate.Backend, error) {
	tc := cfg.Translation
	resolveAPIKey(&tc)
	backend, err := translate.NewGeminiBackend(tc)
	if err != nil {
		return nil, err
	}
	backend.Logger = slog.Default()
	return backend, nil
}

func newEngine(cfg types.OCRConfig) (recognize.Engine, error) {
	switch cfg.Engine {
	case types.EngineTesseract, "":
		return tesseract.New(cfg.Language), nil
	case types.EngineEasyOCR:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		if err := rt.ImageExists(cfg.ContainerImage); err != nil {
			return nil, fmt.Errorf("easyocr engine: %w", err)
		}
		slog.Debug("ocr.engine", "engine", "easyocr", "runtime", rt.Name(), "image", cfg.ContainerImage)
		return recognize.NewEasyOCREngine(rt, cfg.ContainerImage, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q: use tesseract or easyocr", cfg.Engine)
	}
}
