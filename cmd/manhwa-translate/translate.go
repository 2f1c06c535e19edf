package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate recognized text through the Gemini API",
	Long: `Translate sends every non-empty text block of every OCR file to the
Gemini generateContent endpoint and writes {stem}.txt with one English line
per block. A block whose request fails is written as [Translation Error]
and the run continues.

The API key is read from GEMINI_API_KEY (a .env file is loaded first) or
from .secrets/gemini-api-key. Without a key the stage fails before any
request is sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		backend, err := newBackend(cfg)
		if err != nil {
			return err
		}
		l := cfg.Layout
		summary, err := translate.TranslateAll(cmd.Context(), backend, l.OCRDir, l.TranslationDir, l.ManifestPath, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			fmt.Fprintf(os.Stderr, "warning: %d block(s) could not be translated\n", summary.Failed)
		}
		return nil
	},
}

func init() {
	addLayoutFlags(translateCmd, "ocr-dir", "translation-dir")
	translateCmd.Flags().String("model", "", "model identifier")
	translateCmd.Flags().Int("retries", 0, "retries on HTTP 429")
	rootCmd.AddCommand(translateCmd)
}
