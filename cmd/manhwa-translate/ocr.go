package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/recognize"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Recognize Korean text in the extracted images",
	Long: `OCR runs text recognition over every .jpg, .jpeg and .png file in the
image directory, in filename order, and writes {stem}.json with one record
per text line: its bounding polygon, the trimmed text and a confidence.

The tesseract engine runs in-process; the easyocr engine runs an EasyOCR
container through docker or podman. Any recognition failure stops the stage.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg.OCR)
		if err != nil {
			return err
		}
		l := cfg.Layout
		_, err = recognize.RecognizeAll(cmd.Context(), engine, l.ImageDir, l.OCRDir, l.ManifestPath, os.Stdout)
		return err
	},
}

func init() {
	addLayoutFlags(ocrCmd, "image-dir", "ocr-dir")
	ocrCmd.Flags().String("engine", "", "OCR engine: tesseract or easyocr")
	rootCmd.AddCommand(ocrCmd)
}
