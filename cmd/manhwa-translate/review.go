package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Write a spreadsheet pairing recognized text with translations",
	Long: `Review writes an XLSX workbook with one row per OCR record: page, region,
source text, confidence and translation. Rows whose translation failed are
highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		_, err = review.Build(cmd.Context(), cfg.Layout.OCRDir, cfg.Layout.TranslationDir, out, os.Stdout)
		return err
	},
}

func init() {
	addLayoutFlags(reviewCmd, "ocr-dir", "translation-dir")
	reviewCmd.Flags().String("out", "review.xlsx", "workbook path")
	rootCmd.AddCommand(reviewCmd)
}
