package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract embedded images from the source PDF",
	Long: `Extract walks the pages of the source PDF in order and writes every
embedded image to the image directory as {index}.{ext}, numbering images
from 1 across the whole document. A PDF without images is an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l := cfg.Layout
		_, err = extract.ExtractImages(cmd.Context(), l.InputPDF, l.ImageDir, l.ManifestPath, os.Stdout)
		return err
	},
}

func init() {
	addLayoutFlags(extractCmd, "input", "image-dir")
	rootCmd.AddCommand(extractCmd)
}
