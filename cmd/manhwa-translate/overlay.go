package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/overlay"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Draw the translations onto the extracted images",
	Long: `Overlay writes one image per extracted image to the overlay directory.
When an image has translations, the first one is drawn in black on a white
box at the center of the image; otherwise the image is copied unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l := cfg.Layout
		_, err = overlay.OverlayAll(cmd.Context(), overlay.NewRenderer(cfg.Overlay),
			l.ImageDir, l.OCRDir, l.TranslationDir, l.OverlayDir, l.ManifestPath, os.Stdout)
		return err
	},
}

func init() {
	addLayoutFlags(overlayCmd, "image-dir", "ocr-dir", "translation-dir", "overlay-dir")
	overlayCmd.Flags().String("font", "", "TrueType/OpenType font file")
	rootCmd.AddCommand(overlayCmd)
}
