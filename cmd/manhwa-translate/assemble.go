package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/assemble"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the overlay images into the output PDF",
	Long: `Assemble writes every image in the overlay directory, in filename order,
as one page of the output PDF. Each page is the size of its image.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l := cfg.Layout
		_, err = assemble.Assemble(cmd.Context(), l.OverlayDir, l.OutputPDF, l.ManifestPath, os.Stdout)
		return err
	},
}

func init() {
	addLayoutFlags(assembleCmd, "overlay-dir", "output")
	rootCmd.AddCommand(assembleCmd)
}
