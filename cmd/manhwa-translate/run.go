// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/overlay"
	"github.com/pdiddy/manhwa-translate/internal/pipeline"
	"github.com/pdiddy/manhwa-translate/internal/project"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all five stages in order",
	Long: `Run chains extract, ocr, translate, overlay and assemble. Stages still
communicate only through their directories, so a failed run can be resumed
stage by stage.

With --project the stored upload of that project is copied to the input PDF
path first, and the project is marked completed or failed when the run ends.
The stage directories are cleared before the run unless --clean=false.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stages, err := newStages(cfg)
	if err != nil {
		return err
	}

	projectID, _ := cmd.Flags().GetString("project")
	clean, _ := cmd.Flags().GetBool("clean")

	if projectID == "" {
		if clean {
			if err := pipeline.Clean(cfg.Layout); err != nil {
				return err
			}
		}
		res, err := pipeline.Run(cmd.Context(), cfg, stages, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("\nDone: %d page(s) written to %s\n", res.Pages, res.Output)
		return nil
	}

	store, err := project.Open(cfg.Project)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := pipeline.RunProject(cmd.Context(), store, projectID, cfg, stages, clean, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nProject %s %s: %s\n", p.ID, p.Status, p.TranslatedPDFPath)
	return nil
}

// newStages builds the engine, backend and renderer from cfg. The API key is
// checked here so a missing key fails before any stage runs.
func newStages(cfg types.PipelineConfig) (pipeline.Stages, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return pipeline.Stages{}, err
	}
	engine, err := newEngine(cfg.OCR)
	if err != nil {
		return pipeline.Stages{}, err
	}
	return pipeline.Stages{
		Engine:   engine,
		Backend:  backend,
		Renderer: overlay.NewRenderer(cfg.Overlay),
	}, nil
}

func init() {
	addLayoutFlags(runCmd, "input", "image-dir", "ocr-dir", "translation-dir", "overlay-dir", "output")
	runCmd.Flags().String("project", "", "run the pipeline for a stored project ID")
	runCmd.Flags().Bool("clean", true, "clear the stage directories and manifest before running")
	runCmd.Flags().String("engine", "", "OCR engine: tesseract or easyocr")
	runCmd.Flags().String("model", "", "translation model identifier")
	runCmd.Flags().Int("retries", 0, "retries on HTTP 429")
	runCmd.Flags().String("font", "", "TrueType/OpenType font file")

	rootCmd.AddCommand(runCmd)
}
