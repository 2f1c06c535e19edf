// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the five stages in-process. Stages still exchange
// data only through the working directories.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/manhwa-translate/internal/assemble"
	"github.com/pdiddy/manhwa-translate/internal/extract"
	"github.com/pdiddy/manhwa-translate/internal/overlay"
	"github.com/pdiddy/manhwa-translate/internal/project"
	"github.com/pdiddy/manhwa-translate/internal/recognize"
	"github.com/pdiddy/manhwa-translate/internal/translate"
	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Stages holds the pluggable parts of a run.
type Stages struct {
	Engine   recognize.Engine
	Backend  translate.Backend
	Renderer *overlay.Renderer
}

// Result collects the per-stage summaries of a run.
type Result struct {
	Extract   extract.Summary
	Recognize recognize.Summary
	Translate translate.Summary
	Overlay   overlay.Summary
	Pages     int
	Output    string
}

// Run executes extract, ocr, translate, overlay and assemble in order over
// the layout in cfg. The first stage error stops the run.
func Run(ctx context.Context, cfg types.PipelineConfig, st Stages, w io.Writer) (Result, error) {
	l := cfg.Layout
	var res Result

	step := func(name string, fn func() error) error {
		start := time.Now()
		fmt.Fprintf(w, "== %s ==\n", name)
		if err := fn(); err != nil {
			slog.Error("pipeline.stage_failed", "stage", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}
		slog.Info("pipeline.stage_done", "stage", name, "elapsed_ms", time.Since(start).Milliseconds())
		return nil
	}

	if err := step("extract", func() (err error) {
		res.Extract, err = extract.ExtractImages(ctx, l.InputPDF, l.ImageDir, l.ManifestPath, w)
		return err
	}); err != nil {
		return res, err
	}
	if err := step("ocr", func() (err error) {
		res.Recognize, err = recognize.RecognizeAll(ctx, st.Engine, l.ImageDir, l.OCRDir, l.ManifestPath, w)
		return err
	}); err != nil {
		return res, err
	}
	if err := step("translate", func() (err error) {
		res.Translate, err = translate.TranslateAll(ctx, st.Backend, l.OCRDir, l.TranslationDir, l.ManifestPath, w)
		return err
	}); err != nil {
		return res, err
	}
	if err := step("overlay", func() (err error) {
		res.Overlay, err = overlay.OverlayAll(ctx, st.Renderer, l.ImageDir, l.OCRDir, l.TranslationDir, l.OverlayDir, l.ManifestPath, w)
		return err
	}); err != nil {
		return res, err
	}
	if err := step("assemble", func() (err error) {
		res.Pages, err = assemble.Assemble(ctx, l.OverlayDir, l.OutputPDF, l.ManifestPath, w)
		return err
	}); err != nil {
		return res, err
	}

	res.Output = l.OutputPDF
	return res, nil
}

// Clean empties the stage directories and removes the manifest.
func Clean(l types.LayoutConfig) error {
	if err := workdir.Reset(l.StageDirs()...); err != nil {
		return err
	}
	if l.ManifestPath != "" {
		if err := os.Remove(l.ManifestPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing manifest: %w", err)
		}
	}
	return nil
}

// RunProject runs the pipeline for a stored project: its upload is copied to
// the input PDF path, the stage directories are cleared when clean is set,
// and the project ends completed with an archived copy of the output or
// failed with the error.
func RunProject(ctx context.Context, store *project.Store, id string, cfg types.PipelineConfig, st Stages, clean bool, w io.Writer) (*types.Project, error) {
	p, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.Start(ctx, id); err != nil {
		return nil, err
	}

	res, runErr := runForProject(ctx, p, cfg, st, clean, w)

	m, err := workdir.LoadManifest(cfg.Layout.ManifestPath)
	if err != nil {
		m = &types.Manifest{}
	}

	// Record the outcome even when ctx was cancelled mid-run.
	recordCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		if err := store.Fail(recordCtx, id, runErr, m.Pages); err != nil {
			return nil, fmt.Errorf("recording failure (%v): %w", runErr, err)
		}
		return nil, runErr
	}

	archived, err := store.Archive(id, res.Output)
	if err != nil {
		_ = store.Fail(recordCtx, id, err, m.Pages)
		return nil, err
	}
	if err := store.Complete(recordCtx, id, archived, m.Pages); err != nil {
		return nil, err
	}
	return store.Get(recordCtx, id)
}

func runForProject(ctx context.Context, p *types.Project, cfg types.PipelineConfig, st Stages, clean bool, w io.Writer) (Result, error) {
	input := cfg.Layout.InputPDF
	if dir := filepath.Dir(input); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("creating input directory: %w", err)
		}
	}
	data, err := os.ReadFile(p.PDFPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading upload: %w", err)
	}
	if err := os.WriteFile(input, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("copying upload to %s: %w", input, err)
	}

	if clean {
		if err := Clean(cfg.Layout); err != nil {
			return Result{}, err
		}
	}

	fmt.Fprintf(w, "Running project %s (%s)\n", p.ID, p.Title)
	return Run(ctx, cfg, st, w)
}
