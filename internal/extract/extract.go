// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls embedded raster images out of a source PDF and writes
// them as numbered files. It is the first stage of the translation pipeline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/manhwa-translate/internal/workdir"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// ErrNoImages is returned when the document holds no embedded images on any page.
var ErrNoImages = errors.New("no images found in the PDF file")

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Image is one embedded image in extraction order.
type Image struct {
	// Index is the 1-based position across the whole document.
	Index int

	// Page is the 1-based page the image was found on.
	Page int

	// ObjNr is the PDF object number of the image XObject.
	ObjNr int

	// Ext is the file extension of the image's native encoding (e.g. "png", "jpg").
	Ext string

	Data []byte
}

// Filename returns the output name "{index}.{ext}".
func (img Image) Filename() string {
	return strconv.Itoa(img.Index) + "." + img.Ext
}

// Summary reports what an extraction run wrote.
type Summary struct {
	Pages  int
	Images int
}

// Enumerate lists every embedded image page by page in document order.
// Within a page images are ordered by object number. Indexes run across the
// whole document; an image reused on several pages is listed once per page.
func Enumerate(ctx context.Context, rs io.ReadSeeker) ([]Image, int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, 0, fmt.Errorf("reading PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, 0, fmt.Errorf("validating PDF: %w", err)
	}
	// Optimization builds the per-page resource index ExtractPageImages reads.
	if err := api.OptimizeContext(pdfCtx); err != nil {
		return nil, 0, fmt.Errorf("indexing PDF resources: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, 0, fmt.Errorf("counting pages: %w", err)
	}

	var images []Image
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		byObj, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			return nil, 0, fmt.Errorf("extracting images on page %d: %w", pageNr, err)
		}

		objNrs := make([]int, 0, len(byObj))
		for objNr := range byObj {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := byObj[objNr]
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, 0, fmt.Errorf("reading image object %d on page %d: %w", objNr, pageNr, err)
			}
			images = append(images, Image{
				Index: len(images) + 1,
				Page:  pageNr,
				ObjNr: objNr,
				Ext:   img.FileType,
				Data:  data,
			})
		}
	}

	return images, pdfCtx.PageCount, nil
}

// ExtractImages writes every embedded image of the PDF at pdfPath to outDir
// as "{index}.{ext}" and records one page entry per image in the manifest at
// manifestPath (empty disables the manifest). It returns ErrNoImages, writing
// nothing, when the document holds no images.
func ExtractImages(ctx context.Context, pdfPath, outDir, manifestPath string, w io.Writer) (Summary, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return Summary{}, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	images, pages, err := Enumerate(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	if len(images) == 0 {
		return Summary{Pages: pages}, ErrNoImages
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	for _, img := range images {
		path := filepath.Join(outDir, img.Filename())
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return Summary{}, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(w, "extracted %s (page %d)\n", img.Filename(), img.Page)
	}

	err = workdir.UpdateManifest(manifestPath, func(m *types.Manifest) {
		m.Source = pdfPath
		m.Output = ""
		m.Pages = make([]types.PageEntry, 0, len(images))
		for _, img := range images {
			m.Pages = append(m.Pages, types.PageEntry{
				ID:    strconv.Itoa(img.Index),
				Image: filepath.Join(outDir, img.Filename()),
			})
		}
	})
	if err != nil {
		return Summary{}, fmt.Errorf("updating manifest: %w", err)
	}

	summary := Summary{Pages: pages, Images: len(images)}
	fmt.Fprintf(w, "\nExtracted %d image(s) from %d page(s)\n", summary.Images, summary.Pages)
	return summary, nil
}
