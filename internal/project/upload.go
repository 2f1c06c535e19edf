// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// CopyUpload copies srcPath into uploadsDir as "{unixmillis}-{name}" and
// returns the new path.
func CopyUpload(srcPath, uploadsDir string) (string, error) {
	if !strings.EqualFold(filepath.Ext(srcPath), ".pdf") {
		return "", fmt.Errorf("upload %s: only PDF files are accepted", srcPath)
	}
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	name := strconv.FormatInt(now().UnixMilli(), 10) + "-" + filepath.Base(srcPath)
	dst := filepath.Join(uploadsDir, name)
	if err := copyFile(srcPath, dst); err != nil {
		return "", fmt.Errorf("copying upload: %w", err)
	}
	return dst, nil
}

// DownloadName is the file name a translated PDF is delivered under.
func DownloadName(title string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "project"
	}
	return clean + "_translated.pdf"
}

// Archive copies a run's output PDF to ProjectsDir/{id}.pdf so later runs
// of other projects do not overwrite it, and returns the archived path.
func (s *Store) Archive(id, outputPDF string) (string, error) {
	dst := filepath.Join(s.dir, id+".pdf")
	if err := copyFile(outputPDF, dst); err != nil {
		return "", fmt.Errorf("archiving output of %s: %w", id, err)
	}
	return dst, nil
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Download copies the translated PDF of p into destDir under DownloadName
// and returns its path. It fails when the project has no translated PDF.
func Download(p *types.Project, destDir string) (string, error) {
	if p.TranslatedPDFPath == "" {
		return "", fmt.Errorf("project %s has no translated PDF (status %s)", p.ID, p.Status)
	}
	if _, err := os.Stat(p.TranslatedPDFPath); err != nil {
		return "", fmt.Errorf("translated PDF of %s: %w", p.ID, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating destination: %w", err)
	}
	dst := filepath.Join(destDir, DownloadName(p.Title))
	if err := copyFile(p.TranslatedPDFPath, dst); err != nil {
		return "", fmt.Errorf("copying translated PDF: %w", err)
	}
	return dst, nil
}
