//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func runBinary(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Extract pulls the embedded page images out of input/main-raw.pdf.
func Extract() error {
	mg.Deps(Build, Init)
	return runBinary("extract")
}

// OCR recognizes Korean text in every extracted image.
func OCR() error {
	mg.Deps(Build)
	return runBinary("ocr")
}

// Translate sends the recognized text to the translation API.
func Translate() error {
	mg.Deps(Build)
	return runBinary("translate")
}

// Overlay draws the translations onto the page images.
func Overlay() error {
	mg.Deps(Build)
	return runBinary("overlay")
}

// Assemble writes final_translated_output.pdf from the overlaid images.
func Assemble() error {
	mg.Deps(Build)
	return runBinary("assemble")
}

// Review writes review.xlsx pairing source text with translations.
func Review() error {
	mg.Deps(Build)
	return runBinary("review")
}

// Pipeline runs every stage in order.
func Pipeline() error {
	mg.Deps(Build, Init)
	return runBinary("run")
}
