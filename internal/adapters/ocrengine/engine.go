// Package ocrengine adapts an OCR backend to the pipeline's RawLine input.
//
// The core treats OCR as a black box producing ordered text lines; this
// package is the only place that knows about tesseract.
package ocrengine

import (
	"context"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Engine produces ordered raw text lines from one screenshot image.
type Engine interface {
	Lines(ctx context.Context, img image.Image, screenshot int) ([]model.RawLine, error)
}

// DecodeImage reads a screenshot upload into an image.
func DecodeImage(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}

// linesFromText splits OCR output into RawLines, preserving top-to-bottom
// order and dropping blank lines only.
func linesFromText(text string, screenshot int) []model.RawLine {
	var out []model.RawLine
	for i, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		out = append(out, model.RawLine{Text: ln, Screenshot: screenshot, Position: i})
	}
	return out
}
