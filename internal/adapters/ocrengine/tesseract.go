package ocrengine

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// TesseractEngine implements Engine with a local tesseract install.
type TesseractEngine struct {
	language string
	upscale  float64
	contrast float64
}

// NewTesseractEngine creates an engine with configuration options.
func NewTesseractEngine(opts ...Option) *TesseractEngine {
	e := &TesseractEngine{
		language: defaultLanguage,
		upscale:  defaultUpscale,
		contrast: defaultContrast,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lines runs preprocessing and recognition on one screenshot.
func (e *TesseractEngine) Lines(ctx context.Context, img image.Image, screenshot int) ([]model.RawLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, e.preprocess(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("ocr encode: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("ocr language %q: %w", e.language, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("ocr set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("ocr recognize: %w", err)
	}
	return linesFromText(text, screenshot), nil
}

// preprocess grayscales, upscales and sharpens the screenshot so small
// result-table glyphs survive recognition.
func (e *TesseractEngine) preprocess(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	if e.upscale > 1 {
		w := int(float64(img.Bounds().Dx()) * e.upscale)
		out = imaging.Resize(out, w, 0, imaging.Lanczos)
	}
	out = imaging.AdjustContrast(out, e.contrast)
	return imaging.Sharpen(out, 1.0)
}
