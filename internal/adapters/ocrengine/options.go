package ocrengine

// Default OCR configuration constants.
const (
	defaultLanguage = "eng"
	defaultUpscale  = 2.0
	defaultContrast = 20.0
)

// Option applies a configuration option to the TesseractEngine.
type Option func(*TesseractEngine)

// WithLanguage sets the tesseract language model.
func WithLanguage(lang string) Option {
	return func(e *TesseractEngine) {
		if lang != "" {
			e.language = lang
		}
	}
}

// WithUpscale sets the preprocessing upscale factor. Result screens are
// small; upscaling before recognition markedly improves digit accuracy.
func WithUpscale(factor float64) Option {
	return func(e *TesseractEngine) {
		if factor >= 1 {
			e.upscale = factor
		}
	}
}
