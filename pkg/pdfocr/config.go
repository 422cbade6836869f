package pdfocr

import (
	"io"
)

// OCRConfig holds user options for building the OCR PDF
type OCRConfig struct {
	Debug     bool      // Draw text in red with word boxes instead of invisibly
	LayerName string    // Base name of OCR layer (page number will be appended)
	StartPage int       // First hOCR page to render (1-based)
	Logger    io.Writer // Debug output (nil = discard)
	DPI       float64   // Scan resolution; page size is pixels*72/DPI points
	Font      FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		Debug:     false,
		LayerName: "OCR Text", // Will be formatted as "OCR Text (Page X)" in the final PDF
		StartPage: 1,
		Logger:    nil,
		DPI:       300,
		Font:      DefaultFont,
	}
}

// FontConfig contains font settings for OCR text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont sets the default font to Helvetica which is tried and tested for the OCR layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}
