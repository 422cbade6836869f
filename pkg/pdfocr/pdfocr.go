// Package pdfocr assembles searchable PDFs from page images and hOCR data.
//
// Each image becomes a PDF page of the same size in points, and the hOCR
// words are drawn on an optional content layer at their bounding boxes.
// The text is:
// - Fully searchable
// - Selectable with mouse drag operations
// - Can be toggled on/off in compatible PDF readers
//
// Main Functions:
//
// - AssembleWithOCR: Creates a new PDF from images with OCR text layer
package pdfocr

import (
	"fmt"
	"io"

	"github.com/gardar/ocrspell/pkg/hocr"
)

// AssembleWithOCR creates a PDF from images and overlays the text of the
// matching hOCR pages.
func AssembleWithOCR(hocrDoc *hocr.HOCR, imagesData [][]byte, config OCRConfig) ([]byte, error) {
	if hocrDoc == nil {
		return nil, fmt.Errorf("HOCR struct is nil")
	}

	// Validate inputs
	if len(hocrDoc.Pages) == 0 {
		return nil, fmt.Errorf("HOCR data contains no pages")
	}
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if config.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", config.StartPage)
	}

	// Check if we have enough images for hOCR pages
	if len(imagesData) < len(hocrDoc.Pages) {
		return nil, fmt.Errorf("not enough images (%d) for HOCR pages (%d)",
			len(imagesData), len(hocrDoc.Pages))
	}

	// Validate image formats
	for i, imgData := range imagesData {
		if len(imgData) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		imageType, err := detectImageType(imgData)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		if config.Debug {
			fmt.Fprintf(getLogger(config), "Image %d is of type: %s\n", i+1, imageType)
		}
	}

	finalPDF, err := createPDFFromImage(*hocrDoc, imagesData, config)
	if err != nil {
		return nil, fmt.Errorf("error creating PDF from images: %w", err)
	}
	return finalPDF, nil
}

// getLogger returns the writer for debug output, io.Discard if none is set
func getLogger(config OCRConfig) io.Writer {
	if config.Logger == nil {
		return io.Discard
	}
	return config.Logger
}
