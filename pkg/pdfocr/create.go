package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrspell/pkg/hocr"
)

// createPDFFromImage builds a new PDF from images with their corresponding OCR data.
// This function assumes inputs have been validated by the caller.
func createPDFFromImage(hOCRData hocr.HOCR, imagesData [][]byte, config OCRConfig) ([]byte, error) {
	startIdx := config.StartPage - 1
	pdf := fpdf.New("P", "pt", "A4", "")

	for i := startIdx; i < len(hOCRData.Pages) && i < len(imagesData); i++ {
		page := hOCRData.Pages[i]
		w, h := page.BBox.X2, page.BBox.Y2
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("page %d has no size", i+1)
		}
		pw, ph := pixelsToPoints(w, config.DPI), pixelsToPoints(h, config.DPI)

		// Calculate the actual page number (1-based)
		actualPageNum := i + 1

		// Add page with appropriate dimensions
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: pw, Ht: ph})

		// Add image to page
		imageName := fmt.Sprintf("img%d", i)
		imageType, err := detectImageType(imagesData[i])
		if err != nil {
			return nil, fmt.Errorf("failed to detect image type for image %d: %w", i, err)
		}

		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(imagesData[i]))
		pdf.ImageOptions(imageName, 0, 0, pw, ph, false, opts, 0, "")

		layer := newTextLayer(pdf, config, func(x, y float64) (float64, float64) {
			return normalizeCoords(x, y, w, h, pw, ph)
		})
		if err := layer.draw(page, actualPageNum); err != nil {
			return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", i+1, err)
		}
	}

	// Generate final PDF
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// detectImageType tries to figure out whether the data is PNG, JPEG or GIF,
// the formats fpdf can embed.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	switch format {
	case "png", "jpeg", "gif":
		return strings.ToUpper(format), nil
	default:
		return "", fmt.Errorf("unsupported image format %q for PDF embedding", format)
	}
}
