package pdfocr

// pixelsToPoints converts an image length in pixels to PDF points at dpi.
// A non-positive dpi maps one pixel to one point.
func pixelsToPoints(px, dpi float64) float64 {
	if dpi <= 0 {
		return px
	}
	return px * 72 / dpi
}

// normalizeCoords rescales a point in hOCR pixel space to PDF page space.
func normalizeCoords(x, y, hocrW, hocrH, pdfW, pdfH float64) (float64, float64) {
	return x * pdfW / hocrW, y * pdfH / hocrH
}
