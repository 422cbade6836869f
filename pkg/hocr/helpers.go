package hocr

import (
	"fmt"
	"strings"
)

// ExtractHOCRText extracts all text from an HOCR document
// Words are joined by spaces, lines by newlines and pages by blank lines
func ExtractHOCRText(hocrDoc *HOCR) string {
	var builder strings.Builder

	for i, page := range hocrDoc.Pages {
		if i > 0 {
			builder.WriteString("\n")
		}
		for _, line := range page.Lines {
			extractLineText(&builder, line)
		}
	}

	return builder.String()
}

// extractLineText writes the words of a line and a newline
func extractLineText(builder *strings.Builder, line Line) {
	for i, word := range line.Words {
		if i > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(word.Text)
	}
	builder.WriteString("\n")
}

// formatBBox renders a bounding box the way hOCR title attributes expect
func formatBBox(b BoundingBox) string {
	return fmt.Sprintf("bbox %.0f %.0f %.0f %.0f", b.X1, b.Y1, b.X2, b.Y2)
}
