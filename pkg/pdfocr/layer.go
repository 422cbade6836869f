package pdfocr

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrspell/pkg/hocr"
)

// textLayer draws the words of one hOCR page as an optional content layer.
// Words are written in Latin-1 since the core PDF fonts use that encoding.
type textLayer struct {
	pdf       *fpdf.Fpdf
	config    OCRConfig
	transform func(x, y float64) (float64, float64)
	encoder   *encoding.Encoder

	words       int
	substituted int
}

func newTextLayer(pdf *fpdf.Fpdf, config OCRConfig, transform func(x, y float64) (float64, float64)) *textLayer {
	return &textLayer{
		pdf:       pdf,
		config:    config,
		transform: transform,
		encoder:   charmap.ISO8859_1.NewEncoder(),
	}
}

// draw renders page on its own layer named after config.LayerName and
// pageNum. It fails when more than a tenth of the words could not be
// represented in Latin-1.
func (l *textLayer) draw(page hocr.Page, pageNum int) error {
	name := l.config.LayerName
	if pageNum > 0 {
		name = fmt.Sprintf("%s (Page %d)", name, pageNum)
	}

	font := l.config.Font
	id := l.pdf.AddLayer(name, true)
	l.pdf.BeginLayer(id)
	l.pdf.SetFont(font.Name, font.Style, font.Size)
	if l.config.Debug {
		l.pdf.SetTextColor(255, 0, 0)
	} else {
		l.pdf.SetAlpha(0, "Normal")
	}

	for _, line := range page.Lines {
		for _, word := range line.Words {
			if strings.TrimSpace(word.Text) == "" {
				continue
			}
			l.drawWord(word)
		}
	}

	if !l.config.Debug {
		l.pdf.SetAlpha(1, "Normal")
	}
	l.pdf.EndLayer()

	if l.words > 0 && l.substituted > l.words/10 {
		return fmt.Errorf("character encoding issues in %d of %d words", l.substituted, l.words)
	}
	return nil
}

// drawWord writes word at its box, stretched to the box width
func (l *textLayer) drawWord(word hocr.Word) {
	font := l.config.Font
	x, y := l.transform(word.BBox.X1, word.BBox.Y1)
	x2, y2 := l.transform(word.BBox.X2, word.BBox.Y2)
	width := x2 - x

	text := l.latin1(word.Text)
	l.words++

	if sw := l.pdf.GetStringWidth(text); sw > 0 {
		l.pdf.SetFontSize(font.Size * width / sw)
	}
	size, _ := l.pdf.GetFontSize()
	baseline := y + size*font.AscentRatio

	l.pdf.Text(x, baseline, text)
	l.pdf.SetFontSize(font.Size)

	if l.config.Debug {
		l.pdf.Rect(x, y, width, y2-y, "D")
	}
}

// latin1 encodes s, replacing runes outside Latin-1 with '?'
func (l *textLayer) latin1(s string) string {
	if out, err := l.encoder.String(s); err == nil {
		return out
	}
	l.substituted++

	var b strings.Builder
	for _, r := range s {
		if enc, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteByte(enc)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
