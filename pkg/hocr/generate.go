package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(
	template.New("hocr.tmpl").
		Funcs(template.FuncMap{"trim": strings.TrimSpace}).
		ParseFS(templateFS, "templates/hocr.tmpl"),
)

// GenerateHOCRDocument renders doc as an XHTML hOCR document.
// Word text and attribute values are HTML escaped.
func GenerateHOCRDocument(doc *HOCR) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("no hOCR document provided")
	}
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}
