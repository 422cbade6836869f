package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// ToAnnotateImageResponse flattens a Document AI document into a Vision
// style response. Tokens of all pages are listed in page order; tokens
// without text are dropped.
func ToAnnotateImageResponse(doc *documentaipb.Document) *visionpb.AnnotateImageResponse {
	resp := &visionpb.AnnotateImageResponse{}
	if doc == nil {
		return resp
	}

	summary := &visionpb.EntityAnnotation{
		Description: doc.GetText(),
		Locale:      documentLanguage(doc),
	}
	if pages := doc.GetPages(); len(pages) > 0 {
		summary.BoundingPoly = boundingPoly(pages[0].GetLayout(), pages[0].GetDimension())
	}
	resp.TextAnnotations = append(resp.TextAnnotations, summary)

	fullText := []rune(doc.GetText())
	for _, page := range doc.GetPages() {
		for _, token := range page.GetTokens() {
			text := strings.TrimSpace(anchorText(token.GetLayout().GetTextAnchor(), fullText))
			if text == "" {
				continue
			}
			resp.TextAnnotations = append(resp.TextAnnotations, &visionpb.EntityAnnotation{
				Description:  text,
				BoundingPoly: boundingPoly(token.GetLayout(), page.GetDimension()),
			})
		}
	}
	return resp
}

// boundingPoly converts a Document AI layout polygon into a Vision polygon.
// Pixel vertices are used when present, otherwise normalized vertices are
// scaled by the page dimension.
func boundingPoly(layout *documentaipb.Document_Page_Layout, dimension *documentaipb.Document_Page_Dimension) *visionpb.BoundingPoly {
	poly := layout.GetBoundingPoly()
	if poly == nil {
		return nil
	}

	out := &visionpb.BoundingPoly{}
	if vertices := poly.GetVertices(); len(vertices) > 0 {
		for _, v := range vertices {
			out.Vertices = append(out.Vertices, &visionpb.Vertex{X: v.GetX(), Y: v.GetY()})
		}
		return out
	}

	for _, v := range poly.GetNormalizedVertices() {
		out.NormalizedVertices = append(out.NormalizedVertices, &visionpb.NormalizedVertex{X: v.GetX(), Y: v.GetY()})
		if dimension != nil {
			out.Vertices = append(out.Vertices, &visionpb.Vertex{
				X: int32(v.GetX()*dimension.GetWidth() + 0.5),
				Y: int32(v.GetY()*dimension.GetHeight() + 0.5),
			})
		}
	}
	return out
}

// documentLanguage returns the most confident language of the first page
func documentLanguage(doc *documentaipb.Document) string {
	pages := doc.GetPages()
	if len(pages) == 0 {
		return ""
	}
	var best *documentaipb.Document_Page_DetectedLanguage
	for _, l := range pages[0].GetDetectedLanguages() {
		if best == nil || l.GetConfidence() > best.GetConfidence() {
			best = l
		}
	}
	return best.GetLanguageCode()
}

// anchorText concatenates the segments of anchor out of text. Segment
// offsets index code points and are clamped to the text.
func anchorText(anchor *documentaipb.Document_TextAnchor, text []rune) string {
	var b strings.Builder
	n := int64(len(text))
	for _, seg := range anchor.GetTextSegments() {
		start := min(max(seg.GetStartIndex(), 0), n)
		end := min(max(seg.GetEndIndex(), start), n)
		b.WriteString(string(text[start:end]))
	}
	return b.String()
}
