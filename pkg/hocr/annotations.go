package hocr

import (
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// FromAnnotations builds a single page HOCR document from the token
// annotations of resp (entry 0, the full text, is skipped). width and
// height are the image dimensions in pixels. Tokens without a usable
// bounding polygon are left out.
func FromAnnotations(resp *visionpb.AnnotateImageResponse, imageName string, width, height int) *HOCR {
	lang := ""
	annotations := resp.GetTextAnnotations()
	if len(annotations) > 0 {
		lang = annotations[0].GetLocale()
	}

	page := Page{
		ID:         "page_1",
		PageNumber: 1,
		ImageName:  imageName,
		Lang:       lang,
		BBox:       NewBoundingBox(0, 0, float64(width), float64(height)),
	}

	var line *Line
	for i := 1; i < len(annotations); i++ {
		a := annotations[i]
		box, ok := polyBox(a.GetBoundingPoly())
		if !ok {
			continue
		}
		word := Word{
			ID:         fmt.Sprintf("word_1_%d", i),
			Text:       a.GetDescription(),
			BBox:       box,
			Confidence: float64(a.GetScore() * 100),
		}

		if line == nil || !sameLine(line.BBox, box) {
			page.Lines = append(page.Lines, Line{
				ID:   fmt.Sprintf("line_1_%d", len(page.Lines)+1),
				BBox: box,
			})
			line = &page.Lines[len(page.Lines)-1]
		}
		line.Words = append(line.Words, word)
		line.BBox = line.BBox.Union(box)
	}

	return &HOCR{
		Title:    imageName,
		Language: lang,
		Metadata: map[string]string{"ocr-system": "ocrspell"},
		Pages:    []Page{page},
	}
}

// polyBox returns the axis aligned box around the pixel vertices of poly
func polyBox(poly *visionpb.BoundingPoly) (BoundingBox, bool) {
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return BoundingBox{}, false
	}
	box := NewBoundingBox(
		float64(vertices[0].GetX()), float64(vertices[0].GetY()),
		float64(vertices[0].GetX()), float64(vertices[0].GetY()),
	)
	for _, v := range vertices[1:] {
		x, y := float64(v.GetX()), float64(v.GetY())
		box = box.Union(NewBoundingBox(x, y, x, y))
	}
	if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
		return BoundingBox{}, false
	}
	return box, true
}

// sameLine reports whether the vertical centre of box falls inside line
func sameLine(line, box BoundingBox) bool {
	centre := (box.Y1 + box.Y2) / 2
	return centre >= line.Y1 && centre <= line.Y2
}
