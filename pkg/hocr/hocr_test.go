package hocr

import (
	"bytes"
	"image"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func rect(x1, y1, x2, y2 int32) *visionpb.BoundingPoly {
	return &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
		{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
	}}
}

func sampleResponse() *visionpb.AnnotateImageResponse {
	return &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{
			{Description: "Helo wrold\nTom & Jerry", Locale: "en", BoundingPoly: rect(0, 0, 300, 100)},
			{Description: "Hello", BoundingPoly: rect(10, 10, 60, 30), Score: 0.98},
			{Description: "world", BoundingPoly: rect(70, 12, 130, 32)},
			{Description: "Tom", BoundingPoly: rect(10, 50, 50, 70)},
			{Description: "&", BoundingPoly: rect(55, 50, 65, 70)},
			{Description: "Jerry", BoundingPoly: rect(70, 51, 120, 71)},
			{Description: "nowhere"},
		},
	}
}

func TestFromAnnotations(t *testing.T) {
	doc := FromAnnotations(sampleResponse(), "scan.png", 300, 100)

	assert.Equal(t, "en", doc.Language)
	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	assert.Equal(t, NewBoundingBox(0, 0, 300, 100), page.BBox)
	assert.Equal(t, "scan.png", page.ImageName)

	require.Len(t, page.Lines, 2)
	assert.Len(t, page.Lines[0].Words, 2)
	assert.Len(t, page.Lines[1].Words, 3)
	assert.Equal(t, NewBoundingBox(10, 10, 130, 32), page.Lines[0].BBox)
	assert.Equal(t, NewBoundingBox(10, 50, 120, 71), page.Lines[1].BBox)
	assert.InDelta(t, 98.0, page.Lines[0].Words[0].Confidence, 0.01)

	assert.Equal(t, "Hello world\nTom & Jerry\n", ExtractHOCRText(doc))
}

func TestGenerateHOCRDocument(t *testing.T) {
	html, err := GenerateHOCRDocument(FromAnnotations(sampleResponse(), "scan.png", 300, 100))
	require.NoError(t, err)

	assert.Contains(t, html, `class="ocr_page"`)
	assert.Contains(t, html, `class="ocr_line"`)
	assert.Contains(t, html, `class="ocrx_word"`)
	assert.Contains(t, html, `bbox 10 10 60 30; x_wconf 98`)
	assert.Contains(t, html, ">Hello</span>")
	assert.Contains(t, html, ">&amp;</span>")
	assert.NotContains(t, html, "nowhere")
}

func TestFromAnnotationsEmpty(t *testing.T) {
	doc := FromAnnotations(&visionpb.AnnotateImageResponse{}, "blank.png", 10, 10)
	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].Lines)
	assert.Empty(t, ExtractHOCRText(doc))
}

func TestImageSize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 25))
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	w, h, err := ImageSize(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 25, h)

	_, _, err = ImageSize([]byte("nope"))
	assert.Error(t, err)
}
