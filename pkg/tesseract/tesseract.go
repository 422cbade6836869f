// Package tesseract detects text locally with Tesseract through gosseract.
// It needs no network access or credentials, which makes it useful for
// development and offline runs. Results use the same AnnotateImageResponse
// shape as the Vision API provider.
package tesseract

import (
	"context"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/otiai10/gosseract/v2"
)

// Config holds Tesseract settings
type Config struct {
	Languages []string `yaml:"languages"` // e.g. ["eng"]; empty uses Tesseract's default
}

// Annotator runs Tesseract on images
type Annotator struct {
	cfg Config
}

// New returns an Annotator
func New(cfg Config) *Annotator {
	return &Annotator{cfg: cfg}
}

// Annotate recognizes the words in image
func (a *Annotator) Annotate(ctx context.Context, image []byte) (*visionpb.AnnotateImageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(a.cfg.Languages) > 0 {
		if err := client.SetLanguage(a.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	resp := &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{{Description: text}},
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		r := box.Box
		resp.TextAnnotations = append(resp.TextAnnotations, &visionpb.EntityAnnotation{
			Description: box.Word,
			Score:       float32(box.Confidence / 100),
			BoundingPoly: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
				{X: int32(r.Min.X), Y: int32(r.Min.Y)},
				{X: int32(r.Max.X), Y: int32(r.Min.Y)},
				{X: int32(r.Max.X), Y: int32(r.Max.Y)},
				{X: int32(r.Min.X), Y: int32(r.Max.Y)},
			}},
		})
	}
	return resp, nil
}
