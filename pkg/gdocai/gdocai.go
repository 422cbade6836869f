// Package gdocai uses Google Document AI as a text detection provider.
//
// Document AI returns a Document with pages of tokens anchored into the
// document text. This package flattens that into the Vision API
// AnnotateImageResponse shape used by the rest of ocrspell: entry 0 holds
// the document text, then one entry per token in reading order with its
// bounding polygon in pixels.
//
// Main Functions:
//
// - ProcessDocument: Sends image bytes to a Document AI processor
// - ToAnnotateImageResponse: Converts a Document into an annotation response
// - New / Annotator.Annotate: Both steps behind the textproc Annotator interface
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
package gdocai

import (
	"context"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// Config holds the Document AI processor settings
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Annotator detects text with Document AI
type Annotator struct {
	cfg *Config
}

// New returns an Annotator for the processor in cfg
func New(cfg *Config) (*Annotator, error) {
	if cfg == nil || cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("documentai project_id, location and processor_id are required")
	}
	return &Annotator{cfg: cfg}, nil
}

// Annotate processes the image and converts the result
func (a *Annotator) Annotate(ctx context.Context, image []byte) (*visionpb.AnnotateImageResponse, error) {
	doc, err := ProcessDocument(ctx, image, a.cfg)
	if err != nil {
		return nil, err
	}
	return ToAnnotateImageResponse(doc), nil
}
