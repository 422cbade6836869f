// Package gvision detects text in images with the Google Cloud Vision API.
//
// The client sends a TEXT_DETECTION request and returns the
// AnnotateImageResponse untouched: TextAnnotations[0] is the full text,
// the remaining entries are single words with their bounding polygons.
//
// Usage Requirements:
//
// - Google Cloud project with the Vision API enabled
// - Authentication via a credentials file or GOOGLE_APPLICATION_CREDENTIALS
package gvision

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// Config holds the Vision API connection settings
type Config struct {
	Endpoint        string // e.g. "eu-vision.googleapis.com:443"; empty uses the global endpoint
	CredentialsFile string // empty falls back to GOOGLE_APPLICATION_CREDENTIALS
	LanguageHints   []string
	Retry           RetryConfig
}

// Client detects text through the Vision API
type Client struct {
	client *vision.ImageAnnotatorClient
	cfg    Config
}

// New creates a Vision API client. Close it when done.
func New(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	credentials := cfg.CredentialsFile
	if credentials == "" {
		credentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}
	return &Client{client: client, cfg: cfg}, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Annotate runs text detection on the image bytes
func (c *Client) Annotate(ctx context.Context, image []byte) (*visionpb.AnnotateImageResponse, error) {
	req := NewTextDetectionRequest(image, c.cfg.LanguageHints)
	return annotate(ctx, c.client.BatchAnnotateImages, req, c.cfg.Retry)
}

// batchCall matches ImageAnnotatorClient.BatchAnnotateImages
type batchCall func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)

// annotate sends req through call. Failed RPCs are retried by gax; an error
// status inside the response is retried here under the same policy.
func annotate(ctx context.Context, call batchCall, req *visionpb.BatchAnnotateImagesRequest, rc RetryConfig) (*visionpb.AnnotateImageResponse, error) {
	retryer := rc.retryer()
	for {
		resp, err := call(ctx, req, gax.WithRetry(rc.retryer))
		if err != nil {
			return nil, fmt.Errorf("failed to detect text: %w", err)
		}
		r, err := firstResponse(resp)
		if err == nil {
			return r, nil
		}
		pause, ok := retryer.Retry(err)
		if !ok {
			return nil, err
		}
		if err := gax.Sleep(ctx, pause); err != nil {
			return nil, err
		}
	}
}

// NewTextDetectionRequest builds a single image TEXT_DETECTION request
func NewTextDetectionRequest(image []byte, languageHints []string) *visionpb.BatchAnnotateImagesRequest {
	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: image},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_TEXT_DETECTION},
		},
	}
	if len(languageHints) > 0 {
		req.ImageContext = &visionpb.ImageContext{LanguageHints: languageHints}
	}
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	}
}

// firstResponse unwraps the single response of a batch, turning an
// embedded error status into a Go error.
func firstResponse(resp *visionpb.BatchAnnotateImagesResponse) (*visionpb.AnnotateImageResponse, error) {
	responses := resp.GetResponses()
	if len(responses) != 1 {
		return nil, fmt.Errorf("expected 1 response from Vision API, got %d", len(responses))
	}
	r := responses[0]
	if st := r.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("text detection failed: %w", status.ErrorProto(st))
	}
	return r, nil
}
