// Package textproc runs images through OCR and spelling correction with a
// two tier disk cache in front of the OCR provider.
//
// For an image "scan.png" the processed tier holds {CacheDir}/scan.pb, the
// corrected response, and the raw tier holds {RawDir}/scan.pb, the response
// exactly as the provider returned it. A processed entry is returned as is;
// a raw entry is corrected again; only when both are missing is the
// provider called.
//
// Main Functions:
//
// - New: Creates a Processor from explicit directories and collaborators
// - Process: Returns the corrected response for an image and its Source
// - TokenText: Joins the token annotations of a response into plain text
package textproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"

	"github.com/gardar/ocrspell/pkg/cache"
	"github.com/gardar/ocrspell/pkg/correct"
)

// Source tells which tier produced a response
type Source string

const (
	SourceLocalCache  Source = "local cache"
	SourceRawCache    Source = "raw cache"
	SourceGoogleCloud Source = "Google Cloud"
	SourceTesseract   Source = "Tesseract"
)

func (s Source) String() string { return string(s) }

// Annotator turns image bytes into a text annotation response.
// Entry 0 is the full text, the remaining entries are single tokens.
type Annotator interface {
	Annotate(ctx context.Context, image []byte) (*visionpb.AnnotateImageResponse, error)
}

// Config holds the cache locations
type Config struct {
	CacheDir string // Processed tier
	RawDir   string // Raw tier
}

// Processor resolves images to corrected annotation responses.
// It is meant for use from one goroutine at a time.
type Processor struct {
	processed *cache.Store
	raw       *cache.Store
	annotator Annotator
	corrector *correct.Corrector
	remote    Source
	log       zerolog.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger, zerolog.Nop() by default
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithRemoteSource sets the label reported when the annotator was called,
// SourceGoogleCloud by default
func WithRemoteSource(s Source) Option {
	return func(p *Processor) { p.remote = s }
}

// New returns a Processor. Both directories are required and must differ.
func New(cfg Config, annotator Annotator, corrector *correct.Corrector, opts ...Option) (*Processor, error) {
	if cfg.CacheDir == "" || cfg.RawDir == "" {
		return nil, fmt.Errorf("cache and raw directories are required")
	}
	if filepath.Clean(cfg.CacheDir) == filepath.Clean(cfg.RawDir) {
		return nil, fmt.Errorf("cache and raw directories must differ, both are %s", cfg.CacheDir)
	}
	if annotator == nil {
		return nil, fmt.Errorf("no annotator provided")
	}
	if corrector == nil {
		return nil, fmt.Errorf("no corrector provided")
	}

	p := &Processor{
		processed: cache.New(cfg.CacheDir),
		raw:       cache.New(cfg.RawDir),
		annotator: annotator,
		corrector: corrector,
		remote:    SourceGoogleCloud,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CacheKey returns the cache key of an image path, its file name without
// the extension.
func CacheKey(imagePath string) string {
	base := filepath.Base(imagePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Process returns the corrected annotation response for the image at
// imagePath and the tier it came from.
func (p *Processor) Process(ctx context.Context, imagePath string) (*visionpb.AnnotateImageResponse, Source, error) {
	key := CacheKey(imagePath)
	log := p.log.With().Str("image", imagePath).Str("key", key).Logger()

	resp, ok, err := p.load(p.processed, key, log)
	if err != nil {
		return nil, "", err
	}
	if ok {
		log.Debug().Str("source", SourceLocalCache.String()).Msg("Processed cache hit")
		return resp, SourceLocalCache, nil
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	source := SourceRawCache
	raw, ok, err := p.load(p.raw, key, log)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		source = p.remote
		log.Info().Int("bytes", len(img)).Msg("Requesting text detection")
		raw, err = p.annotator.Annotate(ctx, img)
		if err != nil {
			return nil, "", fmt.Errorf("failed to annotate %s: %w", imagePath, err)
		}
		if err := p.raw.Save(key, raw); err != nil {
			return nil, "", err
		}
	}

	resp, err = p.corrector.Correct(raw)
	if err != nil {
		return nil, "", err
	}
	if err := p.processed.Save(key, resp); err != nil {
		return nil, "", err
	}

	log.Debug().
		Str("source", source.String()).
		Int("annotations", len(resp.GetTextAnnotations())).
		Msg("Processed image")
	return resp, source, nil
}

// load reads one tier. A missing or corrupt entry is a miss; a corrupt
// entry gets overwritten once the response has been recomputed.
func (p *Processor) load(s *cache.Store, key string, log zerolog.Logger) (*visionpb.AnnotateImageResponse, bool, error) {
	resp, err := s.Load(key)
	switch {
	case err == nil:
		return resp, true, nil
	case errors.Is(err, cache.ErrMiss):
		return nil, false, nil
	case errors.Is(err, cache.ErrCorrupt):
		log.Warn().Err(err).Str("path", s.Path(key)).Msg("Ignoring corrupt cache entry")
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// TokenText joins the token annotations of resp with single spaces
func TokenText(resp *visionpb.AnnotateImageResponse) string {
	annotations := resp.GetTextAnnotations()
	if len(annotations) < 2 {
		return ""
	}
	words := make([]string, 0, len(annotations)-1)
	for _, a := range annotations[1:] {
		words = append(words, a.GetDescription())
	}
	return strings.Join(words, " ")
}
