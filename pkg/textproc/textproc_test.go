package textproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrspell/pkg/cache"
	"github.com/gardar/ocrspell/pkg/correct"
	"github.com/gardar/ocrspell/pkg/symspell"
)

// fakeAnnotator returns a canned response and counts calls
type fakeAnnotator struct {
	calls int
	err   error
	seen  []byte
}

func (f *fakeAnnotator) Annotate(_ context.Context, image []byte) (*visionpb.AnnotateImageResponse, error) {
	f.calls++
	f.seen = image
	if f.err != nil {
		return nil, f.err
	}
	return rawResponse(), nil
}

func rawResponse() *visionpb.AnnotateImageResponse {
	return &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{
			{Description: "HELO Wrold 42%"},
			{Description: "HELO"},
			{Description: "Wrold"},
			{Description: "42%"},
		},
	}
}

type fixture struct {
	dir       string
	image     string
	annotator *fakeAnnotator
	proc      *Processor
	cfg       Config
}

func newFixture(t *testing.T, mods map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()

	image := filepath.Join(dir, "images", "receipt.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(image), 0755))
	require.NoError(t, os.WriteFile(image, []byte("fake image bytes"), 0644))

	speller, err := symspell.New(correct.MaxEditDistance, correct.PrefixLength)
	require.NoError(t, err)
	require.NoError(t, speller.LoadDictionary(strings.NewReader("hello 500\nworld 300\n"), 0, 1))

	cfg := Config{
		CacheDir: filepath.Join(dir, "cache"),
		RawDir:   filepath.Join(dir, "cache", "raw"),
	}
	annotator := &fakeAnnotator{}
	proc, err := New(cfg, annotator, correct.New(speller, mods))
	require.NoError(t, err)

	return &fixture{dir: dir, image: image, annotator: annotator, proc: proc, cfg: cfg}
}

func descriptions(resp *visionpb.AnnotateImageResponse) []string {
	var out []string
	for _, a := range resp.GetTextAnnotations() {
		out = append(out, a.GetDescription())
	}
	return out
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

func TestProcessColdPath(t *testing.T) {
	f := newFixture(t, nil)

	resp, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)

	assert.Equal(t, SourceGoogleCloud, source)
	assert.Equal(t, 1, f.annotator.calls)
	assert.Equal(t, []byte("fake image bytes"), f.annotator.seen)
	assert.Equal(t, []string{"HELO Wrold 42%", "HELLO", "World", "42%"}, descriptions(resp))

	assert.Equal(t, 1, countFiles(t, f.cfg.RawDir))
	assert.Equal(t, 1, countFiles(t, f.cfg.CacheDir))

	raw, err := cache.New(f.cfg.RawDir).Load("receipt")
	require.NoError(t, err)
	assert.Equal(t, descriptions(rawResponse()), descriptions(raw), "raw tier keeps the uncorrected response")
}

func TestProcessLocalCacheHitIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)

	first, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceGoogleCloud, source)

	second, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, source)
	assert.Equal(t, 1, f.annotator.calls)

	a, err := cache.Marshal(first)
	require.NoError(t, err)
	b, err := cache.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProcessLocalCacheDoesNotNeedImage(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	require.NoError(t, os.Remove(f.image))

	_, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, source)
}

func TestProcessRawCacheReuse(t *testing.T) {
	f := newFixture(t, map[string]string{"World": "Earth"})
	require.NoError(t, cache.New(f.cfg.RawDir).Save("receipt", rawResponse()))

	resp, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)

	assert.Equal(t, SourceRawCache, source)
	assert.Zero(t, f.annotator.calls)
	assert.Equal(t, []string{"HELO Wrold 42%", "HELLO", "Earth", "42%"}, descriptions(resp))
	assert.FileExists(t, cache.New(f.cfg.CacheDir).Path("receipt"))
}

func TestProcessCorruptProcessedEntryFallsBack(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, cache.New(f.cfg.RawDir).Save("receipt", rawResponse()))
	processed := cache.New(f.cfg.CacheDir)
	require.NoError(t, os.WriteFile(processed.Path("receipt"), []byte{0x0a, 0x05, 'x'}, 0644))

	_, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceRawCache, source)

	_, err = processed.Load("receipt")
	assert.NoError(t, err, "corrupt entry is overwritten")
}

func TestProcessRawCacheHitLeavesRawFile(t *testing.T) {
	f := newFixture(t, nil)
	raw := cache.New(f.cfg.RawDir)
	require.NoError(t, raw.Save("receipt", rawResponse()))
	before, err := os.ReadFile(raw.Path("receipt"))
	require.NoError(t, err)

	_, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceRawCache, source)

	// drop the processed tier and run through the raw tier again
	require.NoError(t, os.Remove(cache.New(f.cfg.CacheDir).Path("receipt")))
	_, source, err = f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceRawCache, source)

	after, err := os.ReadFile(raw.Path("receipt"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, f.annotator.calls)
}

func TestProcessCorruptRawEntryIsRefetched(t *testing.T) {
	f := newFixture(t, nil)
	raw := cache.New(f.cfg.RawDir)
	require.NoError(t, os.MkdirAll(f.cfg.RawDir, 0755))
	require.NoError(t, os.WriteFile(raw.Path("receipt"), []byte{0x0a, 0x05, 'x'}, 0644))

	_, source, err := f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceGoogleCloud, source)
	assert.Equal(t, 1, f.annotator.calls)

	got, err := raw.Load("receipt")
	require.NoError(t, err, "corrupt raw entry is rewritten")
	assert.Equal(t, descriptions(rawResponse()), descriptions(got))

	_, source, err = f.proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, source)
	assert.Equal(t, 1, f.annotator.calls)
}

func TestProcessCorrectionFailureSkipsProcessedTier(t *testing.T) {
	f := newFixture(t, nil)

	// indexed for distance 1, so distance 2 lookups fail
	speller, err := symspell.New(1, correct.PrefixLength)
	require.NoError(t, err)
	require.NoError(t, speller.LoadDictionary(strings.NewReader("world 300\n"), 0, 1))
	proc, err := New(f.cfg, f.annotator, correct.New(speller, nil))
	require.NoError(t, err)

	_, _, err = proc.Process(context.Background(), f.image)
	assert.ErrorIs(t, err, symspell.ErrDistanceTooLarge)
	assert.NoFileExists(t, cache.New(f.cfg.CacheDir).Path("receipt"))
	assert.FileExists(t, cache.New(f.cfg.RawDir).Path("receipt"), "provider output is kept")
}

func TestProcessRemoteSourceLabel(t *testing.T) {
	f := newFixture(t, nil)
	speller, err := symspell.New(correct.MaxEditDistance, correct.PrefixLength)
	require.NoError(t, err)
	proc, err := New(f.cfg, f.annotator, correct.New(speller, nil), WithRemoteSource(SourceTesseract))
	require.NoError(t, err)

	_, source, err := proc.Process(context.Background(), f.image)
	require.NoError(t, err)
	assert.Equal(t, SourceTesseract, source)
}

func TestProcessMissingImage(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.proc.Process(context.Background(), filepath.Join(f.dir, "absent.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Zero(t, f.annotator.calls)
}

func TestProcessAnnotatorFailure(t *testing.T) {
	f := newFixture(t, nil)
	boom := errors.New("quota exceeded")
	f.annotator.err = boom

	_, _, err := f.proc.Process(context.Background(), f.image)
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, cache.New(f.cfg.RawDir).Path("receipt"))
	assert.NoFileExists(t, cache.New(f.cfg.CacheDir).Path("receipt"))
}

func TestNewValidatesConfig(t *testing.T) {
	speller, err := symspell.New(2, 7)
	require.NoError(t, err)
	c := correct.New(speller, nil)

	_, err = New(Config{CacheDir: "a"}, &fakeAnnotator{}, c)
	assert.Error(t, err)
	_, err = New(Config{CacheDir: "a", RawDir: "a/"}, &fakeAnnotator{}, c)
	assert.Error(t, err)
	_, err = New(Config{CacheDir: "a", RawDir: "b"}, nil, c)
	assert.Error(t, err)
	_, err = New(Config{CacheDir: "a", RawDir: "b"}, &fakeAnnotator{}, nil)
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "receipt", CacheKey("/tmp/images/receipt.png"))
	assert.Equal(t, "scan.2024", CacheKey("scan.2024.jpg"))
	assert.Equal(t, "noext", CacheKey("dir/noext"))
}

func TestTokenText(t *testing.T) {
	assert.Equal(t, "HELO Wrold 42%", TokenText(rawResponse()))
	assert.Empty(t, TokenText(&visionpb.AnnotateImageResponse{}))
}
