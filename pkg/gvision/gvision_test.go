package gvision

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRetryerStopsAfterMaxRetries(t *testing.T) {
	rc := DefaultRetry()
	r := rc.retryer()
	unavailable := status.Error(codes.Unavailable, "try again")

	for i := 0; i < rc.MaxRetries; i++ {
		pause, ok := r.Retry(unavailable)
		require.True(t, ok, "retry %d", i+1)
		assert.LessOrEqual(t, pause, rc.Max)
	}
	_, ok := r.Retry(unavailable)
	assert.False(t, ok)
}

func TestRetryerOnlyTransientCodes(t *testing.T) {
	r := DefaultRetry().retryer()

	_, ok := r.Retry(status.Error(codes.PermissionDenied, "no"))
	assert.False(t, ok)
	_, ok = r.Retry(status.Error(codes.InvalidArgument, "bad image"))
	assert.False(t, ok)
	_, ok = r.Retry(errors.New("plain error"))
	assert.False(t, ok)
	_, ok = r.Retry(status.Error(codes.ResourceExhausted, "quota"))
	assert.True(t, ok)
}

func TestRetryDisabled(t *testing.T) {
	r := RetryConfig{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2}.retryer()

	_, ok := r.Retry(status.Error(codes.Unavailable, "down"))
	assert.False(t, ok)
}

func TestNewTextDetectionRequest(t *testing.T) {
	req := NewTextDetectionRequest([]byte("img"), []string{"en", "is"})

	require.Len(t, req.GetRequests(), 1)
	r := req.GetRequests()[0]
	assert.Equal(t, []byte("img"), r.GetImage().GetContent())
	require.Len(t, r.GetFeatures(), 1)
	assert.Equal(t, visionpb.Feature_TEXT_DETECTION, r.GetFeatures()[0].GetType())
	assert.Equal(t, []string{"en", "is"}, r.GetImageContext().GetLanguageHints())

	assert.Nil(t, NewTextDetectionRequest([]byte("img"), nil).GetRequests()[0].GetImageContext())
}

func TestFirstResponse(t *testing.T) {
	ok := &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{{Description: "hi"}},
	}
	got, err := firstResponse(&visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{ok},
	})
	require.NoError(t, err)
	assert.Same(t, ok, got)

	_, err = firstResponse(&visionpb.BatchAnnotateImagesResponse{})
	assert.Error(t, err)

	_, err = firstResponse(&visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			Error: &spb.Status{Code: int32(codes.InvalidArgument), Message: "bad image data"},
		}},
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
}

// scriptedBatch answers successive calls with the embedded status codes in
// order, then with a text annotation
type scriptedBatch struct {
	codes []codes.Code
	calls int
}

func (s *scriptedBatch) call(_ context.Context, _ *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	s.calls++
	r := &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{{Description: "hi"}},
	}
	if s.calls <= len(s.codes) {
		r = &visionpb.AnnotateImageResponse{
			Error: &spb.Status{Code: int32(s.codes[s.calls-1]), Message: "embedded"},
		}
	}
	return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{r}}, nil
}

func fastRetry(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2}
}

func TestAnnotateRetriesEmbeddedErrors(t *testing.T) {
	batch := &scriptedBatch{codes: []codes.Code{codes.ResourceExhausted, codes.Unavailable}}
	req := NewTextDetectionRequest([]byte("img"), nil)

	got, err := annotate(context.Background(), batch.call, req, fastRetry(2))
	require.NoError(t, err)
	assert.Equal(t, "hi", got.GetTextAnnotations()[0].GetDescription())
	assert.Equal(t, 3, batch.calls)
}

func TestAnnotateEmbeddedErrorLimits(t *testing.T) {
	req := NewTextDetectionRequest([]byte("img"), nil)

	batch := &scriptedBatch{codes: []codes.Code{codes.ResourceExhausted, codes.ResourceExhausted}}
	_, err := annotate(context.Background(), batch.call, req, fastRetry(1))
	require.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(errors.Unwrap(err)))
	assert.Equal(t, 2, batch.calls)

	batch = &scriptedBatch{codes: []codes.Code{codes.InvalidArgument}}
	_, err = annotate(context.Background(), batch.call, req, fastRetry(2))
	require.Error(t, err)
	assert.Equal(t, 1, batch.calls)

	batch = &scriptedBatch{codes: []codes.Code{codes.Unavailable}}
	_, err = annotate(context.Background(), batch.call, req, fastRetry(0))
	require.Error(t, err)
	assert.Equal(t, 1, batch.calls)
}

func TestAnnotateRPCError(t *testing.T) {
	call := func(context.Context, *visionpb.BatchAnnotateImagesRequest, ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
		return nil, status.Error(codes.PermissionDenied, "no")
	}
	_, err := annotate(context.Background(), call, NewTextDetectionRequest([]byte("img"), nil), fastRetry(2))
	assert.Equal(t, codes.PermissionDenied, status.Code(errors.Unwrap(err)))
}
