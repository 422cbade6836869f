package gvision

import (
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
)

// RetryConfig controls how transient Vision API failures are retried
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt; 0 disables retrying
	Initial    time.Duration // First pause
	Max        time.Duration // Longest pause
	Multiplier float64       // Pause growth factor
}

// DefaultRetry retries twice with exponential backoff
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		Initial:    500 * time.Millisecond,
		Max:        10 * time.Second,
		Multiplier: 2,
	}
}

// retryableCodes are the gRPC codes worth another attempt
var retryableCodes = []codes.Code{
	codes.Unavailable,
	codes.DeadlineExceeded,
	codes.ResourceExhausted,
}

// retryer returns a fresh gax.Retryer for one call
func (rc RetryConfig) retryer() gax.Retryer {
	return &cappedRetryer{
		max: rc.MaxRetries,
		inner: gax.OnCodes(retryableCodes, gax.Backoff{
			Initial:    rc.Initial,
			Max:        rc.Max,
			Multiplier: rc.Multiplier,
		}),
	}
}

// cappedRetryer stops an inner retryer after max retries
type cappedRetryer struct {
	inner   gax.Retryer
	max     int
	retries int
}

func (r *cappedRetryer) Retry(err error) (time.Duration, bool) {
	if r.retries >= r.max {
		return 0, false
	}
	pause, ok := r.inner.Retry(err)
	if ok {
		r.retries++
	}
	return pause, ok
}
