package drive

import (
	"errors"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	maxRetries       = 3
	initialBackoffMs = 1000
)

// retrier re-runs provider calls that failed with a rate-limit or server
// error, with exponential backoff. All other failures propagate
// immediately. The sleep func is injectable for tests.
type retrier struct {
	sleep func(time.Duration)
}

func newRetrier() *retrier {
	return &retrier{sleep: time.Sleep}
}

// isRetriable reports whether the provider failure is transient:
// HTTP 429 or any 5xx.
func isRetriable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}
	return false
}

func executeWithRetry[T any](r *retrier, call func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := call()
		if err == nil {
			return v, nil
		}
		if !isRetriable(err) || attempt >= maxRetries-1 {
			return zero, err
		}
		backoff := time.Duration(initialBackoffMs<<attempt) * time.Millisecond
		slog.Warn("retrying Drive API call", "attempt", attempt+1, "backoff", backoff, "error", err)
		r.sleep(backoff)
	}
}
