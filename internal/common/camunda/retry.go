// internal/common/camunda/retry.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admissions-engine/internal/common/errors"
)

// RetryConfig bounds the backoff applied to job commands sent back to the gateway.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var (
	unreachablePhrases = []string{"connection refused", "connection reset", "unavailable", "unreachable", "broken pipe"}
	timeoutPhrases     = []string{"timeout", "deadline exceeded"}
)

func containsAny(msg string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// executeWithRetry retries only transient gateway failures, doubling the delay each time.
func executeWithRetry(
	ctx context.Context,
	rc *RetryConfig,
	command func(context.Context) (interface{}, error),
	operation string,
) (interface{}, error) {
	delay := rc.BaseDelay
	for attempt := 0; ; attempt++ {
		result, err := command(ctx)
		if err == nil {
			return result, nil
		}

		msg := strings.ToLower(err.Error())
		transient := containsAny(msg, unreachablePhrases) || containsAny(msg, timeoutPhrases)
		if !transient || attempt == rc.MaxRetries {
			return nil, mapZeebeError(err, operation, attempt)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, errors.NewTimeoutError(operation,
				fmt.Errorf("cancelled after %d attempts: %w", attempt+1, ctx.Err()))
		}
		if delay *= 2; delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
	}
}

// mapZeebeError turns a gateway failure into the StandardError the job error handler understands.
func mapZeebeError(err error, operation string, attempt int) error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	detail := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		detail += fmt.Sprintf(" after %d attempts", attempt)
	}
	wrapped := fmt.Errorf("%s: %s", detail, msg)

	switch {
	case containsAny(lower, timeoutPhrases):
		return errors.NewTimeoutError("zeebe", wrapped)
	case strings.Contains(lower, "not found"):
		return errors.NewNotFoundError("zeebe job", wrapped.Error())
	case strings.Contains(lower, "permission denied"), strings.Contains(lower, "unauthorized"):
		return errors.NewAuthenticationError(wrapped.Error())
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}
