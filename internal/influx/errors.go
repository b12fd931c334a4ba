package influx

import (
	"codeberg.org/nyblom/macstats/internal/errors"
)

const (
	// Configuration errors (fatal, raised before any network call)
	ErrConflictingCredentials = errors.ErrorCode("influx_config_conflict")
	ErrIncompleteCredentials  = errors.ErrorCode("influx_config_incomplete")

	// Write errors
	ErrWriteFailed = errors.ErrorCode("influx_write_failed") // retryable
	ErrAuthFailed  = errors.ErrorCode("influx_auth_failed")  // never retried
	ErrServerError = errors.ErrorCode("influx_server_error") // non-retryable 4xx
)

var errFactory = errors.New()

// IsRetryable reports whether err is a transient network-layer failure
// that already exhausted its retry budget and may succeed next cycle
func IsRetryable(err error) bool {
	return errors.HasCode(err, ErrWriteFailed)
}

// IsAuthError reports whether err is a credential rejection
func IsAuthError(err error) bool {
	return errors.HasCode(err, ErrAuthFailed)
}
