package smc

import (
	"codeberg.org/nyblom/macstats/internal/errors"
)

const (
	// Connection errors (fatal at startup)
	ErrNotAvailable           = errors.ErrorCode("smc_not_available")
	ErrInsufficientPrivileges = errors.ErrorCode("smc_insufficient_privileges")
	ErrConnectionClosed       = errors.ErrorCode("smc_connection_closed")

	// Read errors (recovered per key)
	ErrKeyNotFound = errors.ErrorCode("smc_key_not_found")
	ErrIOFailed    = errors.ErrorCode("smc_io_failed")

	// Decode errors (recovered per key)
	ErrDecodeFailed = errors.ErrorCode("smc_decode_failed")
	ErrInvalidKey   = errors.ErrorCode("smc_invalid_key")
)

var errFactory = errors.New()

// IsKeyNotFound reports whether err means the controller does not expose the key
func IsKeyNotFound(err error) bool {
	return errors.HasCode(err, ErrKeyNotFound)
}

// IsDecodeFailed reports whether err is a value decoding failure
func IsDecodeFailed(err error) bool {
	return errors.HasCode(err, ErrDecodeFailed)
}
