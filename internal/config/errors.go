package config

import (
	"codeberg.org/nyblom/macstats/internal/errors"
)

const (
	ErrConflictingCredentials = errors.ErrorCode("config_conflicting_credentials")
	ErrIncompleteCredentials  = errors.ErrorCode("config_incomplete_credentials")
)
