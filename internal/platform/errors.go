package platform

import (
	"codeberg.org/nyblom/macstats/internal/errors"
)

const (
	ErrDetectFailed = errors.ErrorCode("platform_detect_failed")
)
