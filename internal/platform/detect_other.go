//go:build !darwin

package platform

import (
	"codeberg.org/nyblom/macstats/internal/errors"
)

func DetectHost() (Platform, error) {
	return M1, errors.New().New(ErrDetectFailed)
}
