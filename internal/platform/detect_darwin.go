//go:build darwin

package platform

import (
	"golang.org/x/sys/unix"

	"codeberg.org/nyblom/macstats/internal/errors"
	"codeberg.org/nyblom/macstats/internal/logger"
)

// DetectHost reads the CPU brand string once and classifies it. Called a
// single time at startup; the result is immutable for the process.
func DetectHost() (Platform, error) {
	brand, err := unix.Sysctl("machdep.cpu.brand_string")
	if err != nil {
		return M1, errors.New().Wrap(ErrDetectFailed, err)
	}

	p := Detect(brand)
	logger.Debug().Str("brand", brand).Str("platform", p.String()).Msg("Detected platform")

	return p, nil
}
