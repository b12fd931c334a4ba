//go:build !darwin || !cgo

package smc

// The SMC is only reachable on macOS through IOKit
func openTransport() (Transport, error) {
	return nil, errFactory.New(ErrNotAvailable)
}
