//go:build !linux && !darwin

package local

import "errors"

// fsUsage is unavailable on this platform; usage figures stay zero.
func fsUsage(string) (uint64, uint64, error) {
	return 0, 0, errors.New("filesystem usage not supported on this platform")
}
