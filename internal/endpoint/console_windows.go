//go:build windows

package endpoint

import "errors"

// Console handles cannot join the runtime poller on windows; the
// caller falls back to the goroutine-fed stream reader.
func setNonblock(uintptr, bool) error {
	return errors.New("non-blocking console reads not supported on windows")
}
