//go:build !linux && !darwin && !freebsd

package recorder

import (
	"errors"
)

func freeSpace(string) (uint64, error) {
	return 0, errors.New("free space is not supported on this platform")
}
