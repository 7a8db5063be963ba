//go:build !linux

package cvtrack

import (
	"errors"
	"unsafe"
)

// maxCores is the number of cores addressable by a single word mask
const maxCores = int(unsafe.Sizeof(uintptr(0)) * 8)

// ErrAffinityUnsupported is returned on platforms without sched_setaffinity
var ErrAffinityUnsupported = errors.New("cpu affinity is only supported on linux")

// SetCPUAffinity is not supported on this platform
func SetCPUAffinity(cores []int) error {
	return ErrAffinityUnsupported
}

// GetCPUAffinity is not supported on this platform
func GetCPUAffinity() (uintptr, error) {
	return 0, ErrAffinityUnsupported
}
