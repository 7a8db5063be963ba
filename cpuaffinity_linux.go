package cvtrack

import (
	"fmt"
	"syscall"
	"unsafe"
)

// maxCores is the number of cores addressable by a single word mask
const maxCores = int(unsafe.Sizeof(uintptr(0)) * 8)

// SetCPUAffinity sets the CPU Affinity mask of the program to run on the
// specified cores.  OpenCV spawns its own worker threads so pinning keeps
// video processing off cores reserved for other services.
func SetCPUAffinity(cores []int) error {

	mask := CPUCoreMask(cores)

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}
