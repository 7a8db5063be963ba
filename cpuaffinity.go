package cvtrack

import (
	"fmt"
	"strconv"
	"strings"
)

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// ParseCPUList parses a list of CPU cores in the linux cpuset format, eg:
// "0-3,6" returns []int{0,1,2,3,6}
func ParseCPUList(list string) ([]int, error) {

	cores := make([]int, 0)
	list = strings.TrimSpace(list)

	if list == "" {
		return cores, nil
	}

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)

		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))

		if err != nil {
			return nil, fmt.Errorf("invalid cpu %q: %w", part, err)
		}

		last := first

		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))

			if err != nil {
				return nil, fmt.Errorf("invalid cpu range %q: %w", part, err)
			}
		}

		if first < 0 || last < first || last >= maxCores {
			return nil, fmt.Errorf("invalid cpu range %q", part)
		}

		for c := first; c <= last; c++ {
			cores = append(cores, c)
		}
	}

	return cores, nil
}
