// Package system wraps the host facilities scenerender relies on: the file
// system and the machine's CPU and memory capacity.
package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ivlev/scenerender/internal/errs"
)

// EnsureDir creates dir and its parents when missing and checks that the
// result really is a directory.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w %s: %v", errs.ErrOutputDirectory, dir, err)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w %s: %v", errs.ErrOutputDirectory, dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w %s: not a directory", errs.ErrOutputDirectory, dir)
	}
	return nil
}

// Overridden in tests.
var (
	logicalCPUs = func() (int, error) {
		return cpu.Counts(true)
	}
	availableMemory = func() (uint64, error) {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return 0, err
		}
		return vm.Available, nil
	}
)

// WorkerBudget decides how many images may be rendered at once.
// A positive request is taken as the upper bound, otherwise the number of
// logical CPUs is used. The result is then reduced so that one buffer of
// bufferBytes per worker fits into half of the available memory. At least
// one worker is always granted. Host query failures are reported through warn.
func WorkerBudget(requested int, bufferBytes uint64, warn func(format string, args ...any)) int {
	n := requested
	if n <= 0 {
		count, err := logicalCPUs()
		if err != nil || count < 1 {
			count = runtime.NumCPU()
		}
		n = count
	}

	if bufferBytes > 0 {
		avail, err := availableMemory()
		if err != nil {
			warn("Could not read available memory: %v", err)
		} else if avail > 0 {
			limit := avail / 2 / bufferBytes
			if limit < uint64(n) {
				n = int(limit)
			}
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}
