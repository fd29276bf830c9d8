package selection

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultMemoryLimit is the system memory use, in percent, above which the
// analyzer switches to quick mode
const DefaultMemoryLimit = 85.0

// MemoryUsage reports system memory use in percent
type MemoryUsage func() (float64, error)

// SystemMemory reads the virtual memory statistics of the host
func SystemMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// memoryHigh reports whether memory use exceeds the limit. Read failures
// count as normal.
func (a *Analyzer) memoryHigh() bool {
	if a.memory == nil {
		return false
	}
	used, err := a.memory()
	if err != nil {
		a.logger.WithError(err).Debug("Memory check unavailable")
		return false
	}
	if used > a.memoryLimit {
		a.logger.WithField("used_percent", used).Warn("Memory use is high")
		return true
	}
	return false
}
