// Package sysmon samples host CPU and memory usage for health reporting.
package sysmon

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 `json:"cpu_percent"`    // 0.0 .. 100.0
	MemPercent float64 `json:"memory_percent"` // 0.0 .. 100.0
}

// Sampler produces a Stats snapshot.
type Sampler func() Stats

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call), so the first call in a
// process may report 0. Fields whose source fails are left at zero.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}
