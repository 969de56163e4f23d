package deps

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// HostSnapshot summarizes the resources available to hashcat.
type HostSnapshot struct {
	OS              string  `json:"os"`
	Arch            string  `json:"arch"`
	CPUModel        string  `json:"cpu_model,omitempty"`
	LogicalCPUs     int     `json:"logical_cpus"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryTotal     uint64  `json:"memory_total"`
	MemoryAvailable uint64  `json:"memory_available"`
	MemoryPercent   float64 `json:"memory_percent"`
}

// Host samples CPU and memory. CPU usage is measured over sample; a zero
// sample reports usage since the previous call.
func Host(sample time.Duration) (HostSnapshot, error) {
	snap := HostSnapshot{OS: runtime.GOOS, Arch: runtime.GOARCH}

	count, err := cpu.Counts(true)
	if err != nil {
		return snap, fmt.Errorf("cpu counts: %w", err)
	}
	snap.LogicalCPUs = count

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		snap.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if usage, err := cpu.Percent(sample, false); err == nil && len(usage) > 0 {
		snap.CPUPercent = usage[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return snap, fmt.Errorf("virtual memory: %w", err)
	}
	snap.MemoryTotal = vm.Total
	snap.MemoryAvailable = vm.Available
	snap.MemoryPercent = vm.UsedPercent
	return snap, nil
}

// ProcessRSS returns the resident set size of pid in bytes.
func ProcessRSS(pid int) (uint64, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("invalid pid %d", pid)
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, fmt.Errorf("inspect process %d: %w", pid, err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("memory info for %d: %w", pid, err)
	}
	return info.RSS, nil
}
