package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// procStats is a snapshot of the daemon process
type procStats struct {
	PID     int32
	RSS     uint64
	CPU     float64
	Started time.Time
}

func processStats(ctx context.Context, pid int32) (procStats, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return procStats{}, fmt.Errorf("inspect process %d: %w", pid, err)
	}

	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return procStats{}, fmt.Errorf("read memory: %w", err)
	}
	cpu, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return procStats{}, fmt.Errorf("read cpu: %w", err)
	}
	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return procStats{}, fmt.Errorf("read start time: %w", err)
	}

	return procStats{
		PID:     pid,
		RSS:     mem.RSS,
		CPU:     cpu,
		Started: time.UnixMilli(created),
	}, nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
