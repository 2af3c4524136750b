// Package sysmetrics samples local system utilization for the health
// and metrics endpoints.
package sysmetrics

import (
	"context"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"
)

// Snapshot is one point-in-time reading of local system utilization.
type Snapshot struct {
	Time        string  `json:"time"`
	CPU         float64 `json:"cpu"`
	Memory      float64 `json:"memory"`
	Disk        float64 `json:"disk"`
	NetworkSent float64 `json:"network_sent"` // MB since boot
	NetworkRecv float64 `json:"network_recv"` // MB since boot
}

// Health status levels derived from a snapshot.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Status classifies a snapshot by cpu/memory pressure.
func (s Snapshot) Status() string {
	switch {
	case s.CPU > 95 || s.Memory > 95:
		return StatusCritical
	case s.CPU > 85 || s.Memory > 85:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// Collector reads system utilization. Failed probes degrade to zero
// values rather than failing the whole snapshot.
type Collector struct {
	logger *zap.Logger
}

// NewCollector creates a system metrics collector.
func NewCollector(logger *zap.Logger) *Collector {
	return &Collector{
		logger: logger.With(zap.String("component", "sysmetrics")),
	}
}

// Snapshot returns the current system utilization.
func (c *Collector) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{Time: time.Now().Format("15:04:05")}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		c.logger.Warn("cpu probe failed", zap.Error(err))
	} else if len(percents) > 0 {
		snap.CPU = round2(percents[0])
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		c.logger.Warn("memory probe failed", zap.Error(err))
	} else {
		snap.Memory = round2(vm.UsedPercent)
	}

	if du, err := disk.UsageWithContext(ctx, "/"); err != nil {
		c.logger.Warn("disk probe failed", zap.Error(err))
	} else {
		snap.Disk = round2(du.UsedPercent)
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err != nil {
		c.logger.Warn("network probe failed", zap.Error(err))
	} else if len(counters) > 0 {
		snap.NetworkSent = round2(float64(counters[0].BytesSent) / 1024 / 1024)
		snap.NetworkRecv = round2(float64(counters[0].BytesRecv) / 1024 / 1024)
	}

	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
