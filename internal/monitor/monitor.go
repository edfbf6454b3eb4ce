package monitor

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"audioconvert/pkg/models"
)

// Snapshot gathers point-in-time CPU and RAM figures for health reporting
// and failure diagnostics. Errors from gopsutil leave the affected fields at
// zero; a missing metric should never fail a health check.
func Snapshot(ctx context.Context) models.SystemHealth {
	var health models.SystemHealth

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		health.RAMUsedPercent = v.UsedPercent
		health.RAMFreeBytes = v.Available
	}

	// A short sampling interval gives a more accurate reading than the
	// instantaneous gauge.
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		health.CPUUsagePercent = pct[0]
	}

	return health
}
