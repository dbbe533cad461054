package metrics

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

// Sample reads a best-effort resource snapshot for the bot process. Any
// failure leaves the record's previous snapshot in place.
func Sample(pid int, startedAt time.Time) (entities.MetricsSnapshot, error) {
	snapshot := entities.MetricsSnapshot{
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return snapshot, err
	}

	if cpu, err := proc.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		snapshot.MemoryMB = float64(mem.RSS) / (1024 * 1024)
	}
	return snapshot, nil
}
