package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"promenade/contract"
	"promenade/observability"
	"promenade/projection"
)

// HeartbeatWorker periodically folds room occupancy and self process
// metrics (CPU, RSS) into the published stats snapshot.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	timeline *projection.Timeline
	stats    *observability.RoomStats
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, registry contract.IRegistry,
	timeline *projection.Timeline, stats *observability.RoomStats,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		registry: registry,
		timeline: timeline,
		stats:    stats,
		interval: interval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.stats.Update(w.registry.Size(), w.timeline.Peak(), cpu, rss)
		}
	}
}

// selfStats retrieves technical metrics (Memory and CPU) for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
