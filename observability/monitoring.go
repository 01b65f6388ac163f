// Package observability aggregates runtime metrics for logs and the
// debug inspector. Nothing here is exported over the wire protocol.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RoomStats aggregates relay metrics.
type RoomStats struct {
	// Cumulative counters, updated from the hot path
	EventsRelayed uint64
	ChatMessages  uint64
	JoinedTotal   uint64
	LeftTotal     uint64
	DroppedEvents uint64

	log    *slog.Logger
	mu     sync.RWMutex
	latest Snapshot
}

// Snapshot is the point-in-time view rendered by the debug inspector.
type Snapshot struct {
	Occupancy     int     `json:"occupancy"`
	Peak          int     `json:"peak"`
	EventsRelayed uint64  `json:"events_relayed"`
	ChatMessages  uint64  `json:"chat_messages"`
	JoinedTotal   uint64  `json:"joined_total"`
	LeftTotal     uint64  `json:"left_total"`
	DroppedEvents uint64  `json:"dropped_events"`
	CPUPercent    float64 `json:"cpu_percent"`
	RSSMb         uint64  `json:"rss_mb"`
	AllocMemMb    uint64  `json:"alloc_mem_mb"`
	NumGC         uint32  `json:"num_gc"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewRoomStats(log *slog.Logger) *RoomStats {
	return &RoomStats{log: log}
}

func (s *RoomStats) IncrEventsRelayed() { atomic.AddUint64(&s.EventsRelayed, 1) }
func (s *RoomStats) IncrChatMessages()  { atomic.AddUint64(&s.ChatMessages, 1) }
func (s *RoomStats) IncrJoined()        { atomic.AddUint64(&s.JoinedTotal, 1) }
func (s *RoomStats) IncrLeft()          { atomic.AddUint64(&s.LeftTotal, 1) }
func (s *RoomStats) IncrDropped()       { atomic.AddUint64(&s.DroppedEvents, 1) }

// Update folds the latest occupancy and process metrics into the
// published snapshot. Called by the heartbeat worker on its interval.
func (s *RoomStats) Update(occupancy, peak int, cpuPercent float64, rssBytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.latest = Snapshot{
		Occupancy:     occupancy,
		Peak:          peak,
		EventsRelayed: atomic.LoadUint64(&s.EventsRelayed),
		ChatMessages:  atomic.LoadUint64(&s.ChatMessages),
		JoinedTotal:   atomic.LoadUint64(&s.JoinedTotal),
		LeftTotal:     atomic.LoadUint64(&s.LeftTotal),
		DroppedEvents: atomic.LoadUint64(&s.DroppedEvents),
		CPUPercent:    cpuPercent,
		RSSMb:         rssBytes / 1024 / 1024,
		AllocMemMb:    m.Alloc / 1024 / 1024,
		NumGC:         m.NumGC,
		UpdatedAt:     time.Now().Format("15:04:05"),
	}

	s.log.Debug("Stats updated",
		"occupancy", occupancy,
		"events_relayed", s.latest.EventsRelayed,
		"mem_mb", s.latest.AllocMemMb,
	)
}

func (s *RoomStats) GetLatest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
