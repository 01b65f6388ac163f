package event

import "time"

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	RoomOccupancyType       Type = "ROOM_OCCUPANCY"
)

// Event wraps a technical payload for the telemetry channel.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

// RoomOccupancy reports the registry population after a join or leave.
type RoomOccupancy struct {
	Current int
	Peak    int
	Joined  uint64
	Left    uint64
}
