package domain

import "time"

// ChatEntry is one relayed chat message as retained by a client.
type ChatEntry struct {
	From        ConnectionID
	DisplayName string
	Message     string
	Lang        string
	At          time.Time
}

// ChatLog is a bounded message log. Once the cap is reached the oldest
// entry is evicted; there is no acknowledgement or replay.
type ChatLog struct {
	cap     int
	entries []ChatEntry
}

const DefaultChatLogCap = 100

func NewChatLog(cap int) *ChatLog {
	if cap <= 0 {
		cap = DefaultChatLogCap
	}
	return &ChatLog{cap: cap}
}

func (l *ChatLog) Append(entry ChatEntry) {
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

func (l *ChatLog) Len() int { return len(l.entries) }

// Entries returns a copy, oldest first.
func (l *ChatLog) Entries() []ChatEntry {
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
