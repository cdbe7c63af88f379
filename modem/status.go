package modem

import "time"

// Status is an on-demand diagnostic snapshot; not part of any hot
// path, safe to call from anywhere.
type Status struct {
	State         State
	QueueDepth    int
	LastMessage   string
	LastMessageAt time.Time
}
