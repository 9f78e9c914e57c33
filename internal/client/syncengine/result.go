package syncengine

import "time"

// SyncResult is the outcome of one sync request. SyncedAt is the time of
// the attempt, set for failures too. Err carries the sentinel for
// errors.Is; Error is its message for display.
type SyncResult struct {
	Success  bool
	Error    string
	SyncedAt time.Time
	Err      error
}

func succeeded(at time.Time) SyncResult {
	return SyncResult{Success: true, SyncedAt: at}
}

func failed(err error, at time.Time) SyncResult {
	return SyncResult{Error: err.Error(), SyncedAt: at, Err: err}
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)
