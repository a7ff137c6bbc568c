package state

import "time"

// State is a point-in-time snapshot of a server's lifecycle, written to disk
// so operators and supervisors can inspect a running instance.
type State struct {
	// Name is the configured server name
	Name string `json:"name"`

	// InstanceID identifies the server object
	InstanceID string `json:"instance_id"`

	// Status is the lifecycle state ("Stopped", "Running", "Disposed")
	Status string `json:"status"`

	// PID is the process that wrote the snapshot
	PID int `json:"pid"`

	// StartedAt is when the server reached the running state
	StartedAt time.Time `json:"started_at"`

	// DisposedAt is when the server was disposed
	DisposedAt time.Time `json:"disposed_at"`

	// UpdatedAt is when the snapshot was taken
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if no snapshot has been recorded.
func (s State) IsEmpty() bool {
	return s.InstanceID == ""
}

// MarkStarted records the transition to running.
func (s *State) MarkStarted(at time.Time) {
	s.Status = "Running"
	s.StartedAt = at
	s.UpdatedAt = at
}

// MarkDisposed records the disposal.
func (s *State) MarkDisposed(at time.Time) {
	s.Status = "Disposed"
	s.DisposedAt = at
	s.UpdatedAt = at
}
