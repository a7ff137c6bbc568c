package state

import "context"

// Repository persists server status snapshots.
type Repository interface {
	// Load retrieves the last saved snapshot.
	// Returns an empty state and nil error if no snapshot exists.
	Load(ctx context.Context) (State, error)

	// Save persists the snapshot atomically.
	Save(ctx context.Context, state State) error
}
