// Package state persists server status snapshots.
//
// A snapshot records the server name, instance ID, lifecycle status and
// timestamps. The statusfile plugin keeps it current; external tooling reads
// it with the same repository:
//
//	repo := state.NewFileRepository("/var/lib/appserver")
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if s.IsEmpty() {
//	    // never started
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package state
