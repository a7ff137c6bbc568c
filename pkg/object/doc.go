// Package object provides the thread-safe stateful object that server
// components are built on.
//
// An [Object] combines three capabilities behind one lock:
//
//   - a property store with change detection ([Get], [GetFunc], [Set])
//   - a disposal state machine ([Object.Dispose], [Object.Finalize])
//   - a start state machine ([Object.Start])
//
// Components embed or own an *Object and customise it with options:
//
//	obj, err := object.New(
//	    object.WithTypeName("mypkg.Worker"),
//	    object.WithStartHook(func(s *object.Scope, running bool) (bool, error) {
//	        return running, nil
//	    }),
//	)
//
//	count := object.NewKey[int]("Count")
//	changed, err := object.Set(obj, count, 1)
//
// # Locking
//
// All locked access goes through [RunExclusive]. The lock is a sync.Mutex
// (or a locker shared via [WithLocker]) and is not re-entrant. Hooks,
// providers and the can-start predicate run with the lock held and must use
// the [Scope] they receive ([Lookup], [Load], [Put]) instead of the locking
// functions.
//
// # Notifications
//
// Property, lifecycle and error notifications are queued while the lock is
// held and delivered to each [EventHandler] after it is released, in the
// order they were raised. A call that raises notifications returns once they
// have been delivered, even when another goroutine is delivering at the same
// time. Handlers may call back into the object; notifications raised from a
// handler are delivered after it returns.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package object
