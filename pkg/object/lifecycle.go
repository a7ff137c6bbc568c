package object

import "fmt"

// State represents the lifecycle state of an object.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateDisposed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// State returns the current lifecycle state. Disposal wins over running.
func (o *Object) State() State {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.state()
}

func (o *Object) state() State {
	switch {
	case o.disposed:
		return StateDisposed
	case o.running:
		return StateRunning
	default:
		return StateStopped
	}
}

// IsRunning reports whether the object has been started.
func (o *Object) IsRunning() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.running
}

// CanStart reports whether the can-start predicate currently allows starting.
func (o *Object) CanStart() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	s := &Scope{o: o}
	defer s.close()
	return o.canStartLocked(s)
}

func (o *Object) canStartLocked(s *Scope) bool {
	if o.canStart == nil {
		return true
	}
	return o.canStart(s)
}

// Start starts the object. Starting a running object is a no-op; starting
// a disposed one fails with a *DisposedError.
//
// With the lock held it checks disposal and the can-start predicate, raises
// Starting, runs the start hook, commits the returned flag and, if that flag
// is true, raises Started. Concurrent calls result in one hook invocation.
func (o *Object) Start() error {
	return o.Do(func(s *Scope) error {
		if err := o.disposedError(); err != nil {
			return err
		}
		if o.running {
			return nil
		}
		if !o.canStartLocked(s) {
			return fmt.Errorf("%w: %s %s", ErrCannotStart, o.typeName, o.id)
		}

		o.raiseLifecycle(TransitionStarting)

		running := true
		if o.startHook != nil {
			var err error
			running, err = o.startHook(s, running)
			if err != nil {
				return fmt.Errorf("start %s: %w", o.typeName, err)
			}
		}

		o.running = running
		if running {
			o.raiseLifecycle(TransitionStarted)
		}
		return nil
	})
}
