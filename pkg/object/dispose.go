package object

import "fmt"

// Dispose disposes the object. Calling it again is a no-op.
//
// With the lock held it raises Disposing, runs the dispose hook with
// explicit = true, commits the returned flag and, if that flag is true,
// raises Disposed.
func (o *Object) Dispose() error {
	return o.dispose(true)
}

// Close calls Dispose so objects can be released with defer.
func (o *Object) Close() error {
	return o.Dispose()
}

// Finalize is the silent release path for owners tearing objects down
// without observers: no notifications are raised and the hook runs with
// explicit = false. The committed flag is persisted like with Dispose.
func (o *Object) Finalize() error {
	return o.dispose(false)
}

// IsDisposed reports whether the object has been disposed.
func (o *Object) IsDisposed() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.disposed
}

// AssertNotDisposed returns a *DisposedError if the object has been disposed.
// Mutating operations of components built on Object call it first.
func (o *Object) AssertNotDisposed() error {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.disposedError()
}

func (o *Object) dispose(explicit bool) error {
	return o.Do(func(s *Scope) error {
		if o.disposed {
			return nil
		}

		if explicit {
			o.raiseLifecycle(TransitionDisposing)
		}

		disposed := true
		if o.disposeHook != nil {
			var err error
			disposed, err = o.disposeHook(s, explicit, disposed)
			if err != nil {
				return fmt.Errorf("dispose %s: %w", o.typeName, err)
			}
		}

		o.disposed = disposed
		if disposed && explicit {
			o.raiseLifecycle(TransitionDisposed)
		}
		return nil
	})
}
