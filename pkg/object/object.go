package object

import (
	"sync"

	"github.com/google/uuid"

	"github.com/appserverkit/appserver/pkg/log"
)

const defaultTypeName = "object.Object"

// Object is a stateful component: a property store, a disposal state
// machine and a start state machine guarded by one lock.
//
// The lock is a plain mutex and is not re-entrant. Hooks and predicates run
// while it is held and receive a *Scope for lock-held access. Notifications
// are queued while the lock is held and delivered after it is released.
type Object struct {
	lock       sync.Locker
	properties map[string]any
	disposed   bool
	running    bool

	id       string
	typeName string
	known    map[string]struct{}

	canStart    func(*Scope) bool
	startHook   StartHook
	disposeHook DisposeHook

	logger log.Logger
	events dispatcher
}

// New creates an object in the stopped, not-disposed state.
// Returns ErrInvalidArgument if WithLocker was given a nil locker.
func New(opts ...Option) (*Object, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockerSet && o.locker == nil {
		return nil, invalidArgument("locker is nil")
	}

	obj := &Object{
		lock:        o.locker,
		properties:  make(map[string]any),
		id:          uuid.NewString(),
		typeName:    o.typeName,
		canStart:    o.canStart,
		startHook:   o.startHook,
		disposeHook: o.disposeHook,
		logger:      o.logger,
	}
	if len(o.properties) > 0 {
		obj.known = make(map[string]struct{}, len(o.properties))
		for _, name := range o.properties {
			obj.known[normalizeName(name)] = struct{}{}
		}
	}
	for _, h := range o.handlers {
		obj.events.add(h)
	}
	return obj, nil
}

// ID returns the instance identifier used in diagnostics.
func (o *Object) ID() string { return o.id }

// TypeName returns the configured type name.
func (o *Object) TypeName() string { return o.typeName }

// Locker returns the lock guarding this object. Objects created with the
// same locker share one lock domain.
func (o *Object) Locker() sync.Locker { return o.lock }

// IsSynchronized reports whether access to the object is synchronized. Always true.
func (o *Object) IsSynchronized() bool { return true }

// AddHandler registers an event handler and returns a function that removes it.
func (o *Object) AddHandler(h EventHandler) (remove func()) {
	return o.events.add(h)
}

// Do runs fn with the lock held.
func (o *Object) Do(fn func(s *Scope) error) error {
	if fn == nil {
		return invalidArgument("function is nil")
	}
	_, err := RunExclusive(o, fn, func(s *Scope, fn func(*Scope) error) (struct{}, error) {
		return struct{}{}, fn(s)
	})
	return err
}

// RunExclusive acquires the object's lock, invokes fn with state, releases
// the lock and returns fn's result. Every locked access to the object goes
// through here. Notifications queued by fn are delivered after the lock is
// released and before RunExclusive returns.
func RunExclusive[S, R any](o *Object, state S, fn func(s *Scope, state S) (R, error)) (R, error) {
	if fn == nil {
		var zero R
		return zero, invalidArgument("function is nil")
	}
	defer o.events.drain()

	o.lock.Lock()
	defer o.lock.Unlock()

	s := &Scope{o: o}
	defer s.close()
	return fn(s, state)
}

// ReportErrors delivers err to the registered handlers as an *AggregateError.
// With no handlers it does nothing. It must not be called while the lock is
// held; use Scope.ReportErrors from hooks.
func (o *Object) ReportErrors(err error) error {
	if err := o.queueErrors(err); err != nil {
		return err
	}
	o.events.drain()
	return nil
}

func (o *Object) queueErrors(err error) error {
	if err == nil {
		return invalidArgument("error is nil")
	}
	agg := Aggregate(err)
	if !o.events.hasHandlers() {
		return nil
	}
	o.events.enqueue(event{errors: &ErrorsEvent{Source: o, Errors: agg}})
	return nil
}

func (o *Object) raiseChanged(name string) {
	o.events.enqueue(event{changed: &PropertyChangedEvent{Source: o, Name: name}})
}

func (o *Object) raiseLifecycle(t Transition) {
	o.logger.Debug("lifecycle transition",
		log.String("type", o.typeName),
		log.String("id", o.id),
		log.String("transition", t.String()),
	)
	o.events.enqueue(event{lifecycle: &LifecycleEvent{Source: o, Transition: t}})
}

// Scope is lock-held access to an Object. It is only valid inside the
// callback it was passed to.
type Scope struct {
	o      *Object
	closed bool
}

func (s *Scope) close() { s.closed = true }

func (s *Scope) check() {
	if s.closed {
		panic("object: scope used after its callback returned")
	}
}

// Object returns the object this scope belongs to.
func (s *Scope) Object() *Object { return s.o }

// Disposed reports the disposed flag.
func (s *Scope) Disposed() bool {
	s.check()
	return s.o.disposed
}

// Running reports the running flag.
func (s *Scope) Running() bool {
	s.check()
	return s.o.running
}

// AssertNotDisposed returns a *DisposedError if the object has been disposed.
func (s *Scope) AssertNotDisposed() error {
	s.check()
	return s.o.disposedError()
}

// ReportErrors queues err for delivery once the lock is released.
func (s *Scope) ReportErrors(err error) error {
	s.check()
	return s.o.queueErrors(err)
}

func (o *Object) disposedError() error {
	if o.disposed {
		return &DisposedError{TypeName: o.typeName, ID: o.id}
	}
	return nil
}
