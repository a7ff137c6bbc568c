package object

import (
	"sync"

	"github.com/appserverkit/appserver/pkg/log"
)

// StartHook runs inside Start with the lock held. It receives the proposed
// running flag (true) and returns the flag to commit. A non-nil error aborts
// Start without committing anything.
type StartHook func(s *Scope, running bool) (bool, error)

// DisposeHook runs inside Dispose (explicit = true) and Finalize
// (explicit = false) with the lock held. It receives the proposed disposed
// flag (true) and returns the flag to commit. A non-nil error aborts the
// disposal without committing anything.
type DisposeHook func(s *Scope, explicit bool, disposed bool) (bool, error)

// Option configures an Object.
type Option func(*options)

type options struct {
	locker      sync.Locker
	lockerSet   bool
	typeName    string
	properties  []string
	canStart    func(*Scope) bool
	startHook   StartHook
	disposeHook DisposeHook
	handlers    []EventHandler
	logger      log.Logger
}

func defaultOptions() options {
	return options{
		locker:   &sync.Mutex{},
		typeName: defaultTypeName,
		logger:   log.NewNoopLogger(),
	}
}

// WithLocker makes the object use l instead of its own mutex. Several
// objects sharing l form one lock domain: a hook of one object must not
// call locking methods of another object in the same domain.
func WithLocker(l sync.Locker) Option {
	return func(o *options) {
		o.locker = l
		o.lockerSet = true
	}
}

// WithTypeName sets the type name reported in diagnostics and DisposedError.
func WithTypeName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.typeName = name
		}
	}
}

// WithProperties restricts the object to the given property names. Get and
// Set on any other name fail with ErrUnknownProperty.
func WithProperties(names ...string) Option {
	return func(o *options) {
		o.properties = append(o.properties, names...)
	}
}

// WithCanStart sets the predicate consulted before every start attempt.
// It runs with the lock held. The default allows starting.
func WithCanStart(fn func(s *Scope) bool) Option {
	return func(o *options) {
		o.canStart = fn
	}
}

// WithStartHook sets the hook invoked by Start.
func WithStartHook(h StartHook) Option {
	return func(o *options) {
		o.startHook = h
	}
}

// WithDisposeHook sets the hook invoked by Dispose and Finalize.
func WithDisposeHook(h DisposeHook) Option {
	return func(o *options) {
		o.disposeHook = h
	}
}

// WithHandler registers an event handler at construction time.
func WithHandler(h EventHandler) Option {
	return func(o *options) {
		if h != nil {
			o.handlers = append(o.handlers, h)
		}
	}
}

// WithLogger sets the logger for lifecycle diagnostics.
// If not provided, a no-op logger is used.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
