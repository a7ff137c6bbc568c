package appserver

import (
	"sync"

	"github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
)

// Option configures optional behavior of a Server.
type Option func(*options)

type options struct {
	logger   log.Logger
	handlers []object.EventHandler
	plugins  []Plugin
	locker   sync.Locker
	canStart func(*object.Scope) bool
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler registers a handler for property, lifecycle and error
// notifications. Handlers are called after the server lock is released.
func WithEventHandler(handler object.EventHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.handlers = append(o.handlers, handler)
		}
	}
}

// WithPlugin registers a plugin to be initialized when the server starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		if plugin != nil {
			o.plugins = append(o.plugins, plugin)
		}
	}
}

// WithLocker puts the server into a lock domain shared with other objects.
func WithLocker(l sync.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithCanStart sets the predicate consulted before every start attempt.
func WithCanStart(fn func(s *object.Scope) bool) Option {
	return func(o *options) {
		o.canStart = fn
	}
}
