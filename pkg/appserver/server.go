package appserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
)

// ShutdownTimeout bounds the time plugins get to shut down.
const ShutdownTimeout = 30 * time.Second

// TypeName is reported in diagnostics and disposed errors.
const TypeName = "appserver.Server"

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("appserver: invalid configuration")

// Server properties.
var (
	PropName      = object.NewKey[string]("Name")
	PropStartedAt = object.NewKey[time.Time]("StartedAt")
)

// settingPrefix namespaces configured settings in the property store.
const settingPrefix = "settings."

// SettingKey returns the property key of the named setting.
func SettingKey(name string) object.Key[string] {
	return object.NewKey[string](settingPrefix + name)
}

// Server is the application server. It owns an object.Object and uses its
// start and dispose hooks to drive plugins.
type Server struct {
	obj     *object.Object
	config  Config
	logger  log.Logger
	plugins []Plugin

	// Guarded by the object lock.
	cancel      context.CancelFunc
	initialized []Plugin
	teardown    []Plugin
	settings    map[string]struct{}
}

// New creates a server in the stopped state. Call Start to initialize plugins.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	srv := &Server{
		config:   cfg,
		logger:   log.With(o.logger, log.String("server", cfg.Name)),
		plugins:  o.plugins,
		settings: make(map[string]struct{}),
	}

	objOpts := []object.Option{
		object.WithTypeName(TypeName),
		object.WithLogger(srv.logger),
		object.WithStartHook(srv.onStart),
		object.WithDisposeHook(srv.onDispose),
	}
	if o.locker != nil {
		objOpts = append(objOpts, object.WithLocker(o.locker))
	}
	if o.canStart != nil {
		objOpts = append(objOpts, object.WithCanStart(o.canStart))
	}
	for _, h := range o.handlers {
		objOpts = append(objOpts, object.WithHandler(h))
	}

	obj, err := object.New(objOpts...)
	if err != nil {
		return nil, err
	}
	srv.obj = obj

	if _, err := object.Set(obj, PropName, cfg.Name); err != nil {
		return nil, err
	}
	if _, err := srv.ApplySettings(cfg.Settings); err != nil {
		return nil, err
	}
	return srv, nil
}

// Object returns the underlying stateful object.
func (srv *Server) Object() *object.Object { return srv.obj }

// Name returns the configured server name.
func (srv *Server) Name() string { return srv.config.Name }

// ID returns the server's instance identifier.
func (srv *Server) ID() string { return srv.obj.ID() }

// Logger returns the server logger.
func (srv *Server) Logger() log.Logger { return srv.logger }

// Start initializes the plugins and marks the server running.
// Starting a running server is a no-op. Returns a disposed error after
// Dispose and object.ErrCannotStart when the can-start predicate refuses.
func (srv *Server) Start() error {
	err := srv.obj.Start()
	srv.runTeardown()
	if err != nil {
		return err
	}
	srv.logger.Info("server started", log.String("id", srv.ID()))
	return nil
}

// Dispose cancels the plugin context, disposes the object and shuts the
// plugins down in reverse order. Calling it again is a no-op.
func (srv *Server) Dispose() error {
	err := srv.obj.Dispose()
	srv.runTeardown()
	return err
}

// Close calls Dispose.
func (srv *Server) Close() error { return srv.Dispose() }

// CanStart reports whether the can-start predicate allows starting.
func (srv *Server) CanStart() bool { return srv.obj.CanStart() }

// IsRunning reports whether the server has been started.
func (srv *Server) IsRunning() bool { return srv.obj.IsRunning() }

// IsDisposed reports whether the server has been disposed.
func (srv *Server) IsDisposed() bool { return srv.obj.IsDisposed() }

// AddHandler registers an event handler and returns a function that removes it.
func (srv *Server) AddHandler(h object.EventHandler) (remove func()) {
	return srv.obj.AddHandler(h)
}

// ReportErrors forwards err to the registered handlers.
func (srv *Server) ReportErrors(err error) error {
	return srv.obj.ReportErrors(err)
}

// Setting returns the value of the named setting, or "" if unset.
func (srv *Server) Setting(name string) (string, error) {
	return object.Get(srv.obj, SettingKey(name), "")
}

// ApplySettings replaces the server settings with values and returns the
// names whose value changed, sorted. Settings missing from values are
// cleared. Each change raises a property notification. The update is
// atomic: if any setting cannot be written, none is.
func (srv *Server) ApplySettings(values map[string]string) ([]string, error) {
	return object.RunExclusive(srv.obj, values, func(s *object.Scope, values map[string]string) ([]string, error) {
		if err := s.AssertNotDisposed(); err != nil {
			return nil, err
		}

		names := make([]string, 0, len(values)+len(srv.settings))
		for name := range values {
			names = append(names, name)
		}
		for name := range srv.settings {
			if _, ok := values[name]; !ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		for _, name := range names {
			if _, _, err := object.Lookup(s, SettingKey(name)); err != nil {
				return nil, fmt.Errorf("setting %q: %w", name, err)
			}
		}

		var changed []string
		for _, name := range names {
			ok, err := object.Put(s, SettingKey(name), values[name])
			if err != nil {
				return changed, fmt.Errorf("setting %q: %w", name, err)
			}
			if ok {
				changed = append(changed, name)
			}
			if _, keep := values[name]; keep {
				srv.settings[name] = struct{}{}
			} else {
				delete(srv.settings, name)
			}
		}
		return changed, nil
	})
}

// Status is a snapshot of the server.
type Status struct {
	Name       string
	InstanceID string
	State      object.State
	StartedAt  time.Time
}

// Status returns a consistent snapshot of the server.
func (srv *Server) Status() (Status, error) {
	return object.RunExclusive(srv.obj, srv, func(s *object.Scope, srv *Server) (Status, error) {
		name, err := object.Load(s, PropName, srv.config.Name)
		if err != nil {
			return Status{}, err
		}
		startedAt, err := object.Load(s, PropStartedAt, time.Time{})
		if err != nil {
			return Status{}, err
		}

		st := Status{Name: name, InstanceID: srv.ID(), StartedAt: startedAt}
		switch {
		case s.Disposed():
			st.State = object.StateDisposed
		case s.Running():
			st.State = object.StateRunning
		default:
			st.State = object.StateStopped
		}
		return st, nil
	})
}

// onStart initializes plugins in registration order. A failing plugin aborts
// the start; the plugins initialized before it are torn down after the lock
// is released.
func (srv *Server) onStart(s *object.Scope, running bool) (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())
	abort := func(err error) (bool, error) {
		cancel()
		srv.scheduleTeardown()
		return false, err
	}

	pc := PluginContext{Server: srv}
	for _, p := range srv.plugins {
		pc.Logger = log.With(srv.logger, log.String("plugin", p.Name()))
		if err := p.Initialize(ctx, pc); err != nil {
			srv.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			return abort(fmt.Errorf("initialize plugin %s: %w", p.Name(), err))
		}
		srv.initialized = append(srv.initialized, p)
		srv.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if _, err := object.Put(s, PropStartedAt, time.Now()); err != nil {
		return abort(err)
	}
	srv.cancel = cancel
	return running, nil
}

// onDispose cancels the plugin context; the plugins are shut down after the
// lock is released.
func (srv *Server) onDispose(s *object.Scope, explicit bool, disposed bool) (bool, error) {
	if srv.cancel != nil {
		srv.cancel()
		srv.cancel = nil
	}
	srv.scheduleTeardown()
	return disposed, nil
}

// scheduleTeardown moves the initialized plugins to the teardown list.
// Called with the object lock held.
func (srv *Server) scheduleTeardown() {
	srv.teardown = append(srv.teardown, srv.initialized...)
	srv.initialized = nil
}

// runTeardown shuts down scheduled plugins in reverse order outside the lock
// and reports their failures as one aggregate.
func (srv *Server) runTeardown() {
	var plugins []Plugin
	_ = srv.obj.Do(func(*object.Scope) error {
		plugins, srv.teardown = srv.teardown, nil
		return nil
	})
	if len(plugins) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			srv.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			errs = append(errs, fmt.Errorf("shutdown plugin %s: %w", p.Name(), err))
			continue
		}
		srv.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}

	if len(errs) > 0 {
		_ = srv.obj.ReportErrors(&object.AggregateError{Errors: errs})
	}
}
