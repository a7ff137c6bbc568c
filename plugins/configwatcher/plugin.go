// Package configwatcher reloads server settings when the configuration file
// changes. It watches the file's directory with fsnotify, debounces bursts of
// writes and applies the loaded settings with Server.ApplySettings.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/appserverkit/appserver/pkg/appserver"
	"github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
)

// Loader reads the settings from the configuration file at path.
type Loader func(path string) (map[string]string, error)

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the configuration file to watch. Empty disables the plugin.
	Path string

	// Loader parses the file. Required when Path is set.
	Loader Loader

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Plugin implements config watching.
type Plugin struct {
	path          string
	loader        Loader
	debounceDelay time.Duration

	mu       sync.Mutex
	server   *appserver.Server
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		loader:        cfg.Loader,
		debounceDelay: cfg.DebounceDelay,
		logger:        log.NewNoopLogger(),
	}
}

// WithConfigWatcher returns an appserver Option that enables config watching.
func WithConfigWatcher(cfg Config) appserver.Option {
	return appserver.WithPlugin(New(cfg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts the watch loop. It does not touch the server itself:
// the server lock is held while plugins initialize.
func (p *Plugin) Initialize(ctx context.Context, pc appserver.PluginContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.server = pc.Server
	if pc.Logger != nil {
		p.logger = pc.Logger
	}

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}
	if p.loader == nil {
		return errors.New("configwatcher: loader is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("configwatcher: create watcher: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("configwatcher: watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("config watcher started", log.String("path", p.path))
	return nil
}

// Shutdown stops the watcher and waits for a pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.debounce != nil && p.debounce.Stop() {
		p.wg.Done()
	}
	p.debounce = nil
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.report(ctx, fmt.Errorf("configwatcher: %w", err))
		}
	}
}

func (p *Plugin) scheduleReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if p.debounce != nil && p.debounce.Stop() {
		p.wg.Done()
	}

	p.wg.Add(1)
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		defer p.wg.Done()
		p.Reload(ctx)
	})
}

// Reload loads the configuration file and applies its settings to the server.
func (p *Plugin) Reload(ctx context.Context) {
	p.mu.Lock()
	srv, logger := p.server, p.logger
	p.mu.Unlock()
	if srv == nil || ctx.Err() != nil {
		return
	}

	values, err := p.loader(p.path)
	if err != nil {
		p.report(ctx, fmt.Errorf("configwatcher: load %s: %w", p.path, err))
		return
	}

	changed, err := srv.ApplySettings(values)
	if err != nil {
		if errors.Is(err, object.ErrDisposed) {
			return
		}
		p.report(ctx, fmt.Errorf("configwatcher: apply settings: %w", err))
		return
	}
	if len(changed) > 0 {
		logger.Info("settings reloaded", log.Strings("changed", changed))
	}
}

func (p *Plugin) report(ctx context.Context, err error) {
	p.mu.Lock()
	srv, logger := p.server, p.logger
	p.mu.Unlock()

	logger.Error("config watcher error", log.Err(err))
	if srv == nil || ctx.Err() != nil {
		return
	}
	_ = srv.ReportErrors(err)
}

// Ensure Plugin implements appserver.Plugin.
var _ appserver.Plugin = (*Plugin)(nil)
