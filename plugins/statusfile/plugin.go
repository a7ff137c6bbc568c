// Package statusfile keeps a status snapshot of the server on disk.
// The snapshot is written when the server starts and when it is disposed.
package statusfile

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/appserverkit/appserver/pkg/appserver"
	"github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
	"github.com/appserverkit/appserver/pkg/state"
)

// saveTimeout bounds a single snapshot write.
const saveTimeout = 5 * time.Second

// Plugin writes state.State snapshots on lifecycle notifications.
type Plugin struct {
	repo state.Repository
	now  func() time.Time

	mu     sync.Mutex
	st     state.State
	logger log.Logger
	remove func()
}

// New creates a status file plugin saving through repo.
func New(repo state.Repository) *Plugin {
	return &Plugin{
		repo:   repo,
		now:    time.Now,
		logger: log.NewNoopLogger(),
	}
}

// WithStatusFile returns an appserver Option that enables the plugin with a
// file repository in dir.
func WithStatusFile(dir string) appserver.Option {
	return appserver.WithPlugin(New(state.NewFileRepository(dir)))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "statusfile"
}

// Initialize subscribes to the server's lifecycle notifications.
func (p *Plugin) Initialize(ctx context.Context, pc appserver.PluginContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pc.Logger != nil {
		p.logger = pc.Logger
	}
	p.st = state.State{
		Name:       pc.Server.Name(),
		InstanceID: pc.Server.ID(),
		Status:     object.StateStopped.String(),
		PID:        os.Getpid(),
	}
	p.remove = pc.Server.AddHandler(object.HandlerFuncs{Lifecycle: p.onLifecycle})
	return nil
}

// Shutdown unsubscribes from the server.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	remove := p.remove
	p.remove = nil
	p.mu.Unlock()

	if remove != nil {
		remove()
	}
	return nil
}

// Snapshot returns the last recorded snapshot.
func (p *Plugin) Snapshot() state.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st
}

func (p *Plugin) onLifecycle(e object.LifecycleEvent) {
	p.mu.Lock()
	switch e.Transition {
	case object.TransitionStarted:
		p.st.MarkStarted(p.now())
	case object.TransitionDisposed:
		p.st.MarkDisposed(p.now())
	default:
		p.mu.Unlock()
		return
	}
	st := p.st
	logger := p.logger
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.repo.Save(ctx, st); err != nil {
		logger.Error("failed to save status", log.Err(err))
		return
	}
	logger.Debug("status saved", log.String("status", st.Status))
}

// Ensure Plugin implements appserver.Plugin.
var _ appserver.Plugin = (*Plugin)(nil)
