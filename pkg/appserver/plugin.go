package appserver

import (
	"context"

	"github.com/appserverkit/appserver/pkg/log"
)

// Plugin extends a Server with optional functionality.
//
// Initialize runs inside Server.Start while the server lock is held: it may
// register handlers and start goroutines, but calls that lock the server
// (ApplySettings, Setting, Status, ...) must happen from those goroutines.
// Shutdown runs after the lock has been released.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize prepares the plugin. ctx is canceled when the server is disposed.
	Initialize(ctx context.Context, pc PluginContext) error

	// Shutdown releases the plugin's resources.
	Shutdown(ctx context.Context) error
}

// PluginContext is handed to plugins on initialization.
type PluginContext struct {
	Server *Server
	Logger log.Logger
}

// BasePlugin provides no-op Initialize and Shutdown for embedding.
type BasePlugin struct{}

func (BasePlugin) Name() string                                    { return "base" }
func (BasePlugin) Initialize(context.Context, PluginContext) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                  { return nil }
