// Package appserver is the entry point for embedding the application server.
//
// Example usage:
//
//	srv, err := appserver.New(appserver.Config{Name: "edge"},
//	    appserver.WithLogger(logger),
//	    statusfile.WithStatusFile("/var/lib/edge"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// The server types live in pkg/appserver; the stateful object they are built
// on lives in pkg/object.
package appserver

import (
	"github.com/rs/zerolog"

	"github.com/appserverkit/appserver/internal/cliconfig"
	"github.com/appserverkit/appserver/pkg/appserver"
	"github.com/appserverkit/appserver/pkg/log"
)

// Server is the application server.
type Server = appserver.Server

// Config holds the server configuration.
type Config = appserver.Config

// Option configures a Server.
type Option = appserver.Option

// Plugin extends a Server.
type Plugin = appserver.Plugin

// Status is a snapshot of a Server.
type Status = appserver.Status

// New creates a server in the stopped state.
func New(cfg Config, opts ...Option) (*Server, error) {
	return appserver.New(cfg, opts...)
}

// WithLogger sets the server logger.
func WithLogger(logger log.Logger) Option {
	return appserver.WithLogger(logger)
}

// WithPlugin registers a plugin.
func WithPlugin(p Plugin) Option {
	return appserver.WithPlugin(p)
}

// Logger returns the bootstrap zerolog logger used by the command line tool.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Version is the server module version.
const Version = appserver.Version
