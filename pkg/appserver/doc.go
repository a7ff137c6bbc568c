// Package appserver provides an embeddable application server built on
// package object.
//
// A [Server] is a stateful object: it has named properties (its name, start
// time and free-form settings), a start transition that initializes plugins
// and a disposal that shuts them down.
//
// # Basic Usage
//
//	srv, err := appserver.New(appserver.Config{Name: "edge"},
//	    appserver.WithLogger(logger),
//	    appserver.WithPlugin(statusfile.New(state.NewFileRepository(dir))),
//	)
//	if err != nil {
//	    return err
//	}
//	defer srv.Dispose()
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//
// # Event Handling
//
// Register an [object.EventHandler] with [WithEventHandler] or
// [Server.AddHandler] to observe setting changes, Starting/Started,
// Disposing/Disposed and reported errors. Handlers run after the server lock
// has been released and may call back into the server.
//
// # Plugins
//
// Plugins are initialized in registration order while Start holds the lock
// and shut down in reverse order after Dispose released it. A plugin that
// fails to initialize aborts Start; the plugins before it are shut down.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules and [CompatibilityMatrix]
// to check minimum compatible versions.
package appserver
