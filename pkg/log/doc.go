// Package log provides the logging abstraction used by appserver components.
//
// Components accept a [Logger] and default to [NoopLogger]. The
// [ZerologAdapter] is the production implementation:
//
//	logger, err := log.NewZerologAdapter(log.Options{Level: "debug", Format: log.FormatJSON})
//
// Child loggers that add fields to every message are built with [With]:
//
//	pluginLog := log.With(logger, log.String("plugin", "statusfile"))
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log
