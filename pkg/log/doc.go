// Package log provides the logging port used across ptflview.
//
// Components depend on the Logger interface only. The command-line entrypoint
// wires a zerolog-backed implementation; tests use the no-op logger.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, "info")
//	logger.Info("loaded scan file", log.String("path", p), log.Int("blocks", n))
//
// Or, in tests:
//
//	logger := log.NewNoopLogger()
package log
