// Package logging provides structured logging for versioner runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent attributes (project, phase, target) so a failed release can be
// diagnosed from its log alone. The release pipeline reports nothing but
// success or failure to its caller; every diagnostic lives here.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("tagged release", "tag", "pkg-1.3.0")
//
// # Context Injection
//
// Loggers travel through the pipeline inside a [context.Context] rather
// than a package-level global:
//
//	ctx = logging.WithContext(ctx, logger.WithProject("pkg"))
//	...
//	logging.FromContext(ctx).WithPhase("push").Info("pushed", "remote", "origin")
//
// [FromContext] returns [NopLogger] when no logger was attached, so code
// under test never needs a logger to run.
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"pushed","project":"pkg","phase":"push","remote":"origin"}
package logging
