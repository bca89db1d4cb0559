// Package log has the logger types accepted by the xferctl SDK.
//
// [lib.Config] takes any [Logger]. When none is set the SDK uses [Noop] and
// nothing is logged. Adapting an existing logger only needs the format methods
// to do something useful:
//
//	type stdLogger struct{ *stdlog.Logger }
//
//	func (l stdLogger) Infof(format string, args ...any)    { l.Printf("INFO "+format, args...) }
//	func (l stdLogger) Warningf(format string, args ...any) { l.Printf("WARN "+format, args...) }
//	func (l stdLogger) Errorf(format string, args ...any)   { l.Printf("ERROR "+format, args...) }
//	func (l stdLogger) Debugf(format string, args ...any)   {}
//	// ... the With methods return l and SetValuesOnCtx returns the parent context.
package log

import "github.com/slok/xferctl/internal/log"

// Logger is the logger used by the SDK. Transfer runs and tasks add their
// identifiers (`run-id`, `task-id`) as structured values with [Kv].
type Logger = log.Logger

// Kv are structured logging key-value pairs.
type Kv = log.Kv

// Noop discards all the log output, it's the default logger.
var Noop = log.Noop
