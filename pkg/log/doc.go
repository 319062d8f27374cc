// Package log provides the logging abstraction used by settle.
//
// The Logger interface can be implemented by any logging library. A
// zerolog adapter is provided for applications that want output, and a
// no-op logger is the default so the library stays silent unless asked
// otherwise:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//
// Implement the Logger interface to plug in anything else:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
