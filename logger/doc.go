// Package logger provides structured logging for livefeed services,
// built on zerolog.
//
// It supports JSON output for production and a colorized console format
// for development, component tagging, and a process-wide global logger
// for packages that have no logger instance wired in.
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "console"}, "feedd")
//	log.WithComponent("stream").Info("connected", logger.Fields("endpoint", url))
package logger
