// Package logger provides a structured logging interface for the hasher.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output on stderr
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "phasher/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Run started")
//	logger.WithField("path", "cat.jpg").Error("Failed to decode image")
//
// Log output goes to stderr so that it never interleaves with the progress
// bar or with data written to stdout.
package logger
