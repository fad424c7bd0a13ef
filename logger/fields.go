package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across scriptpack.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldBuildID   = "build_id"
	FieldComponent = "component"

	// Pipeline
	FieldStage  = "stage"
	FieldInput  = "input"
	FieldOutput = "output"

	// Toolchain
	FieldGoBinary  = "go_binary"
	FieldGoVersion = "go_version"
	FieldArgs      = "args"
	FieldWorkdir   = "workdir"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorType = "error_type"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type GoToolchain struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewGoToolchain() *GoToolchain {
//	    return &GoToolchain{
//	        logger: logger.ComponentLogger("toolchain"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	buildLogger := logger.ChildLogger(baseLogger, logger.FieldBuildID, id)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
