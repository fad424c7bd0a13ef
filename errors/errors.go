// Package errors provides error handling for scriptpack.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// Usage:
//
//	// Wrap with context
//	if err := os.WriteFile(path, data, 0o644); err != nil {
//	    return errors.Wrap(err, "failed to write generated source")
//	}
//
//	// Classify against the taxonomy
//	if errors.Is(err, errors.ErrInputNotFound) {
//	    // print "Script file not found."
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the packing pipeline.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInputMissingArgument indicates --input was not supplied
	ErrInputMissingArgument = New("input script not specified")

	// ErrOutputMissingArgument indicates --output was not supplied
	ErrOutputMissingArgument = New("output executable not specified")

	// ErrInputNotFound indicates the input path did not exist at check time
	ErrInputNotFound = New("script file not found")

	// ErrReadFailure indicates the input exists but could not be read
	ErrReadFailure = New("script file could not be read")

	// ErrCompilationDiagnostic indicates the toolchain reported diagnostics
	ErrCompilationDiagnostic = New("compilation reported diagnostics")

	// ErrUnexpectedFailure covers any other failure in the generate/compile stage
	ErrUnexpectedFailure = New("unexpected failure")

	// ErrToolchainUnavailable indicates the Go toolchain is missing or too old
	ErrToolchainUnavailable = New("go toolchain unavailable")

	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")
)

// Kind names for the taxonomy, as reported in JSON output.
const (
	KindInputMissingArgument  = "InputMissingArgument"
	KindOutputMissingArgument = "OutputMissingArgument"
	KindInputNotFound         = "InputNotFound"
	KindReadFailure           = "ReadFailure"
	KindCompilationDiagnostic = "CompilationDiagnostic"
	KindUnexpectedFailure     = "UnexpectedFailure"
)

var kinds = []struct {
	sentinel error
	kind     string
}{
	{ErrInputMissingArgument, KindInputMissingArgument},
	{ErrOutputMissingArgument, KindOutputMissingArgument},
	{ErrInputNotFound, KindInputNotFound},
	{ErrReadFailure, KindReadFailure},
	{ErrCompilationDiagnostic, KindCompilationDiagnostic},
}

// KindOf returns the taxonomy name for err. Anything not classified is an
// UnexpectedFailure; nil has no kind.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnexpectedFailure
}

// IsNotFoundError checks if an error is or wraps ErrInputNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrInputNotFound)
}

// IsArgumentError reports whether err is one of the missing-argument errors
func IsArgumentError(err error) bool {
	return err != nil && IsAny(err, ErrInputMissingArgument, ErrOutputMissingArgument)
}

// NewUnexpected marks err as an UnexpectedFailure while keeping its message
// and stack.
func NewUnexpected(err error, context string) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(Wrap(err, context), ErrUnexpectedFailure)
}
