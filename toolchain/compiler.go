// Package toolchain turns generated wrapper source into a native executable.
//
// GoToolchain drives the Go toolchain in three stages, stopping at the
// first stage that reports anything:
//
//	imports    go/parser over the source; syntax errors and imports outside
//	           the runtime allowlist
//	typecheck  golang.org/x/tools/go/packages over a throwaway module
//	build      go build -o <output>
//
// Every stage reports all of its diagnostics, in order.
package toolchain

import (
	"context"

	"github.com/teranos/scriptpack/wrapper"
)

// Compiler produces an executable at output from generated source.
//
// A returned error means the compiler could not run at all (missing
// toolchain, unwritable workspace). Problems with the source itself are
// diagnostics in the Result.
type Compiler interface {
	Compile(ctx context.Context, src wrapper.Source, output string) (*Result, error)
}
