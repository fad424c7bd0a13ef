package toolchain

import (
	"github.com/teranos/scriptpack/errors"
)

// Stage is the compilation step that produced a diagnostic.
type Stage string

const (
	StageImports   Stage = "imports"   // go/parser syntax and import allowlist
	StageTypeCheck Stage = "typecheck" // go/packages type checking
	StageBuild     Stage = "build"     // go build (compile and link)
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one problem reported while compiling generated source.
type Diagnostic struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`               // syntax, import, type, list, build
	Position string   `json:"position,omitempty"` // file:line:col relative to the build workspace
	Message  string   `json:"message"`
}

// String renders the diagnostic as a single line.
func (d Diagnostic) String() string {
	if d.Position == "" {
		return d.Message
	}
	return d.Position + ": " + d.Message
}

// Result is the outcome of one Compile call. It is either a success (an
// artifact and no error diagnostics) or a failure (at least one error
// diagnostic); never both.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Artifact    string       `json:"artifact,omitempty"`
	GoVersion   string       `json:"go_version,omitempty"`
	Workdir     string       `json:"workdir,omitempty"` // set only when the workspace was kept
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Success reports whether an executable was produced.
func (r *Result) Success() bool {
	return r != nil && r.Artifact != "" && !r.HasErrors()
}

// Err returns nil on success and an ErrCompilationDiagnostic otherwise. A
// failure without diagnostics is an UnexpectedFailure.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}
	if r == nil || len(r.Diagnostics) == 0 {
		return errors.NewUnexpected(errors.New("no executable was produced"), "compile wrapper")
	}
	return errors.Wrapf(errors.ErrCompilationDiagnostic, "%d diagnostic(s)", len(r.Diagnostics))
}

func (r *Result) add(d ...Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d...)
}
