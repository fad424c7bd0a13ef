// Package display renders pack outcomes for people (one line per event on
// stdout) and for machines (--json).
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/logger"
	"github.com/teranos/scriptpack/pack"
	"github.com/teranos/scriptpack/toolchain"
)

// User-facing messages.
const (
	MsgCompiling     = "Compiling script to executable..."
	MsgSuccess       = "Executable successfully created at: %s"
	MsgInputMissing  = "Input script not specified. Use --input <path>"
	MsgOutputMissing = "Output executable not specified. Use --output <path>"
	MsgInputNotFound = "Script file not found."
)

// Printer writes the human-readable report.
type Printer struct {
	w       io.Writer
	color   bool
	verbose bool // also print error hints
}

// NewPrinter returns a printer writing to w. Color is only used when w is
// a terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, color: logger.ColorAllowed(w), verbose: verbose}
}

func (p *Printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *Printer) errorLine(msg string) {
	prefix := "Error:"
	if p.color {
		prefix = pterm.Red(prefix)
	}
	p.line(prefix + " " + msg)
}

// Compiling announces the start of a build.
func (p *Printer) Compiling() {
	p.line(MsgCompiling)
}

// Report prints the outcome of a finished pack: the success line, or one
// error line per diagnostic in order.
func (p *Printer) Report(r *pack.Report) {
	if r.Success() {
		msg := fmt.Sprintf(MsgSuccess, r.Output)
		if p.color {
			msg = pterm.Green(msg)
		}
		p.line(msg)
		return
	}
	if r.Result == nil || len(r.Result.Diagnostics) == 0 {
		p.errorLine(r.Result.Err().Error())
		return
	}
	for _, d := range r.Result.Diagnostics {
		p.errorLine(d.String())
	}
}

// Error prints a failed pack.
func (p *Printer) Error(err error) {
	p.errorLine(Message(err))
	if !p.verbose {
		return
	}
	for _, hint := range errors.GetAllHints(err) {
		h := "  hint: " + hint
		if p.color {
			h = pterm.Gray(h)
		}
		p.line(h)
	}
}

// Message maps an error to the text shown after "Error: ".
func Message(err error) string {
	switch {
	case errors.Is(err, errors.ErrInputMissingArgument):
		return MsgInputMissing
	case errors.Is(err, errors.ErrOutputMissingArgument):
		return MsgOutputMissing
	case errors.Is(err, errors.ErrInputNotFound):
		return MsgInputNotFound
	default:
		return err.Error()
	}
}

// Outcome is the --json rendering of one pack.
type Outcome struct {
	Success     bool                   `json:"success"`
	Kind        string                 `json:"kind,omitempty"`
	Message     string                 `json:"message"`
	Hints       []string               `json:"hints,omitempty"`
	BuildID     string                 `json:"build_id,omitempty"`
	Input       string                 `json:"input,omitempty"`
	Output      string                 `json:"output,omitempty"`
	Artifact    string                 `json:"artifact,omitempty"`
	GoVersion   string                 `json:"go_version,omitempty"`
	Diagnostics []toolchain.Diagnostic `json:"diagnostics,omitempty"`
	DurationMS  int64                  `json:"duration_ms,omitempty"`
	Time        time.Time              `json:"time"`
}

// NewOutcome summarizes a Pack result for JSON output.
func NewOutcome(r *pack.Report, err error) Outcome {
	o := Outcome{Time: time.Now().UTC()}
	if err != nil {
		o.Kind = errors.KindOf(err)
		o.Message = Message(err)
		o.Hints = errors.GetAllHints(err)
		return o
	}

	o.BuildID = r.BuildID
	o.Input = r.Input
	o.Output = r.Output
	o.DurationMS = r.Duration.Milliseconds()
	if r.Result != nil {
		o.Artifact = r.Result.Artifact
		o.GoVersion = r.Result.GoVersion
		o.Diagnostics = r.Result.Diagnostics
	}
	if r.Success() {
		o.Success = true
		o.Message = fmt.Sprintf(MsgSuccess, r.Output)
		return o
	}
	rerr := r.Result.Err()
	o.Kind = errors.KindOf(rerr)
	o.Message = rerr.Error()
	return o
}
