// Package pack runs the pipeline that turns a script file into an
// executable: load, escape, generate, compile.
package pack

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/literal"
	"github.com/teranos/scriptpack/logger"
	"github.com/teranos/scriptpack/script"
	"github.com/teranos/scriptpack/toolchain"
	"github.com/teranos/scriptpack/wrapper"
)

// Options carries the wrapper settings applied to every request.
type Options struct {
	TempDir     string
	TempPrefix  string
	FixedName   string
	Launcher    string // auto, shell or direct
	Interpreter string // overrides Launcher when set
}

// Report describes a finished Pack call. A report always carries the
// compiler result; diagnostics are data, not errors.
type Report struct {
	BuildID       string            `json:"build_id"`
	Input         string            `json:"input"`
	Output        string            `json:"output"`
	ScriptSize    int64             `json:"script_size"`
	ScriptLines   int               `json:"script_lines"`
	Launcher      wrapper.Launcher  `json:"launcher"`
	EmittedSource string            `json:"emitted_source,omitempty"`
	Result        *toolchain.Result `json:"result"`
	Duration      time.Duration     `json:"duration_ns"`
}

// Success reports whether the executable was produced.
func (r *Report) Success() bool {
	return r != nil && r.Result.Success()
}

// NewBuildID returns a random build id: a UUID in base58, short enough for
// file names.
func NewBuildID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// Packer runs requests against a compiler. It holds no per-request state,
// but concurrent Pack calls writing the same output race in the compiler.
type Packer struct {
	compiler   toolchain.Compiler
	opts       Options
	logger     *zap.SugaredLogger
	newBuildID func() string
	onCompile  func(Request)
}

// NewPacker creates a packer that compiles with c.
func NewPacker(c toolchain.Compiler, opts Options) *Packer {
	return &Packer{
		compiler:   c,
		opts:       opts,
		logger:     logger.ComponentLogger("pack"),
		newBuildID: NewBuildID,
	}
}

// OnCompile registers fn to run once the input is known to exist, right
// before it is read and compiled.
func (p *Packer) OnCompile(fn func(Request)) {
	p.onCompile = fn
}

// Pack builds req.Output from req.Input.
//
// Argument and loader errors are returned unchanged so callers can match
// them with errors.Is. Anything failing after the script was loaded is
// marked ErrUnexpectedFailure. Compiler diagnostics come back in the
// report with a nil error.
func (p *Packer) Pack(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	buildID := p.newBuildID()
	log := logger.ChildLogger(p.logger, logger.FieldBuildID, buildID)

	info, err := script.Stat(req.Input)
	if err != nil {
		return nil, err
	}

	if p.onCompile != nil {
		p.onCompile(req)
	}

	s, err := script.Read(req.Input, info)
	if err != nil {
		return nil, err
	}
	log.Infow("Loaded script",
		logger.FieldStage, "load",
		logger.FieldInput, s.Path,
		logger.FieldSize, s.Size,
	)

	escaped := literal.Escape(s.Text)

	launcher, err := wrapper.ResolveLauncher(p.opts.Launcher, p.opts.Interpreter, "", s.Shebang)
	if err != nil {
		return nil, errors.NewUnexpected(err, "resolve launcher")
	}

	src, err := wrapper.Generate(escaped, wrapper.Options{
		BuildID:    buildID,
		TempDir:    p.opts.TempDir,
		TempPrefix: p.opts.TempPrefix,
		FixedName:  p.opts.FixedName,
		Ext:        s.Ext,
		Launcher:   launcher,
	})
	if err != nil {
		return nil, errors.NewUnexpected(err, "generate wrapper")
	}
	if err := verifyEmbedded(src, s.Text); err != nil {
		return nil, errors.NewUnexpected(err, "verify wrapper")
	}
	log.Infow("Generated wrapper",
		logger.FieldStage, "generate",
		"launcher", launcher.Name,
		"lines", escaped.Lines(),
	)
	if logger.ShouldOutput(logger.Verbosity, logger.OutputGeneratedSource) {
		log.Debugw("Wrapper source", "source", src.Code)
	}

	report := &Report{
		BuildID:     buildID,
		Input:       s.Path,
		Output:      req.Output,
		ScriptSize:  s.Size,
		ScriptLines: escaped.Lines(),
		Launcher:    launcher,
	}

	if req.EmitSource != "" {
		if err := os.WriteFile(req.EmitSource, []byte(src.Code), 0o644); err != nil {
			return nil, errors.NewUnexpected(err, "write emitted source")
		}
		report.EmittedSource = req.EmitSource
		log.Infow("Wrote wrapper source", logger.FieldPath, req.EmitSource)
	}

	result, err := p.compiler.Compile(ctx, src, req.Output)
	if err != nil {
		return nil, errors.NewUnexpected(err, "compile wrapper")
	}
	report.Result = result
	report.Duration = time.Since(start)

	log.Infow("Pack finished",
		logger.FieldStage, "compile",
		logger.FieldOutput, report.Output,
		logger.FieldCount, len(result.Diagnostics),
		logger.FieldDurationMS, report.Duration.Milliseconds(),
	)
	return report, nil
}

// verifyEmbedded checks that the generated program embeds exactly the
// loaded bytes.
func verifyEmbedded(src wrapper.Source, want literal.Raw) error {
	got, err := wrapper.EmbeddedScript(src)
	if err != nil {
		return err
	}
	if got != want.String() {
		return errors.AssertionFailedf("embedded script differs from input (%d bytes, want %d)", len(got), want.Len())
	}
	return nil
}
