package toolchain

import (
	"bufio"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/logger"
)

// commandRunner executes a command and returns its combined output.
type commandRunner func(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	return cmd.CombinedOutput()
}

var buildLinePattern = regexp.MustCompile(`^(.+?\.go):(\d+)(?::(\d+))?: (.*)$`)

// buildArgs assembles the go build command line.
func (g *GoToolchain) buildArgs(output string) ([]string, error) {
	args := []string{"build"}
	if g.cfg.Trimpath {
		args = append(args, "-trimpath")
	}
	if g.cfg.LDFlags != "" {
		args = append(args, "-ldflags", g.cfg.LDFlags)
	}
	extra, err := shellquote.Split(g.cfg.Flags)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "build.flags %q: %v", g.cfg.Flags, err)
	}
	for _, f := range extra {
		if f == "-o" || strings.HasPrefix(f, "-o=") {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrInvalidConfig, "build.flags must not set the output (%q)", f),
				"use --output instead",
			)
		}
	}
	args = append(args, extra...)
	return append(args, "-o", output, "."), nil
}

// build runs go build in workdir. Build failures come back as diagnostics;
// an error means the go command could not be started or was cancelled.
func (g *GoToolchain) build(ctx context.Context, workdir string, env, args []string) ([]Diagnostic, error) {
	if logger.ShouldOutput(logger.Verbosity, logger.OutputToolchain) {
		g.logger.Debugw("Running go build",
			logger.FieldGoBinary, g.goBinary(),
			logger.FieldArgs, strings.Join(args, " "),
			logger.FieldWorkdir, workdir,
		)
	}

	out, err := g.run(ctx, workdir, env, g.goBinary(), args...)
	if logger.ShouldOutput(logger.Verbosity, logger.OutputToolchainOutput) && len(out) > 0 {
		g.logger.Debugw("go build output", "output", string(out))
	}
	if err == nil {
		return nil, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(ctxErr, "go build cancelled")
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrToolchainUnavailable, "run %s: %v", g.goBinary(), err),
			"point build.go_binary at a Go toolchain",
		)
	}

	diags := parseBuildOutput(workdir, string(out))
	if len(diags) == 0 {
		diags = append(diags, Diagnostic{
			Stage:    StageBuild,
			Severity: SeverityError,
			Kind:     "build",
			Message:  "go build failed: " + err.Error(),
		})
	}
	return diags, nil
}

// parseBuildOutput turns go build output into diagnostics. Package header
// lines ("# pkg") are dropped; file:line[:col]: msg lines keep their
// position; anything else is reported verbatim.
func parseBuildOutput(workdir, out string) []Diagnostic {
	var diags []Diagnostic
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "# ") {
			continue
		}
		if m := buildLinePattern.FindStringSubmatch(trimmed); m != nil {
			pos := m[1] + ":" + m[2]
			if m[3] != "" {
				pos += ":" + m[3]
			}
			diags = append(diags, Diagnostic{
				Stage:    StageBuild,
				Severity: SeverityError,
				Kind:     "build",
				Position: relativePosition(workdir, pos),
				Message:  m[4],
			})
			continue
		}
		diags = append(diags, Diagnostic{
			Stage:    StageBuild,
			Severity: SeverityError,
			Kind:     "build",
			Message:  trimmed,
		})
	}
	return diags
}
