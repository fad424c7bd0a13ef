package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/logger"
	"github.com/teranos/scriptpack/wrapper"
)

// Defaults for Config.
const (
	DefaultGoBinary = "go"
	DefaultLDFlags  = "-s -w"
)

const (
	mainFile   = "main.go"
	modulePath = "scriptpack.local/wrapper"
	goModFile  = "module " + modulePath + "\n\ngo 1.21\n"
)

// Config controls how GoToolchain invokes the go command.
type Config struct {
	GoBinary     string // empty: DefaultGoBinary
	MinGoVersion string // semver constraint; empty: DefaultMinGoVersion
	LDFlags      string
	Trimpath     bool
	Flags        string // extra go build flags, shell-quoted
	KeepWorkdir  bool
	WorkRoot     string // parent of build workspaces; empty: os.TempDir()
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		GoBinary:     DefaultGoBinary,
		MinGoVersion: DefaultMinGoVersion,
		LDFlags:      DefaultLDFlags,
		Trimpath:     true,
	}
}

// GoToolchain compiles wrapper source with the host Go toolchain.
type GoToolchain struct {
	cfg       Config
	allowed   []string
	run       commandRunner
	typeCheck typeCheckFunc
	logger    *zap.SugaredLogger
}

// NewGoToolchain creates a compiler. The wrapper may only import
// wrapper.RuntimeImports.
func NewGoToolchain(cfg Config) *GoToolchain {
	return &GoToolchain{
		cfg:       cfg,
		allowed:   wrapper.RuntimeImports,
		run:       execRunner,
		typeCheck: packagesTypeCheck,
		logger:    logger.ComponentLogger("toolchain"),
	}
}

var _ Compiler = (*GoToolchain)(nil)

func (g *GoToolchain) goBinary() string {
	if g.cfg.GoBinary == "" {
		return DefaultGoBinary
	}
	return g.cfg.GoBinary
}

func (g *GoToolchain) minGoVersion() string {
	if g.cfg.MinGoVersion == "" {
		return DefaultMinGoVersion
	}
	return g.cfg.MinGoVersion
}

// Compile builds src into an executable at output.
func (g *GoToolchain) Compile(ctx context.Context, src wrapper.Source, output string) (*Result, error) {
	if output == "" {
		return nil, errors.ErrOutputMissingArgument
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve output path %s", output)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, errors.WithHint(
			errors.Newf("output %s is a directory", output),
			"pass the path of the executable to create, e.g. --output "+filepath.Join(output, "app"),
		)
	}
	args, err := g.buildArgs(abs)
	if err != nil {
		return nil, err
	}

	buildID := src.BuildID
	if buildID == "" {
		buildID = uuid.NewString()
	}
	log := logger.ChildLogger(g.logger, logger.FieldBuildID, buildID)
	env := buildEnv(os.Environ())

	goVersion, err := g.checkGoVersion(ctx, env)
	if err != nil {
		return nil, err
	}
	log.Debugw("Toolchain accepted", logger.FieldGoBinary, g.goBinary(), logger.FieldGoVersion, goVersion)

	result := &Result{GoVersion: goVersion}

	start := time.Now()
	if diags := checkImports(mainFile, src.Code, g.allowed); len(diags) > 0 {
		result.add(diags...)
		log.Infow("Import check failed", logger.FieldStage, StageImports, logger.FieldCount, len(diags))
		return result, nil
	}

	workdir, err := g.prepareWorkspace(buildID, src)
	if err != nil {
		return nil, err
	}
	defer g.releaseWorkspace(log, workdir, result)

	diags, err := g.typeCheck(ctx, workdir, env)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		result.add(diags...)
		log.Infow("Type check failed", logger.FieldStage, StageTypeCheck, logger.FieldCount, len(diags))
		return result, nil
	}
	log.Debugw("Type check passed", logger.FieldDurationMS, time.Since(start).Milliseconds())

	diags, err = g.build(ctx, workdir, env, args)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		result.add(diags...)
		log.Infow("Build failed", logger.FieldStage, StageBuild, logger.FieldCount, len(diags))
		return result, nil
	}

	if info, err := os.Stat(abs); err != nil || !info.Mode().IsRegular() {
		return nil, errors.Newf("go build reported success but %s is not a file", abs)
	}
	result.Artifact = abs
	log.Infow("Build succeeded",
		logger.FieldOutput, abs,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// prepareWorkspace writes a throwaway module holding the wrapper.
func (g *GoToolchain) prepareWorkspace(buildID string, src wrapper.Source) (string, error) {
	dir, err := os.MkdirTemp(g.cfg.WorkRoot, "scriptpack-"+buildID+"-")
	if err != nil {
		return "", errors.Wrap(err, "failed to create build workspace")
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goModFile), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", errors.Wrap(err, "failed to write go.mod")
	}
	if err := os.WriteFile(filepath.Join(dir, mainFile), []byte(src.Code), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", errors.Wrap(err, "failed to write wrapper source")
	}
	return dir, nil
}

func (g *GoToolchain) releaseWorkspace(log *zap.SugaredLogger, dir string, result *Result) {
	if g.cfg.KeepWorkdir {
		result.Workdir = dir
		log.Infow("Keeping build workspace", logger.FieldWorkdir, dir)
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		log.Warnw("Failed to remove build workspace", logger.FieldWorkdir, dir, logger.FieldError, err)
	}
}

// buildEnv pins the settings a wrapper build depends on. GOOS and GOARCH
// are dropped so the executable always targets the host.
func buildEnv(base []string) []string {
	env := make([]string, 0, len(base)+3)
	for _, kv := range base {
		if strings.HasPrefix(kv, "GOOS=") || strings.HasPrefix(kv, "GOARCH=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "CGO_ENABLED=0", "GOWORK=off", "GOFLAGS=-mod=mod")
}
