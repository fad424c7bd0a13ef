package toolchain

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/wrapper"
)

const validSource = `package main

import "os"

func main() { os.Exit(0) }
`

// fakeGo stands in for the go command.
type fakeGo struct {
	version    string
	versionErr error
	buildOut   string
	buildErr   error
	calls      [][]string
}

func (f *fakeGo) run(_ context.Context, dir string, _ []string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	switch args[0] {
	case "env":
		return []byte(f.version + "\n"), f.versionErr
	case "build":
		if f.buildErr != nil {
			return []byte(f.buildOut), f.buildErr
		}
		for i, a := range args {
			if a == "-o" {
				if err := os.WriteFile(args[i+1], []byte("binary"), 0o755); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	}
	return nil, errors.Newf("unexpected go invocation %v", args)
}

func (f *fakeGo) builds() [][]string {
	var out [][]string
	for _, c := range f.calls {
		if len(c) > 1 && c[1] == "build" {
			out = append(out, c)
		}
	}
	return out
}

func noTypeErrors(context.Context, string, []string) ([]Diagnostic, error) { return nil, nil }

func newTestToolchain(t *testing.T, fake *fakeGo, cfg Config) *GoToolchain {
	t.Helper()
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = t.TempDir()
	}
	g := NewGoToolchain(cfg)
	g.run = fake.run
	g.typeCheck = noTypeErrors
	return g
}

func TestParseGoVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"go1.24.6", "1.24.6"},
		{"go1.21\n", "1.21.0"},
		{"go1.25rc1", "1.25.0"},
		{"devel go1.26-abcdef Tue Jan 1 00:00:00 2026 +0000", "1.26.0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseGoVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}

	_, err := ParseGoVersion("not a version")
	assert.Error(t, err)
}

func TestCompile_Success(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	cfg := DefaultConfig()
	g := newTestToolchain(t, fake, cfg)

	output := filepath.Join(t.TempDir(), "app")
	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource, BuildID: "b1"}, output)
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.NoError(t, result.Err())
	assert.Equal(t, output, result.Artifact)
	assert.Equal(t, "go1.24.6", result.GoVersion)
	assert.FileExists(t, output)

	builds := fake.builds()
	require.Len(t, builds, 1)
	assert.Equal(t, []string{"go", "build", "-trimpath", "-ldflags", "-s -w", "-o", output, "."}, builds[0])

	entries, err := os.ReadDir(g.cfg.WorkRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "build workspace should be removed")
	assert.Empty(t, result.Workdir)
}

func TestCompile_KeepWorkdir(t *testing.T) {
	fake := &fakeGo{version: "go1.22.0"}
	cfg := DefaultConfig()
	cfg.KeepWorkdir = true
	g := newTestToolchain(t, fake, cfg)

	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource, BuildID: "keep"}, filepath.Join(t.TempDir(), "app"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Workdir)

	assert.True(t, strings.HasPrefix(filepath.Base(result.Workdir), "scriptpack-keep-"))
	code, err := os.ReadFile(filepath.Join(result.Workdir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, validSource, string(code))

	mod, err := os.ReadFile(filepath.Join(result.Workdir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "module scriptpack.local/wrapper")
}

func TestCompile_ExtraFlags(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	cfg := DefaultConfig()
	cfg.Trimpath = false
	cfg.LDFlags = ""
	cfg.Flags = `-tags "osusergo netgo" -v`
	g := newTestToolchain(t, fake, cfg)

	output := filepath.Join(t.TempDir(), "app")
	_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, output)
	require.NoError(t, err)

	builds := fake.builds()
	require.Len(t, builds, 1)
	assert.Equal(t, []string{"go", "build", "-tags", "osusergo netgo", "-v", "-o", output, "."}, builds[0])
}

func TestCompile_InvalidFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags string
	}{
		{"unbalanced quote", `-tags "a`},
		{"output override", `-o /tmp/elsewhere`},
		{"output override joined", `-o=/tmp/elsewhere`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGo{version: "go1.24.6"}
			cfg := DefaultConfig()
			cfg.Flags = tt.flags
			g := newTestToolchain(t, fake, cfg)

			_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			assert.Empty(t, fake.calls, "no go command should run")
		})
	}
}

func TestCompile_ToolchainTooOld(t *testing.T) {
	fake := &fakeGo{version: "go1.19.13"}
	g := newTestToolchain(t, fake, DefaultConfig())

	output := filepath.Join(t.TempDir(), "app")
	_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, output)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrToolchainUnavailable))
	assert.Contains(t, errors.FlattenHints(err), "build.min_go_version")
	assert.Empty(t, fake.builds())
	assert.NoFileExists(t, output)
}

func TestCompile_ToolchainMissing(t *testing.T) {
	fake := &fakeGo{versionErr: &exec.Error{Name: "go", Err: exec.ErrNotFound}}
	g := newTestToolchain(t, fake, DefaultConfig())

	_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrToolchainUnavailable))
	assert.Contains(t, errors.FlattenHints(err), "build.go_binary")
}

func TestCompile_InvalidMinVersion(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	cfg := DefaultConfig()
	cfg.MinGoVersion = "not a constraint"
	g := newTestToolchain(t, fake, cfg)

	_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestCompile_MissingOutput(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	g := newTestToolchain(t, fake, DefaultConfig())

	_, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, "")
	assert.True(t, errors.Is(err, errors.ErrOutputMissingArgument))
	assert.Empty(t, fake.calls)
}

func TestCompile_OutputIsDirectory(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	g := newTestToolchain(t, fake, DefaultConfig())

	dir := t.TempDir()
	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, dir)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "is a directory")
	assert.Empty(t, fake.calls, "rejected before the go command runs")
}

func TestCompile_DisallowedImport(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	g := newTestToolchain(t, fake, DefaultConfig())
	typeChecked := false
	g.typeCheck = func(context.Context, string, []string) ([]Diagnostic, error) {
		typeChecked = true
		return nil, nil
	}

	src := "package main\n\nimport (\n\t\"net/http\"\n\t\"os\"\n)\n\nfunc main() { _ = http.MethodGet; os.Exit(0) }\n"
	result, err := g.Compile(context.Background(), wrapper.Source{Code: src}, filepath.Join(t.TempDir(), "app"))
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, StageImports, d.Stage)
	assert.Equal(t, "import", d.Kind)
	assert.Equal(t, "main.go:4:2", d.Position)
	assert.Contains(t, d.Message, `"net/http"`)

	assert.False(t, result.Success())
	assert.True(t, errors.Is(result.Err(), errors.ErrCompilationDiagnostic))
	assert.False(t, typeChecked, "later stages are skipped")
	assert.Empty(t, fake.builds())
}

func TestCompile_SyntaxErrorsInOrder(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	g := newTestToolchain(t, fake, DefaultConfig())

	src := "package main\n\nfunc main() {\n\tx := \n}\n\nfunc other( {\n}\n"
	result, err := g.Compile(context.Background(), wrapper.Source{Code: src}, filepath.Join(t.TempDir(), "app"))
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Diagnostics), 2)
	prev := 0
	for _, d := range result.Diagnostics {
		assert.Equal(t, "syntax", d.Kind)
		line := lineOf(t, d.Position)
		assert.GreaterOrEqual(t, line, prev, "diagnostics are reported in source order")
		prev = line
	}
	first := lineOf(t, result.Diagnostics[0].Position)
	last := lineOf(t, result.Diagnostics[len(result.Diagnostics)-1].Position)
	assert.Less(t, first, last, "every syntax error is reported, not just the first")
	assert.Empty(t, fake.builds())
}

func lineOf(t *testing.T, pos string) int {
	t.Helper()
	parts := strings.Split(pos, ":")
	require.GreaterOrEqual(t, len(parts), 2, pos)
	require.Equal(t, "main.go", parts[0])
	n, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	return n
}

func TestCompile_TypeCheckDiagnostics(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6"}
	g := newTestToolchain(t, fake, DefaultConfig())
	g.typeCheck = func(context.Context, string, []string) ([]Diagnostic, error) {
		return []Diagnostic{
			{Stage: StageTypeCheck, Severity: SeverityError, Kind: "type", Position: "main.go:5:2", Message: "first"},
			{Stage: StageTypeCheck, Severity: SeverityError, Kind: "type", Position: "main.go:9:4", Message: "second"},
		}, nil
	}

	output := filepath.Join(t.TempDir(), "app")
	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, output)
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, "main.go:5:2: first", result.Diagnostics[0].String())
	assert.Equal(t, "main.go:9:4: second", result.Diagnostics[1].String())
	assert.Empty(t, fake.builds())
	assert.NoFileExists(t, output)
}

func TestCompile_BuildDiagnostics(t *testing.T) {
	fake := &fakeGo{
		version:  "go1.24.6",
		buildOut: "# scriptpack.local/wrapper\n./main.go:10:2: undefined: x\n./main.go:11:2: declared and not used: y\n",
		buildErr: errors.New("exit status 1"),
	}
	g := newTestToolchain(t, fake, DefaultConfig())

	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, "main.go:10:2: undefined: x", result.Diagnostics[0].String())
	assert.Equal(t, "main.go:11:2: declared and not used: y", result.Diagnostics[1].String())
	assert.Equal(t, StageBuild, result.Diagnostics[0].Stage)
	assert.Empty(t, result.Artifact)
}

func TestCompile_BuildFailureWithoutOutput(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6", buildErr: errors.New("signal: killed")}
	g := newTestToolchain(t, fake, DefaultConfig())

	result, err := g.Compile(context.Background(), wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "go build failed: signal: killed", result.Diagnostics[0].Message)
}

func TestCompile_Cancelled(t *testing.T) {
	fake := &fakeGo{version: "go1.24.6", buildErr: errors.New("signal: killed")}
	g := newTestToolchain(t, fake, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	g.typeCheck = func(context.Context, string, []string) ([]Diagnostic, error) {
		cancel()
		return nil, nil
	}

	_, err := g.Compile(ctx, wrapper.Source{Code: validSource}, filepath.Join(t.TempDir(), "app"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseBuildOutput(t *testing.T) {
	workdir := filepath.Join(os.TempDir(), "scriptpack-x")
	out := strings.Join([]string{
		"# scriptpack.local/wrapper",
		filepath.Join(workdir, "main.go") + ":3:1: syntax error: unexpected }",
		"main.go:7: missing return",
		"go: updates to go.mod needed",
		"",
	}, "\n")

	diags := parseBuildOutput(workdir, out)
	require.Len(t, diags, 3)
	assert.Equal(t, "main.go:3:1", diags[0].Position)
	assert.Equal(t, "syntax error: unexpected }", diags[0].Message)
	assert.Equal(t, "main.go:7", diags[1].Position)
	assert.Equal(t, "", diags[2].Position)
	assert.Equal(t, "go: updates to go.mod needed", diags[2].Message)
}

func TestBuildEnv(t *testing.T) {
	env := buildEnv([]string{"PATH=/usr/bin", "GOOS=windows", "GOARCH=arm64", "HOME=/root"})
	assert.Equal(t, []string{"PATH=/usr/bin", "HOME=/root", "CGO_ENABLED=0", "GOWORK=off", "GOFLAGS=-mod=mod"}, env)
}

func TestRelativePosition(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "ws")
	assert.Equal(t, "main.go:1:2", relativePosition(dir, filepath.Join(dir, "main.go")+":1:2"))
	assert.Equal(t, "main.go:1:2", relativePosition(dir, "./main.go:1:2"))
	assert.Equal(t, "", relativePosition(dir, "-"))
	assert.Equal(t, "other.go:1", relativePosition("", "other.go:1"))
}

func TestPackageDiagnostics_DropsCompilerEcho(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "ws")
	errs := []packages.Error{
		{
			Pos:  "-",
			Msg:  "# scriptpack.local/wrapper\n./main.go:6:10: cannot use \"one\"\n./main.go:7:10: cannot use \"two\"\n",
			Kind: packages.ListError,
		},
		{Pos: filepath.Join(dir, "main.go") + ":6:10", Msg: `cannot use "one"`, Kind: packages.TypeError},
		{Pos: filepath.Join(dir, "main.go") + ":7:10", Msg: `cannot use "two"`, Kind: packages.TypeError},
		{Pos: filepath.Join(dir, "main.go") + ":7:10", Msg: `cannot use "two"`, Kind: packages.TypeError},
	}

	diags := packageDiagnostics(dir, errs)
	require.Len(t, diags, 2)
	assert.Equal(t, `main.go:6:10: cannot use "one"`, diags[0].String())
	assert.Equal(t, `main.go:7:10: cannot use "two"`, diags[1].String())
	for _, d := range diags {
		assert.Equal(t, "type", d.Kind)
		assert.NotContains(t, d.Message, "\n")
	}
}

func TestPackageDiagnostics_SplitsListOutput(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "ws")
	errs := []packages.Error{{
		Pos:  "-",
		Msg:  "# scriptpack.local/wrapper\n./main.go:3:1: undefined: x\n./main.go:4:1: undefined: y",
		Kind: packages.ListError,
	}}

	diags := packageDiagnostics(dir, errs)
	require.Len(t, diags, 2)
	assert.Equal(t, "main.go:3:1: undefined: x", diags[0].String())
	assert.Equal(t, "main.go:4:1: undefined: y", diags[1].String())
	assert.Equal(t, StageTypeCheck, diags[0].Stage)
	assert.Equal(t, "list", diags[0].Kind)
}

func TestPackageDiagnostics_SingleListError(t *testing.T) {
	diags := packageDiagnostics("", []packages.Error{{Pos: "-", Msg: "no Go files in /ws", Kind: packages.ListError}})
	require.Len(t, diags, 1)
	assert.Equal(t, "", diags[0].Position)
	assert.Equal(t, "no Go files in /ws", diags[0].Message)
}
