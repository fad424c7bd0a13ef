package toolchain

import (
	"context"
	"go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/scriptpack/errors"
)

// checkImports parses the wrapper source and reports every syntax error,
// then every import outside the allowlist. Positions are relative to
// filename.
func checkImports(filename, code string, allowed []string) []Diagnostic {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, code, parser.AllErrors)

	var diags []Diagnostic
	if err != nil {
		var list scanner.ErrorList
		if !errors.As(err, &list) {
			return []Diagnostic{{Stage: StageImports, Severity: SeverityError, Kind: "syntax", Message: err.Error()}}
		}
		for _, e := range list {
			diags = append(diags, Diagnostic{
				Stage:    StageImports,
				Severity: SeverityError,
				Kind:     "syntax",
				Position: e.Pos.String(),
				Message:  e.Msg,
			})
		}
	}
	if file == nil {
		return diags
	}

	allow := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		allow[p] = true
	}
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			path = spec.Path.Value
		}
		if allow[path] {
			continue
		}
		diags = append(diags, Diagnostic{
			Stage:    StageImports,
			Severity: SeverityError,
			Kind:     "import",
			Position: fset.Position(spec.Path.Pos()).String(),
			Message:  "import " + strconv.Quote(path) + " is not part of the wrapper runtime",
		})
	}
	return diags
}

// typeCheckFunc loads the package in dir and returns its diagnostics. A
// returned error means the loader itself could not run.
type typeCheckFunc func(ctx context.Context, dir string, env []string) ([]Diagnostic, error)

// packagesTypeCheck type checks the build workspace through go/packages.
// Dependencies are loaded from source so the root package is checked by
// go/types alone; without NeedDeps go/packages asks `go list -export` to
// compile it and the compiler output comes back a second time as a list
// error.
func packagesTypeCheck(ctx context.Context, dir string, env []string) ([]Diagnostic, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Env:     env,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes,
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load build workspace")
	}
	if len(pkgs) == 0 {
		return nil, errors.New("no packages found in build workspace")
	}

	var diags []Diagnostic
	for _, pkg := range pkgs {
		diags = append(diags, packageDiagnostics(dir, pkg.Errors)...)
	}
	return diags, nil
}

// packageDiagnostics converts loader errors to diagnostics, each reported
// once. List errors only repeat what the parser or type checker said, so
// they are dropped when either produced errors; otherwise their text may
// be raw compiler output and is split line by line.
func packageDiagnostics(dir string, errs []packages.Error) []Diagnostic {
	precise := false
	for _, e := range errs {
		if e.Kind == packages.ParseError || e.Kind == packages.TypeError {
			precise = true
			break
		}
	}

	var diags []Diagnostic
	seen := make(map[string]bool, len(errs))
	add := func(d Diagnostic) {
		key := d.Position + "\x00" + d.Message
		if seen[key] {
			return
		}
		seen[key] = true
		diags = append(diags, d)
	}

	for _, e := range errs {
		kind := packagesErrorKind(e.Kind)
		if e.Kind == packages.ListError || e.Kind == packages.UnknownError {
			if precise {
				continue
			}
			if strings.Contains(e.Msg, "\n") {
				for _, d := range parseBuildOutput(dir, e.Msg) {
					d.Stage = StageTypeCheck
					d.Kind = kind
					add(d)
				}
				continue
			}
		}
		add(Diagnostic{
			Stage:    StageTypeCheck,
			Severity: SeverityError,
			Kind:     kind,
			Position: relativePosition(dir, e.Pos),
			Message:  e.Msg,
		})
	}
	return diags
}

func packagesErrorKind(k packages.ErrorKind) string {
	switch k {
	case packages.ListError:
		return "list"
	case packages.ParseError:
		return "syntax"
	case packages.TypeError:
		return "type"
	default:
		return "unknown"
	}
}

// relativePosition strips the workspace directory from a file:line:col
// position so diagnostics read the same wherever the workspace lived.
func relativePosition(dir, pos string) string {
	if pos == "-" {
		return ""
	}
	if dir != "" {
		dirs := []string{filepath.Clean(dir)}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil && resolved != dirs[0] {
			dirs = append(dirs, resolved)
		}
		for _, d := range dirs {
			if rest, ok := strings.CutPrefix(pos, d+string(filepath.Separator)); ok {
				return rest
			}
		}
	}
	return strings.TrimPrefix(pos, "./")
}
