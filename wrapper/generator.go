// Package wrapper generates the Go source of the program that carries an
// embedded script.
//
// The generated program, when run:
//  1. writes the embedded script to a temp file (unique name by default)
//  2. starts it through the configured Launcher with inherited stdio
//  3. waits for it without a timeout
//  4. removes the temp file whatever the exit status, reporting but never
//     failing on cleanup errors
//  5. exits with the script's exit code
//
// Generation is pure text production; nothing is executed here.
package wrapper

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/literal"
)

// DefaultTempPrefix names the temp file the wrapper writes.
const DefaultTempPrefix = "scriptpack"

// Options configures the generated wrapper. TempDir and Launcher are
// injected so generation never consults the current machine.
type Options struct {
	BuildID    string
	TempDir    string // empty: os.TempDir() when the wrapper runs
	TempPrefix string // empty: DefaultTempPrefix
	FixedName  string // legacy fixed temp name; overwrites any existing file
	Ext        string // temp file extension, e.g. ".bat"
	Launcher   Launcher
	GOOS       string // empty: runtime.GOOS
}

// Source is a complete, gofmt-formatted wrapper program.
type Source struct {
	Code    string
	BuildID string
}

// String returns the source code.
func (s Source) String() string { return s.Code }

type templateData struct {
	BuildID       string
	LineConstants []literal.LineConstant
	Literal       string
	TempDir       string
	Pattern       string
	FixedName     string
	Command       []string
	HideWindow    bool
}

var tmpl = template.Must(template.New("wrapper").
	Funcs(template.FuncMap{
		"quote":       strconv.Quote,
		"stringSlice": stringSlice,
	}).
	Parse(wrapperTemplate))

// stringSlice renders a []string composite literal.
func stringSlice(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

// tempExt returns the extension of the temp script. cmd.exe picks how to
// run a file from its extension, so the Windows shell launcher always gets
// a batch extension.
func tempExt(ext string, l Launcher, goos string) string {
	if goos != "windows" || l.Name != LauncherShell {
		return ext
	}
	switch strings.ToLower(ext) {
	case ".bat", ".cmd":
		return ext
	}
	return ".bat"
}

// Generate renders the wrapper program around an escaped script literal.
func Generate(lit literal.Escaped, opts Options) (Source, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	prefix := opts.TempPrefix
	if prefix == "" {
		prefix = DefaultTempPrefix
	}
	ext := tempExt(opts.Ext, opts.Launcher, goos)
	if strings.ContainsAny(prefix+ext, `/\`) {
		return Source{}, errors.Wrapf(errors.ErrInvalidConfig, "temp file prefix %q and extension %q must not contain path separators", prefix, opts.Ext)
	}
	if strings.ContainsAny(opts.FixedName, `/\`) {
		return Source{}, errors.Wrapf(errors.ErrInvalidConfig, "fixed temp name %q must not contain path separators", opts.FixedName)
	}

	data := templateData{
		BuildID:       opts.BuildID,
		LineConstants: literal.LineConstants,
		Literal:       lit.Literal(),
		TempDir:       opts.TempDir,
		Pattern:       prefix + "-*" + ext,
		FixedName:     opts.FixedName,
		Command:       opts.Launcher.Command,
		HideWindow:    opts.Launcher.HideWindow && goos == "windows",
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Source{}, errors.Wrap(err, "render wrapper template")
	}

	formatted, err := imports.Process("main.go", buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return Source{}, errors.Wrap(err, "format wrapper source")
	}

	return Source{Code: string(formatted), BuildID: opts.BuildID}, nil
}
