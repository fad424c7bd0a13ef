package literal

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"github.com/teranos/scriptpack/errors"
)

// Decode evaluates an escaped literal the way the Go compiler will, with
// LineConstants in scope. Decode(Escape(r)) == r.String() for every r.
func Decode(e Escaped) (string, error) {
	var src strings.Builder
	src.WriteString("package p\n\nconst (\n")
	for _, c := range LineConstants {
		src.WriteString("\t")
		src.WriteString(c.Decl())
		src.WriteString("\n")
	}
	src.WriteString(")\n\nconst embedded = ")
	src.WriteString(e.Literal())
	src.WriteString("\n")

	return EvalStringConst(src.String(), "embedded")
}

// EvalStringConst type-checks a self-contained Go file and returns the value
// of the named package-level string constant. Imports are not resolved, so
// only declarations that need none (const/var/type) may be type-checked.
func EvalStringConst(src, name string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "embedded.go", src, parser.AllErrors)
	if err != nil {
		return "", errors.Wrap(err, "parse literal source")
	}

	conf := types.Config{}
	pkg, err := conf.Check(file.Name.Name, fset, []*ast.File{file}, nil)
	if err != nil {
		return "", errors.Wrap(err, "type-check literal source")
	}

	obj, ok := pkg.Scope().Lookup(name).(*types.Const)
	if !ok {
		return "", errors.Newf("constant %q not declared", name)
	}
	if obj.Val().Kind() != constant.String {
		return "", errors.Newf("constant %q is %s, not a string", name, obj.Val().Kind())
	}
	return constant.StringVal(obj.Val()), nil
}
