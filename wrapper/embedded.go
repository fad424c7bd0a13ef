package wrapper

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/literal"
)

// EmbeddedScript evaluates the script constant of a generated wrapper, i.e.
// the exact bytes the wrapper will write to its temp file.
func EmbeddedScript(src Source) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", src.Code, parser.AllErrors)
	if err != nil {
		return "", errors.Wrap(err, "parse wrapper source")
	}

	// Only the const declarations are needed; they reference no imports.
	var consts bytes.Buffer
	consts.WriteString("package main\n\n")
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		if err := printer.Fprint(&consts, fset, gen); err != nil {
			return "", errors.Wrap(err, "print const declaration")
		}
		consts.WriteString("\n\n")
	}

	return literal.EvalStringConst(consts.String(), "script")
}
