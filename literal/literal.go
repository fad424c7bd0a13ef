// Package literal embeds arbitrary script text in Go source as an
// interpreted string literal.
//
// Escaping is typed: Escape accepts only Raw and returns Escaped, and an
// Escaped value cannot be turned back into Raw. Escaping an already escaped
// text is therefore a compile error rather than silent corruption.
//
// Line separators are never written raw. Each one closes the current
// fragment and concatenates a named constant that the generated program
// declares (see LineConstants):
//
//	"echo \"hi\"" + lf + ""
//
// CRLF, LF and lone CR map to distinct constants, so mixed line endings
// survive byte for byte.
//
// Long scripts are not emitted as one flat chain: go/parser bounds
// expression nesting, so Literal groups the terms into a balanced tree of
// parenthesised sums whose depth grows with the log of the line count.
package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Raw is script text exactly as it was read, line endings included.
type Raw struct {
	text string
}

// NewRaw wraps text read from a script.
func NewRaw(text string) Raw {
	return Raw{text: text}
}

// String returns the raw text.
func (r Raw) String() string { return r.text }

// Len returns the size of the raw text in bytes.
func (r Raw) Len() int { return len(r.text) }

// Escaped is script text encoded as Go string literal fragments joined by
// line separator constants. It is only produced by Escape.
type Escaped struct {
	terms []string // quoted fragments alternating with constant names
	lines int
}

// maxChain is the most terms Literal joins in a single flat sum.
const maxChain = 256

// Body returns the text that goes between the quotes of the flat form of
// the literal.
func (e Escaped) Body() string {
	if len(e.terms) == 0 {
		return ""
	}
	flat := strings.Join(e.terms, " + ")
	return flat[1 : len(flat)-1]
}

// Literal returns the complete literal expression. Up to maxChain terms it
// is the flat form; longer scripts get one parenthesised group per line.
func (e Escaped) Literal() string {
	if len(e.terms) == 0 {
		return `""`
	}
	if len(e.terms) <= maxChain {
		return strings.Join(e.terms, " + ")
	}
	var b strings.Builder
	writeTree(&b, e.terms)
	return b.String()
}

// writeTree renders terms as (left) +\n(right), halving until each group
// fits in maxChain. Every line break follows a `+`, so no semicolon is
// inserted.
func writeTree(b *strings.Builder, terms []string) {
	if len(terms) <= maxChain {
		b.WriteString(strings.Join(terms, " + "))
		return
	}
	mid := len(terms) / 2
	b.WriteString("(")
	writeTree(b, terms[:mid])
	b.WriteString(") +\n(")
	writeTree(b, terms[mid:])
	b.WriteString(")")
}

// Lines reports how many line separators were replaced by constants.
func (e Escaped) Lines() int { return e.lines }

// LineConstant is a constant the generated program must declare for
// the escaped literal to evaluate.
type LineConstant struct {
	Name  string
	Value string
}

// Decl renders the constant as a const spec, e.g. `lf = "\n"`.
func (c LineConstant) Decl() string {
	return c.Name + " = " + strconv.Quote(c.Value)
}

// Names of the line separator constants.
const (
	CRLF = "crlf"
	LF   = "lf"
	CR   = "cr"
)

// LineConstants lists every constant an escaped literal may reference.
var LineConstants = []LineConstant{
	{Name: CRLF, Value: "\r\n"},
	{Name: LF, Value: "\n"},
	{Name: CR, Value: "\r"},
}

const bom = '\uFEFF'

// Escape converts raw script text into a Go string constant expression.
//
// Rules:
//   - `"` and `\` are backslash escaped
//   - CRLF, LF and CR become `" + crlf + "`, `" + lf + "`, `" + cr + "`
//   - other C0 controls, DEL and invalid UTF-8 bytes become \xNN
//   - U+FEFF becomes \uFEFF (gc rejects a BOM inside a source file)
//
// Everything else is copied verbatim.
func Escape(raw Raw) Escaped {
	s := raw.text
	var b strings.Builder

	var terms []string
	splice := func(name string) {
		terms = append(terms, `"`+b.String()+`"`, name)
		b.Reset()
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\r' && i+1 < len(s) && s[i+1] == '\n':
			splice(CRLF)
			i += 2
			continue
		case c == '\n':
			splice(LF)
		case c == '\r':
			splice(CR)
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		case c < utf8.RuneSelf:
			b.WriteByte(c)
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			switch {
			case r == utf8.RuneError && size == 1:
				fmt.Fprintf(&b, `\x%02x`, c)
			case r == bom:
				b.WriteString(`\uFEFF`)
			default:
				b.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		i++
	}
	terms = append(terms, `"`+b.String()+`"`)

	return Escaped{terms: terms, lines: len(terms) / 2}
}
