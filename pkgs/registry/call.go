package registry

import (
	"strings"

	"github.com/xtml-lang/xtml/pkgs/errors"
)

// ParseCall splits a function call expression `ns::fn(a1, a2, ...)` into
// its namespace, function name and raw argument strings. The arguments
// are not evaluated here; the expression evaluator does that recursively.
func ParseCall(expr string) (namespace, name string, args []string, err error) {
	trimmed := strings.TrimSpace(expr)

	sep := strings.Index(trimmed, "::")
	if sep < 0 {
		return "", "", nil, errors.Newf(errors.ErrParse, "invalid function call expression: %s", expr)
	}
	namespace = strings.TrimSpace(trimmed[:sep])

	rest := strings.TrimSpace(trimmed[sep+2:])
	paren := strings.Index(rest, "(")
	if paren < 0 || !strings.HasSuffix(rest, ")") {
		return "", "", nil, errors.Newf(errors.ErrParse, "invalid function call expression: %s", expr)
	}
	name = strings.TrimSpace(rest[:paren])

	argsText := strings.TrimSpace(rest[paren+1 : len(rest)-1])
	return namespace, name, SplitArgs(argsText), nil
}

// SplitArgs cuts a comma-separated argument list at paren depth zero,
// outside double-quoted strings. Backslash-escaped quotes inside a
// string literal do not toggle the quote state.
func SplitArgs(argsText string) []string {
	var args []string
	var current strings.Builder

	parenDepth := 0
	inQuotes := false

	for i := 0; i < len(argsText); i++ {
		c := argsText[i]

		if c == '"' && (i == 0 || argsText[i-1] != '\\') {
			inQuotes = !inQuotes
			current.WriteByte(c)
			continue
		}

		if !inQuotes {
			switch {
			case c == '(':
				parenDepth++
			case c == ')':
				parenDepth--
			case c == ',' && parenDepth == 0:
				args = append(args, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteByte(c)
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}
