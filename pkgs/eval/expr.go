// Package eval contains the expression, condition and AST evaluators.
// An Interp carries the function registry and the error stream so tests
// can swap both deterministically.
package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/registry"
	"github.com/xtml-lang/xtml/pkgs/types"
)

// Interp evaluates expressions, conditions and AST nodes against a
// mutable environment. The zero value is not usable; construct with New.
type Interp struct {
	registry *registry.Registry
	errOut   io.Writer
}

// Option configures an Interp.
type Option func(*Interp)

// WithErrOut redirects reported (non-fatal) evaluation errors, which go
// to stderr by default.
func WithErrOut(w io.Writer) Option {
	return func(in *Interp) { in.errOut = w }
}

// New creates an interpreter using the given function registry.
func New(reg *registry.Registry, opts ...Option) *Interp {
	in := &Interp{registry: reg, errOut: os.Stderr}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// report writes a recoverable evaluation error to the error stream. The
// evaluation continues with an Unknown value; the build escalates if the
// Unknown reaches an emitted position.
func (in *Interp) report(err error) {
	fmt.Fprintln(in.errOut, "Error:", err)
}

// EvalExpr evaluates an expression: tokens split on '+' at paren depth
// zero outside strings, each classified and evaluated, then folded
// left-to-right. An empty expression evaluates to Unknown.
func (in *Interp) EvalExpr(expr string, env types.Environment) (types.Value, error) {
	result := types.Unknown()

	for _, token := range splitTopLevel(expr) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		evaled, err := in.evalToken(token, env)
		if err != nil {
			return types.Unknown(), err
		}

		if result.IsUnknown() {
			result = evaled
			continue
		}

		switch {
		case result.Kind == types.KindString || evaled.Kind == types.KindString:
			result = types.Str(result.Raw + evaled.Raw)
		case result.Kind == types.KindNumber && evaled.Kind == types.KindNumber:
			left, lerr := result.Int64()
			right, rerr := evaled.Int64()
			if lerr != nil || rerr != nil {
				return types.Unknown(), errors.Newf(errors.ErrType, "invalid numeric operand in expression: %s", expr)
			}
			result = types.Num(left + right)
		default:
			return types.Unknown(), errors.Newf(errors.ErrType, "incompatible types in expression: %s", expr)
		}
	}

	return result, nil
}

// evalToken classifies and evaluates a single token. First match wins:
// function call, array literal, string literal, numeric literal, boolean
// literal, environment identifier.
func (in *Interp) evalToken(token string, env types.Environment) (types.Value, error) {
	switch {
	case isFunctionCall(token):
		return in.evalFunction(token, env)
	case isArrayLiteral(token):
		return in.evalArray(token, env)
	case isStringLiteral(token):
		return types.Str(expandEscapes(trimQuotes(token))), nil
	case types.IsDigits(token):
		return types.NumFromString(token), nil
	case token == "true":
		return types.BoolValue(true), nil
	case token == "false":
		return types.BoolValue(false), nil
	default:
		if v, ok := env.Lookup(token); ok {
			return v, nil
		}
		return types.Unknown(), errors.Newf(errors.ErrName, "unknown token in expression: %s", token)
	}
}

// evalFunction evaluates a `ns::fn(a1, ...)` call. Arguments are
// evaluated recursively; an Unknown argument is a hard failure, while a
// missing function or bad arity is reported and yields Unknown.
func (in *Interp) evalFunction(token string, env types.Environment) (types.Value, error) {
	namespace, name, rawArgs, err := registry.ParseCall(token)
	if err != nil {
		return types.Unknown(), err
	}

	args := make([]types.Value, 0, len(rawArgs))
	for _, raw := range rawArgs {
		arg, err := in.EvalExpr(raw, env)
		if err != nil {
			return types.Unknown(), err
		}
		if arg.IsUnknown() {
			return types.Unknown(), errors.Newf(errors.ErrValue, "failed to evaluate function argument: %s", raw)
		}
		args = append(args, arg)
	}

	result, err := in.registry.Call(namespace, name, args)
	if err != nil {
		in.report(err)
		return types.Unknown(), nil
	}
	return result, nil
}

// evalArray evaluates an `[e1, e2, ...]` literal. Elements are split on
// commas at paren depth zero outside strings and evaluated recursively.
func (in *Interp) evalArray(token string, env types.Environment) (types.Value, error) {
	inner := strings.TrimSpace(token[1 : len(token)-1])

	var items []types.Value
	for _, element := range registry.SplitArgs(inner) {
		item, err := in.EvalExpr(element, env)
		if err != nil {
			return types.Unknown(), err
		}
		if item.IsUnknown() {
			return types.Unknown(), errors.Newf(errors.ErrValue, "failed to evaluate array element: %s", element)
		}
		items = append(items, item)
	}

	return types.ArrayOf(items), nil
}

// splitTopLevel cuts an expression on '+' at paren depth zero, outside
// double-quoted strings. A backslash-escaped quote does not toggle the
// quote state.
func splitTopLevel(expr string) []string {
	var tokens []string
	var current strings.Builder

	parenDepth := 0
	inQuotes := false

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		if c == '"' && (i == 0 || expr[i-1] != '\\') {
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
			case c == '+' && parenDepth == 0:
				tokens = append(tokens, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteByte(c)
	}

	if current.Len() > 0 {
		tokens = append(tokens, strings.TrimSpace(current.String()))
	}
	return tokens
}

// isFunctionCall reports whether the token looks like ns::fn(...).
func isFunctionCall(token string) bool {
	return strings.Contains(token, "::") &&
		strings.Contains(token, "(") &&
		strings.HasSuffix(token, ")")
}

func isArrayLiteral(token string) bool {
	return strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]")
}

func isStringLiteral(token string) bool {
	return len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"'
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// expandEscapes applies the string-literal escape table.
func expandEscapes(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`, `\\`, `\`)
	return r.Replace(s)
}
