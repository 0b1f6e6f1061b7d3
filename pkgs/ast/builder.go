package ast

import (
	"strings"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/lexer"
)

// ParseBody preprocessed body text into child nodes: split into top-level
// statements, then classify each by its leading keyword.
func ParseBody(body string) ([]Node, error) {
	return ParseStatements(lexer.SplitStatements(body))
}

// ParseStatements classifies each statement and constructs typed nodes.
// Consecutive @if / @else if / @else statements accumulate into a single
// If node; any other statement finalizes a pending chain first.
func ParseStatements(statements []string) ([]Node, error) {
	var nodes []Node
	var pending *If

	flush := func() {
		if pending != nil {
			nodes = append(nodes, pending)
			pending = nil
		}
	}

	for _, stmt := range statements {
		line := strings.TrimSpace(stmt)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@var"):
			flush()
			name, expr, err := ParseAssignment(line)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &VarDecl{Name: name, Expr: expr})

		case strings.HasPrefix(line, "@print"):
			flush()
			arg := lexer.ExtractParens(line)
			if arg == "" && !strings.Contains(line, "(") {
				return nil, errors.New(errors.ErrParse, "@print requires a parenthesized argument").WithSnippet(line)
			}
			nodes = append(nodes, &Print{Expr: strings.TrimSpace(arg)})

		case strings.HasPrefix(line, "@if"):
			flush()
			branch, err := parseBranch(line)
			if err != nil {
				return nil, err
			}
			pending = &If{Branches: []IfBranch{branch}}

		case strings.HasPrefix(line, "@else if"):
			if pending == nil {
				return nil, errors.New(errors.ErrParse, "@else if without matching @if").WithSnippet(line)
			}
			branch, err := parseBranch(line)
			if err != nil {
				return nil, err
			}
			pending.Branches = append(pending.Branches, branch)

		case strings.HasPrefix(line, "@else"):
			if pending == nil {
				return nil, errors.New(errors.ErrParse, "@else without matching @if").WithSnippet(line)
			}
			children, err := ParseBody(lexer.ExtractBody(line))
			if err != nil {
				return nil, err
			}
			pending.Else = children
			pending.HasElse = true
			flush()

		case strings.HasPrefix(line, "@while"):
			flush()
			cond := strings.TrimSpace(lexer.ExtractParens(line))
			if cond == "" {
				return nil, errors.New(errors.ErrParse, "@while requires a condition").WithSnippet(line)
			}
			children, err := ParseBody(lexer.ExtractBody(line))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &While{Condition: cond, Children: children})

		// @foreach before @for: the latter is a prefix of the former
		case strings.HasPrefix(line, "@foreach"):
			flush()
			node, err := parseForEach(line)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		case strings.HasPrefix(line, "@for"):
			flush()
			node, err := parseFor(line)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		case strings.HasPrefix(line, "@break"):
			flush()
			nodes = append(nodes, &Break{})

		case strings.HasPrefix(line, "@continue"):
			flush()
			nodes = append(nodes, &Continue{})

		default:
			flush()
			nodes = append(nodes, &Text{Expr: strings.TrimSuffix(line, ";")})
		}
	}

	flush()
	return nodes, nil
}

// parseBranch builds one (condition, body) arm of an @if chain.
func parseBranch(line string) (IfBranch, error) {
	cond := strings.TrimSpace(lexer.ExtractParens(line))
	if cond == "" {
		return IfBranch{}, errors.New(errors.ErrParse, "empty condition in if statement").WithSnippet(line)
	}
	children, err := ParseBody(lexer.ExtractBody(line))
	if err != nil {
		return IfBranch{}, err
	}
	return IfBranch{Condition: cond, Children: children}, nil
}

// parseFor splits the parenthesized header into exactly init, condition
// and increment, then parses the body.
func parseFor(line string) (*For, error) {
	header := lexer.ExtractParens(line)
	parts := lexer.SplitStatements(header)
	if len(parts) != 3 {
		return nil, errors.Newf(errors.ErrParse, "for loop header must have 3 parts, got %d", len(parts)).WithSnippet(line)
	}

	children, err := ParseBody(lexer.ExtractBody(line))
	if err != nil {
		return nil, err
	}

	return &For{
		Init:      TrimVar(parts[0]),
		Condition: TrimVar(parts[1]),
		Increment: TrimVar(parts[2]),
		Children:  children,
	}, nil
}

// parseForEach splits the header on the " in " token sequence into the
// binding identifier and the collection expression.
func parseForEach(line string) (*ForEach, error) {
	header := lexer.ExtractParens(line)
	parts := strings.SplitN(header, " in ", 2)
	if len(parts) != 2 {
		return nil, errors.New(errors.ErrParse, "foreach header must be '<name> in <collection>'").WithSnippet(line)
	}

	name := strings.TrimSpace(parts[0])
	collection := strings.TrimSpace(parts[1])
	if !IsIdentifier(name) {
		return nil, errors.Newf(errors.ErrParse, "invalid foreach binding name %q", name).WithSnippet(line)
	}
	if collection == "" {
		return nil, errors.New(errors.ErrParse, "foreach requires a collection expression").WithSnippet(line)
	}

	children, err := ParseBody(lexer.ExtractBody(line))
	if err != nil {
		return nil, err
	}

	return &ForEach{Name: name, Collection: collection, Children: children}, nil
}

// ParseAssignment parses a `name = expr` statement, stripping a leading
// @var keyword and a trailing semicolon. The for-loop evaluator reuses it
// for init and increment statements.
func ParseAssignment(line string) (name, expr string, err error) {
	trimmed := TrimVar(line)

	eq := strings.Index(trimmed, "=")
	if eq < 0 {
		return "", "", errors.New(errors.ErrParse, "expected '=' in variable declaration").WithSnippet(line)
	}

	name = strings.TrimSpace(trimmed[:eq])
	expr = strings.TrimSpace(trimmed[eq+1:])
	if !IsIdentifier(name) {
		return "", "", errors.Newf(errors.ErrParse, "invalid variable name %q", name).WithSnippet(line)
	}
	return name, expr, nil
}

// TrimVar strips a leading "@var" keyword and a trailing semicolon.
func TrimVar(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "@var") {
		trimmed = trimmed[len("@var"):]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), ";")
	return strings.TrimSpace(trimmed)
}

// IsIdentifier reports whether s is a valid variable name: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
