package eval

import (
	"strings"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/types"
)

// conditionOp is a boolean connective between sub-conditions.
type conditionOp int

const (
	opAnd conditionOp = iota
	opOr
)

// EvalCondition evaluates a condition string to a boolean.
//
// A condition of exactly three whitespace-separated tokens is a single
// `lhs op rhs` comparison. Anything else is split on && and || at paren
// depth zero and combined strictly left-to-right; there is no precedence
// between the two connectives, and both operands of every comparison are
// evaluated eagerly.
func (in *Interp) EvalCondition(condition string, env types.Environment) (bool, error) {
	trimmed := strings.TrimSpace(condition)
	if trimmed == "" {
		return false, errors.New(errors.ErrParse, "empty condition")
	}

	tokens := tokenizeCondition(trimmed)
	if len(tokens) == 3 {
		return in.compare(tokens[0], tokens[1], tokens[2], trimmed, env)
	}

	conditions := splitConditions(trimmed)
	ops := parseConditionOps(trimmed)

	if len(conditions) == 0 {
		return false, errors.Newf(errors.ErrParse, "invalid condition: %s", condition)
	}
	if len(conditions) != len(ops)+1 {
		return false, errors.Newf(errors.ErrParse, "mismatched conditions and operators in: %s", condition)
	}
	if len(conditions) == 1 && conditions[0] == trimmed {
		// No connectives and no parentheses were stripped; recursing
		// would not make progress.
		return false, errors.Newf(errors.ErrParse, "invalid condition: %s", condition)
	}

	results := make([]bool, len(conditions))
	for i, sub := range conditions {
		r, err := in.EvalCondition(sub, env)
		if err != nil {
			return false, err
		}
		results[i] = r
	}

	final := results[0]
	for i, op := range ops {
		if op == opAnd {
			final = final && results[i+1]
		} else {
			final = final || results[i+1]
		}
	}
	return final, nil
}

// compare applies a relational operator according to the left operand's
// type.
func (in *Interp) compare(lhs, op, rhs, condition string, env types.Environment) (bool, error) {
	left, err := in.EvalExpr(lhs, env)
	if err != nil {
		return false, err
	}
	right, err := in.EvalExpr(rhs, env)
	if err != nil {
		return false, err
	}

	if left.IsUnknown() || right.IsUnknown() {
		return false, errors.Newf(errors.ErrValue, "unknown operand in condition: %s", condition)
	}
	if left.Kind != right.Kind {
		return false, errors.Newf(errors.ErrType, "type mismatch in condition: %s", condition)
	}

	switch left.Kind {
	case types.KindString:
		switch op {
		case "==":
			return left.Raw == right.Raw, nil
		case "!=":
			return left.Raw != right.Raw, nil
		}
		return false, errors.Newf(errors.ErrType, "invalid operator %q for string comparison", op)

	case types.KindNumber:
		leftNum, lerr := left.Int64()
		rightNum, rerr := right.Int64()
		if lerr != nil || rerr != nil {
			return false, errors.Newf(errors.ErrType, "invalid numeric operand in condition: %s", condition)
		}
		switch op {
		case "==":
			return leftNum == rightNum, nil
		case "!=":
			return leftNum != rightNum, nil
		case "<":
			return leftNum < rightNum, nil
		case "<=":
			return leftNum <= rightNum, nil
		case ">":
			return leftNum > rightNum, nil
		case ">=":
			return leftNum >= rightNum, nil
		}
		return false, errors.Newf(errors.ErrType, "invalid operator %q for numeric comparison", op)

	case types.KindBool:
		switch op {
		case "==":
			return left.Raw == right.Raw, nil
		case "!=":
			return left.Raw != right.Raw, nil
		}
		return false, errors.Newf(errors.ErrType, "invalid operator %q for boolean comparison", op)
	}

	return false, errors.Newf(errors.ErrType, "cannot compare %s values", left.Kind)
}

// tokenizeCondition splits on whitespace outside quoted literals.
func tokenizeCondition(condition string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(condition); i++ {
		c := condition[i]

		if c == '"' || c == '\'' {
			inQuotes = !inQuotes
			current.WriteByte(c)
			continue
		}
		if !inQuotes && (c == ' ' || c == '\t') {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteByte(c)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// splitConditions cuts on the & and | connective characters at paren
// depth zero, then strips one level of surrounding parentheses from each
// piece.
func splitConditions(condition string) []string {
	var conditions []string
	var current strings.Builder
	inQuotes := false
	parenDepth := 0

	for i := 0; i < len(condition); i++ {
		c := condition[i]

		if c == '"' || c == '\'' {
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
			case (c == '&' || c == '|') && parenDepth == 0:
				if current.Len() > 0 {
					conditions = append(conditions, strings.TrimSpace(current.String()))
					current.Reset()
				}
				continue
			}
		}
		current.WriteByte(c)
	}
	if current.Len() > 0 {
		conditions = append(conditions, strings.TrimSpace(current.String()))
	}

	for i, cond := range conditions {
		if strings.HasPrefix(cond, "(") && strings.HasSuffix(cond, ")") {
			conditions[i] = strings.TrimSpace(cond[1 : len(cond)-1])
		}
	}
	return conditions
}

// parseConditionOps collects the && and || connectives in textual order.
func parseConditionOps(condition string) []conditionOp {
	var ops []conditionOp
	inQuotes := false
	parenDepth := 0

	for i := 0; i < len(condition); i++ {
		c := condition[i]

		if c == '"' || c == '\'' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}

		switch c {
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '&':
			if parenDepth == 0 && i+1 < len(condition) && condition[i+1] == '&' {
				ops = append(ops, opAnd)
				i++
			}
		case '|':
			if parenDepth == 0 && i+1 < len(condition) && condition[i+1] == '|' {
				ops = append(ops, opOr)
				i++
			}
		}
	}
	return ops
}
