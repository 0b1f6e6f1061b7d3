package eval

import (
	"strings"

	"github.com/xtml-lang/xtml/pkgs/ast"
	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/types"
)

// Result is what evaluating a node produces: the emitted text plus the
// break/continue signals travelling outward to the nearest loop.
type Result struct {
	Text           string
	ShouldBreak    bool
	ShouldContinue bool
}

// merge concatenates emitted text and ORs the control flags.
func (r Result) merge(other Result) Result {
	return Result{
		Text:           r.Text + other.Text,
		ShouldBreak:    r.ShouldBreak || other.ShouldBreak,
		ShouldContinue: r.ShouldContinue || other.ShouldContinue,
	}
}

// Evaluate walks a node under the given environment. The environment is
// mutated in place and never rolled back on failure; partially updated
// state is observable.
func (in *Interp) Evaluate(node ast.Node, env types.Environment) (Result, error) {
	switch n := node.(type) {
	case *ast.Root:
		return in.evalChildren(n.Children, env)

	case *ast.Block:
		return in.evalChildren(n.Children, env)

	case *ast.Text:
		value, err := in.EvalExpr(n.Expr, env)
		if err != nil {
			return Result{}, err
		}
		if value.IsUnknown() {
			return Result{}, nil
		}
		return Result{Text: value.Raw}, nil

	case *ast.VarDecl:
		value, err := in.EvalExpr(n.Expr, env)
		if err != nil {
			return Result{}, err
		}
		if !value.IsUnknown() {
			env.Define(n.Name, value)
		}
		return Result{}, nil

	case *ast.Print:
		value, err := in.EvalExpr(n.Expr, env)
		if err != nil {
			return Result{}, err
		}
		if value.IsUnknown() {
			return Result{}, errors.Newf(errors.ErrValue, "@print argument evaluated to no value: %s", n.Expr)
		}
		return Result{Text: value.Raw}, nil

	case *ast.If:
		return in.evalIf(n, env)

	case *ast.While:
		return in.evalWhile(n, env)

	case *ast.For:
		return in.evalFor(n, env)

	case *ast.ForEach:
		return in.evalForEach(n, env)

	case *ast.Break:
		return Result{ShouldBreak: true}, nil

	case *ast.Continue:
		return Result{ShouldContinue: true}, nil
	}

	return Result{}, errors.Newf(errors.ErrParse, "unsupported node type %T", node)
}

// evalChildren evaluates nodes in order, stopping as soon as a control
// flag is raised so the signal can propagate outward through block
// boundaries.
func (in *Interp) evalChildren(children []ast.Node, env types.Environment) (Result, error) {
	var out Result
	for _, child := range children {
		r, err := in.Evaluate(child, env)
		if err != nil {
			return Result{}, err
		}
		out = out.merge(r)
		if out.ShouldBreak || out.ShouldContinue {
			break
		}
	}
	return out, nil
}

// evalIf tests branches top-to-bottom; the first true condition wins and
// at most one branch body runs.
func (in *Interp) evalIf(n *ast.If, env types.Environment) (Result, error) {
	for _, branch := range n.Branches {
		ok, err := in.EvalCondition(branch.Condition, env)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return in.evalChildren(branch.Children, env)
		}
	}
	if n.HasElse {
		return in.evalChildren(n.Else, env)
	}
	return Result{}, nil
}

// evalWhile repeats its body while the condition holds. Break and
// continue are consumed at the loop boundary: the flags never leave a
// loop node.
func (in *Interp) evalWhile(n *ast.While, env types.Environment) (Result, error) {
	var text strings.Builder

	for {
		ok, err := in.EvalCondition(n.Condition, env)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}

		r, err := in.evalChildren(n.Children, env)
		if err != nil {
			return Result{}, err
		}
		text.WriteString(r.Text)
		if r.ShouldBreak {
			break
		}
	}

	return Result{Text: text.String()}, nil
}

// evalFor binds the init assignment once, then loops on the condition,
// re-parsing the increment as a fresh `name = expr` after every body
// iteration.
func (in *Interp) evalFor(n *ast.For, env types.Environment) (Result, error) {
	if err := in.assign(n.Init, env); err != nil {
		return Result{}, err
	}

	var text strings.Builder
	for {
		ok, err := in.EvalCondition(n.Condition, env)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}

		r, err := in.evalChildren(n.Children, env)
		if err != nil {
			return Result{}, err
		}
		text.WriteString(r.Text)
		if r.ShouldBreak {
			break
		}

		if err := in.assign(n.Increment, env); err != nil {
			return Result{}, err
		}
	}

	return Result{Text: text.String()}, nil
}

// evalForEach evaluates the collection, which must be an array, and runs
// the body once per element with the element bound to the declared name.
func (in *Interp) evalForEach(n *ast.ForEach, env types.Environment) (Result, error) {
	collection, err := in.EvalExpr(n.Collection, env)
	if err != nil {
		return Result{}, err
	}
	if collection.Kind != types.KindArray {
		return Result{}, errors.Newf(errors.ErrType, "foreach collection is not an array: %s", n.Collection)
	}

	var text strings.Builder
	for _, item := range collection.Items {
		env.Define(n.Name, item)

		r, err := in.evalChildren(n.Children, env)
		if err != nil {
			return Result{}, err
		}
		text.WriteString(r.Text)
		if r.ShouldBreak {
			break
		}
	}

	return Result{Text: text.String()}, nil
}

// assign parses and applies a `name = expr` statement. A value that
// evaluates to Unknown is a hard failure here: loop headers cannot
// silently skip their binding.
func (in *Interp) assign(stmt string, env types.Environment) error {
	name, expr, err := ast.ParseAssignment(stmt)
	if err != nil {
		return err
	}
	value, err := in.EvalExpr(expr, env)
	if err != nil {
		return err
	}
	if value.IsUnknown() {
		return errors.Newf(errors.ErrValue, "failed to evaluate loop assignment: %s", stmt)
	}
	env.Define(name, value)
	return nil
}
