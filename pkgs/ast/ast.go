// Package ast defines the node variants of the template DSL and the
// builder that assembles them from split statements.
package ast

import (
	"github.com/xtml-lang/xtml/pkgs/types"
)

// Node is the interface implemented by every AST variant. Nodes are pure
// data; evaluation lives in pkgs/eval so tests can swap the registry and
// environment deterministically.
type Node interface {
	node()
}

// Root is the top of a document's tree. It owns the environment shared by
// every block evaluated for that document.
type Root struct {
	Children []Node
	Env      types.Environment
}

// Block groups the statements of one <xtml> region.
type Block struct {
	Children []Node
}

// Text emits the value of an expression if it evaluates to a known
// value, and nothing otherwise.
type Text struct {
	Expr string
}

// VarDecl binds the result of evaluating Expr to Name.
type VarDecl struct {
	Name string
	Expr string
}

// Print emits the value of its argument expression. Unlike Text, an
// Unknown result is a build failure.
type Print struct {
	Expr string
}

// IfBranch is one `(condition, body)` arm of an If node.
type IfBranch struct {
	Condition string
	Children  []Node
}

// If evaluates at most one branch: arms are tested top-to-bottom and the
// first true condition wins; Else runs when none does.
type If struct {
	Branches []IfBranch
	Else     []Node
	HasElse  bool
}

// While repeats its children while the condition holds.
type While struct {
	Condition string
	Children  []Node
}

// For carries the three header statements of a C-style loop. Init and
// Increment are `name = expr` assignments; Increment is re-parsed on
// every iteration.
type For struct {
	Init      string
	Condition string
	Increment string
	Children  []Node
}

// ForEach binds each element of an array expression to Name in turn.
type ForEach struct {
	Name       string
	Collection string
	Children   []Node
}

// Break signals the nearest enclosing loop to stop.
type Break struct{}

// Continue signals the nearest enclosing loop to start its next
// iteration.
type Continue struct{}

func (*Root) node()     {}
func (*Block) node()    {}
func (*Text) node()     {}
func (*VarDecl) node()  {}
func (*Print) node()    {}
func (*If) node()       {}
func (*While) node()    {}
func (*For) node()      {}
func (*ForEach) node()  {}
func (*Break) node()    {}
func (*Continue) node() {}
