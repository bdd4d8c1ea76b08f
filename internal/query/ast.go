package query

import "fmt"

// Expr is a tagged-variant AST node for the boolean query language:
// Word, Not, And, Or. Implementations never carry behavior beyond
// identifying their own shape; dispatch is done by the executor's type
// switch, not by subtype polymorphism.
type Expr interface {
	isExpr()
	String() string
}

// Word is a leaf node matching documents carrying a given keyword.
type Word struct {
	Value string
}

func (Word) isExpr()          {}
func (w Word) String() string { return w.Value }

// Not negates its inner expression within the ambient result in scope
// when it is evaluated (see the executor for what "ambient" means here).
type Not struct {
	Inner Expr
}

func (Not) isExpr()          {}
func (n Not) String() string { return fmt.Sprintf("~(%s)", n.Inner) }

// And intersects its two branches' document sets, merging the surviving
// documents' keyword matches.
type And struct {
	Left, Right Expr
}

func (And) isExpr()          {}
func (a And) String() string { return fmt.Sprintf("(%s && %s)", a.Left, a.Right) }

// Or unions its two branches' document sets, merging keyword matches for
// documents present on both sides.
type Or struct {
	Left, Right Expr
}

func (Or) isExpr()          {}
func (o Or) String() string { return fmt.Sprintf("(%s || %s)", o.Left, o.Right) }
