package optimizer

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/token"
)

// simplifyAlgebraic implements pass 3 (spec.md §4.3): the fixed set
// of identities `x+0`, `0+x`, `x-0`, `x*0`, `0*x`, `x*1`, `1*x`,
// `x/1`, each collapsing to one side without needing both operands to
// be constant.
func simplifyAlgebraic(prog *ast.Program) {
	forEachFunctionBody(prog, func(body *ast.CompoundStmt) {
		walkStmt(body, simplifyExpr)
	})
}

func simplifyExpr(e ast.Expr) ast.Expr {
	walkExprChildren(e, simplifyExpr)

	n, ok := e.(*ast.BinaryExpr)
	if !ok {
		return e
	}

	lhs, lok := n.Left.(*ast.IntLit)
	rhs, rok := n.Right.(*ast.IntLit)

	switch n.Op {
	case token.PLUS:
		if rok && rhs.Value == 0 {
			return n.Left
		}
		if lok && lhs.Value == 0 {
			return n.Right
		}
	case token.MINUS:
		if rok && rhs.Value == 0 {
			return n.Left
		}
	case token.STAR:
		if (rok && rhs.Value == 0) || (lok && lhs.Value == 0) {
			return &ast.IntLit{Base: n.Base, Value: 0}
		}
		if rok && rhs.Value == 1 {
			return n.Left
		}
		if lok && lhs.Value == 1 {
			return n.Right
		}
	case token.SLASH:
		if rok && rhs.Value == 1 {
			return n.Left
		}
	}
	return n
}
