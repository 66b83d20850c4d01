package optimizer

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/token"
)

// foldConstants implements pass 2 (spec.md §4.3): when both operands
// of a binary operator are integer literals, compute the result with
// wrapping 32-bit two's-complement arithmetic. Division and modulo by
// a literal zero are left unfolded, with a warning.
func foldConstants(prog *ast.Program, d *diag.Manager) {
	forEachFunctionBody(prog, func(body *ast.CompoundStmt) {
		walkStmt(body, func(e ast.Expr) ast.Expr { return foldExpr(e, d) })
	})
}

func foldExpr(e ast.Expr, d *diag.Manager) ast.Expr {
	walkExprChildren(e, func(c ast.Expr) ast.Expr { return foldExpr(c, d) })

	switch n := e.(type) {
	case *ast.BinaryExpr:
		lhs, lok := n.Left.(*ast.IntLit)
		rhs, rok := n.Right.(*ast.IntLit)
		if !lok || !rok {
			return n
		}
		if (n.Op == token.SLASH || n.Op == token.PERCENT) && rhs.Value == 0 {
			d.Warnf(n.Pos(), "division by constant zero, not folded")
			return n
		}
		v, ok := foldBinaryOp(n.Op, lhs.Value, rhs.Value)
		if !ok {
			return n
		}
		return &ast.IntLit{Base: n.Base, Value: v}
	case *ast.UnaryExpr:
		if n.IsPostfix {
			return n
		}
		lit, ok := n.Operand.(*ast.IntLit)
		if !ok {
			return n
		}
		switch n.Op {
		case token.MINUS:
			return &ast.IntLit{Base: n.Base, Value: int64(-int32(lit.Value))}
		case token.BANG:
			v := int64(0)
			if lit.Value == 0 {
				v = 1
			}
			return &ast.IntLit{Base: n.Base, Value: v}
		case token.TILDE:
			return &ast.IntLit{Base: n.Base, Value: int64(^int32(lit.Value))}
		}
		return n
	default:
		return e
	}
}

// foldBinaryOp computes the result of a binary integer operator over
// two constant operands, wrapping to 32 bits for the arithmetic
// operators. ok is false when the operator is not foldable at
// compile time (division/modulo by zero) or is not a recognized
// integer operator.
func foldBinaryOp(op token.Kind, a, b int64) (int64, bool) {
	ia, ib := int32(a), int32(b)
	switch op {
	case token.PLUS:
		return int64(ia + ib), true
	case token.MINUS:
		return int64(ia - ib), true
	case token.STAR:
		return int64(ia * ib), true
	case token.SLASH:
		if ib == 0 {
			return 0, false
		}
		return int64(ia / ib), true
	case token.PERCENT:
		if ib == 0 {
			return 0, false
		}
		return int64(ia % ib), true
	case token.AMP:
		return int64(ia & ib), true
	case token.PIPE:
		return int64(ia | ib), true
	case token.CARET:
		return int64(ia ^ ib), true
	case token.SHL:
		if ib < 0 || ib >= 32 {
			return 0, false
		}
		return int64(ia << uint(ib)), true
	case token.SHR:
		if ib < 0 || ib >= 32 {
			return 0, false
		}
		return int64(ia >> uint(ib)), true
	case token.EQ:
		return boolToInt(ia == ib), true
	case token.NEQ:
		return boolToInt(ia != ib), true
	case token.LT:
		return boolToInt(ia < ib), true
	case token.GT:
		return boolToInt(ia > ib), true
	case token.LE:
		return boolToInt(ia <= ib), true
	case token.GE:
		return boolToInt(ia >= ib), true
	case token.AND_AND:
		return boolToInt(ia != 0 && ib != 0), true
	case token.OR_OR:
		return boolToInt(ia != 0 || ib != 0), true
	}
	return 0, false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
