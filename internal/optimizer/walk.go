package optimizer

import "github.com/gmofishsauce/ccc/internal/ast"

// exprTransform rewrites one expression tree, recursing into every
// child position itself, and returns the (possibly replaced) result.
// fold.go, simplify.go, and strength.go each supply one; walkStmt
// applies it at every expression-bearing position of a statement tree,
// matching the "recurse into every AST position that may contain an
// expression or statement" traversal rule of spec.md §4.3.
type exprTransform func(ast.Expr) ast.Expr

// walkStmt applies ef to every expression held directly by s and
// recurses into every nested statement, in place.
func walkStmt(s ast.Stmt, ef exprTransform) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		for _, st := range n.Stmts {
			walkStmt(st, ef)
		}
	case *ast.VarDecl:
		if n.Init != nil {
			n.Init = ef(n.Init)
		}
		if n.ArraySize != nil {
			n.ArraySize = ef(n.ArraySize)
		}
	case *ast.ExprStmt:
		if n.X != nil {
			n.X = ef(n.X)
		}
	case *ast.IfStmt:
		n.Cond = ef(n.Cond)
		walkStmt(n.Then, ef)
		if n.Else != nil {
			walkStmt(n.Else, ef)
		}
	case *ast.WhileStmt:
		n.Cond = ef(n.Cond)
		walkStmt(n.Body, ef)
	case *ast.DoWhileStmt:
		walkStmt(n.Body, ef)
		n.Cond = ef(n.Cond)
	case *ast.ForStmt:
		if n.Init != nil {
			walkStmt(n.Init, ef)
		}
		if n.Cond != nil {
			n.Cond = ef(n.Cond)
		}
		if n.Update != nil {
			n.Update = ef(n.Update)
		}
		walkStmt(n.Body, ef)
	case *ast.SwitchStmt:
		n.X = ef(n.X)
		for _, c := range n.Cases {
			c.Value = ef(c.Value)
			for _, st := range c.Body {
				walkStmt(st, ef)
			}
		}
		if n.Default != nil {
			for _, st := range n.Default.Body {
				walkStmt(st, ef)
			}
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = ef(n.Value)
		}
	}
}

// walkExprChildren recurses ef into every child position of e and
// writes back any replacement, without touching e itself. Shared by
// every exprTransform implementation so each only has to supply the
// rewrite rule for the node it's actually transforming.
func walkExprChildren(e ast.Expr, ef exprTransform) {
	switch n := e.(type) {
	case *ast.UnaryExpr:
		n.Operand = ef(n.Operand)
	case *ast.AddrOfExpr:
		n.Operand = ef(n.Operand)
	case *ast.DerefExpr:
		n.Operand = ef(n.Operand)
	case *ast.BinaryExpr:
		n.Left = ef(n.Left)
		n.Right = ef(n.Right)
	case *ast.AssignExpr:
		n.Value = ef(n.Value)
	case *ast.CallExpr:
		for i, a := range n.Args {
			n.Args[i] = ef(a)
		}
	case *ast.IndexExpr:
		n.Array = ef(n.Array)
		n.Index = ef(n.Index)
	case *ast.MemberExpr:
		n.Object = ef(n.Object)
	case *ast.SizeofExpr:
		if n.Operand != nil {
			n.Operand = ef(n.Operand)
		}
	case *ast.TernaryExpr:
		n.Cond = ef(n.Cond)
		n.Then = ef(n.Then)
		n.Else = ef(n.Else)
	case *ast.CastExpr:
		n.Operand = ef(n.Operand)
	}
}
