package optimizer

import (
	"golang.org/x/exp/slices"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/token"
)

// eliminateDeadCode implements pass 5 (spec.md §4.3): `if` with a
// constant condition collapses to its taken branch, `while (0)` is
// removed outright, and a `for` whose condition is literal 0 reduces
// to its init clause. `do { B } while (0)` is never eliminated — the
// body always runs once (spec.md §9 explicitly declines to fold this
// case, leaving it an open question whether a lone dead statement
// inside such a body should fold; this implementation keeps the
// loop).
func eliminateDeadCode(prog *ast.Program) {
	forEachFunctionBody(prog, func(body *ast.CompoundStmt) {
		body.Stmts = eliminateStmtList(body.Stmts)
	})
}

// eliminateStmtList rewrites each statement and prunes any that
// collapsed away entirely (represented as a nil Stmt in the slice).
func eliminateStmtList(stmts []ast.Stmt) []ast.Stmt {
	for i, s := range stmts {
		stmts[i] = eliminateStmt(s)
	}
	if !slices.Contains(stmts, ast.Stmt(nil)) {
		return stmts
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		if stmts[i] == nil {
			stmts = slices.Delete(stmts, i, i+1)
		}
	}
	return stmts
}

// nonNilStmt guards struct fields that must hold a statement (an
// if's branches once present, a loop's body): collapsing to nothing
// there becomes an empty compound statement instead of a nil field.
func nonNilStmt(s ast.Stmt, pos token.Position) ast.Stmt {
	if s == nil {
		return &ast.CompoundStmt{Base: ast.NewBase(pos)}
	}
	return s
}

func eliminateStmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		n.Stmts = eliminateStmtList(n.Stmts)
		return n
	case *ast.IfStmt:
		if lit, ok := n.Cond.(*ast.IntLit); ok {
			if lit.Value != 0 {
				return eliminateStmt(n.Then)
			}
			if n.Else != nil {
				return eliminateStmt(n.Else)
			}
			return nil
		}
		n.Then = nonNilStmt(eliminateStmt(n.Then), n.Pos())
		if n.Else != nil {
			n.Else = nonNilStmt(eliminateStmt(n.Else), n.Pos())
		}
		return n
	case *ast.WhileStmt:
		if lit, ok := n.Cond.(*ast.IntLit); ok && lit.Value == 0 {
			return nil
		}
		n.Body = nonNilStmt(eliminateStmt(n.Body), n.Pos())
		return n
	case *ast.DoWhileStmt:
		n.Body = nonNilStmt(eliminateStmt(n.Body), n.Pos())
		return n
	case *ast.ForStmt:
		if lit, ok := n.Cond.(*ast.IntLit); ok && lit.Value == 0 {
			if n.Init != nil {
				return n.Init
			}
			return nil
		}
		n.Body = nonNilStmt(eliminateStmt(n.Body), n.Pos())
		return n
	case *ast.SwitchStmt:
		for _, c := range n.Cases {
			c.Body = eliminateStmtList(c.Body)
		}
		if n.Default != nil {
			n.Default.Body = eliminateStmtList(n.Default.Body)
		}
		return n
	default:
		return s
	}
}
