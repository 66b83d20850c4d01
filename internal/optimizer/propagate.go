package optimizer

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/token"
)

// propagateConstants implements pass 1 (spec.md §4.3): a flat
// name-to-value map threaded sequentially through a function body,
// replacing identifier reads with their last known constant value.
// The map is intentionally not scope-aware and is not reset on block
// entry or loop re-entry, matching the documented design limitation
// (spec.md §9, "Constant propagation scoping").
func propagateConstants(prog *ast.Program) {
	forEachFunctionBody(prog, func(body *ast.CompoundStmt) {
		env := make(map[string]int64)
		propagateStmt(body, env)
	})
}

func propagateStmt(s ast.Stmt, env map[string]int64) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		for _, st := range n.Stmts {
			propagateStmt(st, env)
		}
	case *ast.VarDecl:
		if n.Init != nil {
			n.Init = propagateExpr(n.Init, env)
			if lit, ok := n.Init.(*ast.IntLit); ok {
				env[n.Name] = lit.Value
			} else {
				delete(env, n.Name)
			}
		}
		if n.ArraySize != nil {
			n.ArraySize = propagateExpr(n.ArraySize, env)
		}
	case *ast.ExprStmt:
		if n.X != nil {
			n.X = propagateExpr(n.X, env)
		}
	case *ast.IfStmt:
		n.Cond = propagateExpr(n.Cond, env)
		propagateStmt(n.Then, env)
		if n.Else != nil {
			propagateStmt(n.Else, env)
		}
	case *ast.WhileStmt:
		killLoopCarried(n.Body, nil, env)
		n.Cond = propagateExpr(n.Cond, env)
		propagateStmt(n.Body, env)
	case *ast.DoWhileStmt:
		killLoopCarried(n.Body, nil, env)
		propagateStmt(n.Body, env)
		n.Cond = propagateExpr(n.Cond, env)
	case *ast.ForStmt:
		if n.Init != nil {
			propagateStmt(n.Init, env)
		}
		killLoopCarried(n.Body, n.Update, env)
		if n.Cond != nil {
			n.Cond = propagateExpr(n.Cond, env)
		}
		if n.Update != nil {
			n.Update = propagateExpr(n.Update, env)
		}
		propagateStmt(n.Body, env)
	case *ast.SwitchStmt:
		n.X = propagateExpr(n.X, env)
		for _, c := range n.Cases {
			for _, st := range c.Body {
				propagateStmt(st, env)
			}
		}
		if n.Default != nil {
			for _, st := range n.Default.Body {
				propagateStmt(st, env)
			}
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = propagateExpr(n.Value, env)
		}
	}
}

// killLoopCarried removes from env every name that body or update
// assigns anywhere inside it. The flat map has no notion of loop
// iteration: without this, a counter's pre-loop constant value (from
// env) stays visible while folding the loop's own cond/update, which
// folds the condition to a constant and pins the counter to one
// post-increment value — an infinite loop in the emitted IR. Deleting
// the loop-carried names first forces propagateExpr to leave the
// cond/update/body in terms of the real (unknown-at-this-point)
// variable instead of a stale constant.
func killLoopCarried(body ast.Stmt, update ast.Expr, env map[string]int64) {
	assigned := make(map[string]bool)
	collectAssignedStmt(body, assigned)
	if update != nil {
		collectAssignedExpr(update, assigned)
	}
	for name := range assigned {
		delete(env, name)
	}
}

func collectAssignedStmt(s ast.Stmt, set map[string]bool) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		for _, st := range n.Stmts {
			collectAssignedStmt(st, set)
		}
	case *ast.VarDecl:
		if n.Init != nil {
			collectAssignedExpr(n.Init, set)
		}
		if n.ArraySize != nil {
			collectAssignedExpr(n.ArraySize, set)
		}
	case *ast.ExprStmt:
		if n.X != nil {
			collectAssignedExpr(n.X, set)
		}
	case *ast.IfStmt:
		collectAssignedExpr(n.Cond, set)
		collectAssignedStmt(n.Then, set)
		if n.Else != nil {
			collectAssignedStmt(n.Else, set)
		}
	case *ast.WhileStmt:
		collectAssignedExpr(n.Cond, set)
		collectAssignedStmt(n.Body, set)
	case *ast.DoWhileStmt:
		collectAssignedStmt(n.Body, set)
		collectAssignedExpr(n.Cond, set)
	case *ast.ForStmt:
		if n.Init != nil {
			collectAssignedStmt(n.Init, set)
		}
		if n.Cond != nil {
			collectAssignedExpr(n.Cond, set)
		}
		if n.Update != nil {
			collectAssignedExpr(n.Update, set)
		}
		collectAssignedStmt(n.Body, set)
	case *ast.SwitchStmt:
		collectAssignedExpr(n.X, set)
		for _, c := range n.Cases {
			for _, st := range c.Body {
				collectAssignedStmt(st, set)
			}
		}
		if n.Default != nil {
			for _, st := range n.Default.Body {
				collectAssignedStmt(st, set)
			}
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			collectAssignedExpr(n.Value, set)
		}
	}
}

func collectAssignedExpr(e ast.Expr, set map[string]bool) {
	switch n := e.(type) {
	case *ast.AssignExpr:
		set[n.Name] = true
		collectAssignedExpr(n.Value, set)
	case *ast.UnaryExpr:
		if n.Op == token.INC || n.Op == token.DEC {
			if ident, ok := n.Operand.(*ast.Ident); ok {
				set[ident.Name] = true
			}
		}
		collectAssignedExpr(n.Operand, set)
	case *ast.AddrOfExpr:
		collectAssignedExpr(n.Operand, set)
	case *ast.DerefExpr:
		collectAssignedExpr(n.Operand, set)
	case *ast.BinaryExpr:
		collectAssignedExpr(n.Left, set)
		collectAssignedExpr(n.Right, set)
	case *ast.CallExpr:
		for _, a := range n.Args {
			collectAssignedExpr(a, set)
		}
	case *ast.IndexExpr:
		collectAssignedExpr(n.Array, set)
		collectAssignedExpr(n.Index, set)
	case *ast.MemberExpr:
		collectAssignedExpr(n.Object, set)
	case *ast.SizeofExpr:
		if n.Operand != nil {
			collectAssignedExpr(n.Operand, set)
		}
	case *ast.TernaryExpr:
		collectAssignedExpr(n.Cond, set)
		collectAssignedExpr(n.Then, set)
		collectAssignedExpr(n.Else, set)
	case *ast.CastExpr:
		collectAssignedExpr(n.Operand, set)
	}
}

// propagateExpr rewrites e bottom-up, substituting a known-constant
// identifier with its literal value. Lvalue positions (the operand of
// '&' or of prefix/postfix ++/--) are left untouched: folding those
// would produce an expression that can no longer be assigned through,
// which is never correct regardless of the flat map's other
// imprecisions.
func propagateExpr(e ast.Expr, env map[string]int64) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident:
		if v, ok := env[n.Name]; ok {
			return &ast.IntLit{Base: n.Base, Value: v}
		}
		return n
	case *ast.AddrOfExpr:
		return n
	case *ast.UnaryExpr:
		if n.Op == token.INC || n.Op == token.DEC {
			return n
		}
		n.Operand = propagateExpr(n.Operand, env)
		return n
	case *ast.DerefExpr:
		n.Operand = propagateExpr(n.Operand, env)
		return n
	case *ast.BinaryExpr:
		n.Left = propagateExpr(n.Left, env)
		n.Right = propagateExpr(n.Right, env)
		return n
	case *ast.AssignExpr:
		n.Value = propagateExpr(n.Value, env)
		if lit, ok := n.Value.(*ast.IntLit); ok {
			env[n.Name] = lit.Value
		} else {
			delete(env, n.Name)
		}
		return n
	case *ast.CallExpr:
		for i, a := range n.Args {
			n.Args[i] = propagateExpr(a, env)
		}
		return n
	case *ast.IndexExpr:
		n.Array = propagateExpr(n.Array, env)
		n.Index = propagateExpr(n.Index, env)
		return n
	case *ast.MemberExpr:
		n.Object = propagateExpr(n.Object, env)
		return n
	case *ast.SizeofExpr:
		if n.Operand != nil {
			n.Operand = propagateExpr(n.Operand, env)
		}
		return n
	case *ast.TernaryExpr:
		n.Cond = propagateExpr(n.Cond, env)
		n.Then = propagateExpr(n.Then, env)
		n.Else = propagateExpr(n.Else, env)
		return n
	case *ast.CastExpr:
		n.Operand = propagateExpr(n.Operand, env)
		return n
	default:
		return e
	}
}
