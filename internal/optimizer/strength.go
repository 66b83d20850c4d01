package optimizer

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/token"
)

// reduceStrength implements pass 4 (spec.md §4.3): detect
// multiplication or division by a positive power of two and record
// the opportunity. The actual shift substitution is explicitly left
// to the back end (spec.md §9's open question), so this pass never
// rewrites the tree; it only reports through d.
func reduceStrength(prog *ast.Program, d *diag.Manager) {
	forEachFunctionBody(prog, func(body *ast.CompoundStmt) {
		walkStmt(body, func(e ast.Expr) ast.Expr { return detectStrengthReduction(e, d) })
	})
}

func detectStrengthReduction(e ast.Expr, d *diag.Manager) ast.Expr {
	walkExprChildren(e, func(c ast.Expr) ast.Expr { return detectStrengthReduction(c, d) })

	n, ok := e.(*ast.BinaryExpr)
	if !ok || (n.Op != token.STAR && n.Op != token.SLASH) {
		return e
	}
	rhs, ok := n.Right.(*ast.IntLit)
	if !ok {
		return e
	}
	if shift, isPow2 := powerOfTwoShift(rhs.Value); isPow2 {
		verb := "multiplication"
		if n.Op == token.SLASH {
			verb = "division"
		}
		d.Notef(n.Pos(), "%s by 2^%d could be strength-reduced to a shift", verb, shift)
	}
	return e
}

// powerOfTwoShift reports whether v is a positive power of two and,
// if so, the shift amount that equals it.
func powerOfTwoShift(v int64) (int, bool) {
	if v <= 0 || v&(v-1) != 0 {
		return 0, false
	}
	shift := 0
	for v > 1 {
		v >>= 1
		shift++
	}
	return shift, true
}
