// Package optimizer rewrites a parsed AST into an equivalent, smaller
// one through five ordered passes: constant propagation, constant
// folding, algebraic simplification, strength reduction, and
// dead-code elimination (spec.md §4.3). Every pass performs exactly
// one traversal; fixpoint iteration is not required.
//
// Retargeted from the teacher's ypeep.optimize, which runs a
// fixed-point loop of peephole patterns over an assembly line slice;
// here the rewrite targets AST nodes instead of text lines and each
// pass runs once, in the fixed order the specification pins, rather
// than looping until no pattern fires.
package optimizer

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
)

// Level selects which passes run, matching spec.md §4.3's three tiers.
type Level int

const (
	O0 Level = iota
	O1
	O2
)

// Run applies the passes enabled at level to prog in place. d receives
// the warnings individual passes emit (skipped division-by-zero folds,
// strength-reduction findings).
func Run(prog *ast.Program, level Level, d *diag.Manager) {
	if level >= O1 {
		propagateConstants(prog)
		foldConstants(prog, d)
		simplifyAlgebraic(prog)
	}
	if level >= O2 {
		reduceStrength(prog, d)
		eliminateDeadCode(prog)
	}
}

// forEachFunctionBody runs f over the body of every function
// definition in prog (prototypes have no body and are skipped).
func forEachFunctionBody(prog *ast.Program, f func(*ast.CompoundStmt)) {
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.Function); ok && fn.Body != nil {
			f(fn.Body)
		}
	}
}
