// Package emitter walks an optimized AST read-only and writes textual
// LLVM IR, allocating SSA temporaries, block labels, and a lexical
// symbol table for name resolution (spec.md §4.4).
//
// Grounded in the teacher's ygen.Emitter: a buffered-writer-holding
// struct with a monotonic counter and small instruction-emission
// helper methods, retargeted from WUT-4 assembly mnemonics to LLVM IR
// text.
package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/symtab"
	"github.com/gmofishsauce/ccc/internal/token"
)

// loopLabels names the targets a break/continue inside a loop or
// switch resolves to (spec.md §4.4's "State" list).
type loopLabels struct {
	continueLabel string // "" inside a switch: continue skips past it
	breakLabel    string
}

// Emitter holds the running state of IR generation: the output
// stream, temporary/label/string counters, the lexical scope chain
// built by the parser, and the enclosing loop/switch target stack.
type Emitter struct {
	out    *bufio.Writer
	diag   *diag.Manager
	global *symtab.Scope
	scope  *symtab.Scope

	tempCount  int
	labelCount int
	strCount   int

	retType string
	loops   []loopLabels

	// termed reports whether the current basic block already ends in a
	// terminator (ret/br). LLVM allows exactly one terminator per block;
	// every place that would otherwise emit a second one (a structured
	// control-flow construct's trailing fallthrough branch, the
	// function's trailing safety ret) checks this first.
	termed bool

	failed bool
}

// New creates an Emitter writing to w, resolving names against
// global (the file-scope symbol table the parser built).
func New(w io.Writer, global *symtab.Scope, d *diag.Manager) *Emitter {
	return &Emitter{
		out:    bufio.NewWriter(w),
		diag:   d,
		global: global,
		scope:  global,
	}
}

func (e *Emitter) newTemp() string {
	t := fmt.Sprintf("%%t%d", e.tempCount)
	e.tempCount++
	return t
}

// newLabel allocates "<prefix><n>", structurally collision-free
// because n only ever increases (spec.md §4.4's "Label allocation").
func (e *Emitter) newLabel(prefix string) string {
	l := fmt.Sprintf("%s%d", prefix, e.labelCount)
	e.labelCount++
	return l
}

func (e *Emitter) emitf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

// label starts a new basic block, which begins unterminated regardless
// of how the block that preceded it ended.
func (e *Emitter) label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
	e.termed = false
}

// branchIfFallthrough emits an unconditional branch to target unless
// the current block already ended in a terminator (a return, break, or
// continue inside the construct that just closed) — otherwise the
// emitted branch would be a second terminator in the same block, which
// is not valid LLVM IR.
func (e *Emitter) branchIfFallthrough(target string) {
	if e.termed {
		return
	}
	e.emitf("  br label %%%s\n", target)
	e.termed = true
}

// fatal reports an emission-time failure through the diagnostic
// manager and marks the run as failed; the emitter does not recover
// from these (spec.md §4.4, §7).
func (e *Emitter) fatal(pos token.Position, format string, args ...interface{}) {
	e.diag.Errorf(pos, format, args...)
	e.failed = true
}

// Emit runs the whole module: preamble, then one function definition
// per Function declaration with a body. Returns false if any fatal
// emission error was reported.
func Emit(w io.Writer, prog *ast.Program, global *symtab.Scope, sourceFile string, d *diag.Manager) bool {
	e := New(w, global, d)
	e.emitPreamble(sourceFile)
	sawGlobal := false
	for _, decl := range prog.Decls {
		if vd, ok := decl.(*ast.VarDecl); ok {
			e.emitGlobalVarDecl(vd)
			sawGlobal = true
		}
	}
	if sawGlobal {
		e.emitf("\n")
	}
	for _, decl := range prog.Decls {
		fn, ok := decl.(*ast.Function)
		if !ok || fn.Body == nil {
			continue
		}
		e.emitFunction(fn)
	}
	e.out.Flush()
	return !e.failed
}

// emitGlobalVarDecl emits a module-scope "@name = global ..." line for
// a top-level VarDecl (spec.md §3's "global variables" data-model
// item). An extern declaration has no storage here and is skipped; a
// real global without an initializer zero-fills, matching C's static
// storage duration default.
func (e *Emitter) emitGlobalVarDecl(n *ast.VarDecl) {
	if n.IsExtern {
		return
	}
	if n.ArraySize != nil {
		lit, ok := n.ArraySize.(*ast.IntLit)
		if !ok {
			e.fatal(n.Pos(), "array size for '%s' is not a compile-time constant", n.Name)
			return
		}
		length := int(lit.Value)
		if sym := e.global.LookupLocal(n.Name); sym != nil {
			sym.ArrayLen = length
		}
		e.emitf("@%s = global [%d x i32] zeroinitializer\n", n.Name, length)
		return
	}
	initVal := int64(0)
	if n.Init != nil {
		lit, ok := n.Init.(*ast.IntLit)
		if !ok {
			e.fatal(n.Pos(), "initializer for global '%s' is not a compile-time constant", n.Name)
			return
		}
		initVal = lit.Value
	}
	e.emitf("@%s = global i32 %d\n", n.Name, initVal)
}

// emitPreamble writes the four-line module header spec.md §4.4 and §6
// pin: module id, source filename, data layout, target triple.
func (e *Emitter) emitPreamble(sourceFile string) {
	moduleID := sourceFile
	if moduleID == "" {
		moduleID = "module"
	}
	e.emitf("; ModuleID = '%s'\n", moduleID)
	e.emitf("source_filename = \"%s\"\n", sourceFile)
	e.emitf("target datalayout = \"e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128\"\n")
	e.emitf("target triple = \"x86_64-unknown-linux-gnu\"\n\n")
}

// emitFunction emits one function definition: a stack slot per
// parameter, the body, and a trailing safety `ret i32 0` (spec.md
// §4.4). The temporary counter resets per function; the label counter
// does not need to (labels are already function-unique by
// construction), but resetting it keeps generated IR readable and
// matches the teacher's per-function label numbering in ygen.
func (e *Emitter) emitFunction(fn *ast.Function) {
	e.tempCount = 0
	e.labelCount = 0
	e.retType = fn.ReturnType
	e.loops = nil
	e.termed = false

	funcScope := e.global.Enter()
	e.scope = funcScope

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("i32 %%%s.param", p.Name)
	}
	variadicSuffix := ""
	if fn.Variadic {
		variadicSuffix = ", ..."
	}
	e.emitf("define i32 @%s(%s%s) {\nentry:\n", fn.Name, strings.Join(params, ", "), variadicSuffix)

	for _, p := range fn.Params {
		funcScope.Insert(&symtab.Symbol{Name: p.Name, Kind: symtab.Variable, Type: p.Type, IsParam: true})
		e.emitf("  %%%s = alloca i32\n", p.Name)
		e.emitf("  store i32 %%%s.param, i32* %%%s\n", p.Name, p.Name)
	}

	e.emitStmt(fn.Body)

	// Only append the safety return on fallthrough; a body that already
	// returned/branched on every path must not get a second terminator.
	if !e.termed {
		e.emitf("  ret i32 0\n")
	}
	e.emitf("}\n\n")

	e.scope = e.global
}
