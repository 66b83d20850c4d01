// Command ccc is the CLI front end for the compiler core: it opens
// the input file, drives the lexer/parser/optimizer/emitter pipeline,
// and prints accumulated diagnostics before exiting (spec.md §6). The
// pipeline itself lives in the internal packages; this file is
// intentionally thin, matching the teacher's own main.go files
// (asm/main.go, lang/yasm/main.go) which do nothing but flag parsing,
// one call into the package that does the real work, and an exit code.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/emitter"
	"github.com/gmofishsauce/ccc/internal/lexer"
	"github.com/gmofishsauce/ccc/internal/optimizer"
	"github.com/gmofishsauce/ccc/internal/parser"
	"github.com/gmofishsauce/ccc/internal/token"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one compile and returns the process exit code, kept
// separate from main so it can be exercised without os.Exit (mirrors
// the teacher's asm/assemble and yasm/assemble entry points, each a
// plain function returning an error for main to translate).
func run(args []string) int {
	flagSet := flag.NewFlagSet("ccc", flag.ContinueOnError)

	o0 := flagSet.Bool("O0", false, "disable all optimizer passes")
	o1 := flagSet.Bool("O1", false, "enable constant propagation, folding, and algebraic simplification (default)")
	o2 := flagSet.Bool("O2", false, "enable all optimizer passes, including dead-code elimination")
	output := flagSet.String("o", "-", "output file ('-' for stdout)")
	emitTokens := flagSet.Bool("emit-tokens", false, "dump the token stream to stderr before compiling")
	emitAST := flagSet.Bool("emit-ast", false, "dump the parsed AST to stderr before optimizing")

	if err := flagSet.Parse(args); err != nil {
		return 1
	}
	if flagSet.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "ccc: missing input file")
		fmt.Fprintln(os.Stderr, "usage: ccc [options] <input> -o <output>")
		return 1
	}
	inputPath := flagSet.Arg(0)

	level, err := resolveLevel(*o0, *o1, *o2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ccc: %v\n", err)
		return 1
	}

	src, err := readSource(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ccc: %v\n", errors.Cause(err))
		return 1
	}

	out, closeOut, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ccc: %v\n", errors.Cause(err))
		return 1
	}
	defer closeOut()

	d := diag.NewManager(nil)

	if *emitTokens {
		dumpTokens(os.Stderr, src, inputPath)
	}

	prog, global, ok := parser.Parse(src, inputPath, d)
	if !ok || prog == nil {
		d.Print(os.Stderr, isTerminal(os.Stderr))
		return 1
	}

	if *emitAST {
		fmt.Fprint(os.Stderr, ast.Dump(prog))
	}

	optimizer.Run(prog, level, d)

	emitOK := emitter.Emit(out, prog, global, inputPath, d)

	d.Print(os.Stderr, isTerminal(os.Stderr))
	if !emitOK || d.HasErrors() {
		return 1
	}
	return 0
}

// resolveLevel maps the mutually exclusive -O0/-O1/-O2 flags to an
// optimizer.Level, defaulting to O1 per spec.md §6 ("default 1").
func resolveLevel(o0, o1, o2 bool) (optimizer.Level, error) {
	set := 0
	level := optimizer.O1
	if o0 {
		set++
		level = optimizer.O0
	}
	if o1 {
		set++
		level = optimizer.O1
	}
	if o2 {
		set++
		level = optimizer.O2
	}
	if set > 1 {
		return optimizer.O1, fmt.Errorf("only one of -O0, -O1, -O2 may be given")
	}
	return level, nil
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", diag.WrapIO(err, "reading input file")
	}
	return string(b), nil
}

// openOutput resolves the -o target. "-" (and the empty string, the
// teacher's ygen/yparse default) mean stdout; anything else is opened
// for writing, matching SPEC_FULL.md §C's supplemented -o handling.
func openOutput(path string) (out *os.File, closeFn func(), err error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, diag.WrapIO(err, "creating output file")
	}
	return f, func() { f.Close() }, nil
}

// dumpTokens re-lexes src independently of the parser's own lexer, so
// the --emit-tokens dump reflects exactly what the lexer produces
// without disturbing the parser's lookahead state.
func dumpTokens(w *os.File, src, filename string) {
	lx := lexer.New(src, filename, diag.NewManager(nil))
	for {
		tok := lx.Next()
		fmt.Fprintln(w, tok.String())
		if tok.Kind == token.EOF {
			break
		}
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
