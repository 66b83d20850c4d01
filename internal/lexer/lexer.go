// Package lexer reduces a preprocessed source byte stream to a token
// stream, one token per call to Next. It is pull-based: the parser
// asks for the next token when it needs one, never the reverse.
package lexer

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/token"
)

// Lexer holds the running state of the byte-stream scan. Modeled on
// the teacher's ylex.Lexer: a peekable byte cursor plus line/column
// bookkeeping, except here Next() returns a Token value instead of
// printing a text token record to an output stream.
type Lexer struct {
	src      string
	pos      int
	line     int
	col      int
	filename string
	diag     *diag.Manager

	atEOF bool
}

// New creates a Lexer over src. filename is used only for diagnostic
// messages.
func New(src, filename string, d *diag.Manager) *Lexer {
	return &Lexer{
		src:      src,
		pos:      0,
		line:     1,
		col:      1,
		filename: filename,
		diag:     d,
	}
}

// Checkpoint captures enough lexer state to resume scanning from the
// same point later. It exists so the parser can rewind across a
// declarator it has committed to and discovered was the wrong
// alternative (spec.md §9's function-vs-variable and cast-vs-paren
// ambiguities) — a bounded local backtrack, not a restart across
// files, which spec.md §4.1 still disallows.
type Checkpoint struct {
	pos   int
	line  int
	col   int
	atEOF bool
}

// Checkpoint snapshots the current scan position.
func (l *Lexer) Checkpoint() Checkpoint {
	return Checkpoint{pos: l.pos, line: l.line, col: l.col, atEOF: l.atEOF}
}

// Restore rewinds the scan position to a previously captured
// Checkpoint.
func (l *Lexer) Restore(c Checkpoint) {
	l.pos, l.line, l.col, l.atEOF = c.pos, c.line, c.col, c.atEOF
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isLineStart reports whether the cursor is in column 1 of its line so
// the caller can decide whether a '#' begins a preprocessor line
// marker. A '#' preceded by whitespace on its line is not treated as a
// marker.
func (l *Lexer) isLineStart() bool {
	return l.col == 1
}

// skipTrivia consumes horizontal/vertical whitespace, line comments,
// and line-control markers of the form `# <digits> "<file>" ...`.
// Unlike the teacher's ylex (which also strips block comments), this
// lexer follows spec.md §6: block comments are not part of the
// accepted lexical subset and must be stripped upstream by the
// preprocessor.
func (l *Lexer) skipTrivia() {
	for {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		case ch == '#' && l.isLineStart() && isDigit(l.peekN(1)):
			l.skipLineMarker()
		default:
			return
		}
	}
}

// skipLineMarker discards a preprocessor line-control marker. It is
// only reached when '#' begins a line and is followed by a digit,
// per spec.md §4.1; any other line-initial '#' falls through to the
// unknown-character path in Next.
func (l *Lexer) skipLineMarker() {
	for l.peek() != '\n' && l.peek() != 0 {
		l.advance()
	}
}

// Next returns the next token in the stream. At end of input it
// returns an EOF token indefinitely; it is a total function, never an
// error return, matching spec.md §4.1's contract.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()

	startLine, startCol := l.line, l.col
	pos := token.Position{Line: startLine, Column: startCol}

	if l.atEOF || l.pos >= len(l.src) {
		l.atEOF = true
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	ch := l.peek()
	switch {
	case isDigit(ch):
		return l.scanNumber(pos)
	case isLetter(ch):
		return l.scanIdentifier(pos)
	case ch == '\'':
		return l.scanCharLiteral(pos)
	case ch == '"':
		return l.scanStringLiteral(pos)
	default:
		return l.scanOperator(pos)
	}
}

func (l *Lexer) scanIdentifier(pos token.Position) token.Token {
	start := l.pos
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Lexeme: text, Pos: pos}
	}
	return token.Token{Kind: token.IDENT, Lexeme: text, Pos: pos}
}

// scanNumber reads an integer literal, extending into a float literal
// when a fractional part or exponent follows, per spec.md §4.1.
func (l *Lexer) scanNumber(pos token.Position) token.Token {
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if (l.peek() == 'e' || l.peek() == 'E') &&
		(isDigit(l.peekN(1)) || ((l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2)))) {
		isFloat = true
		l.advance() // consume e/E
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'f' || l.peek() == 'F' {
		isFloat = true
		l.advance()
	}

	text := l.src[start:l.pos]
	if isFloat {
		numText := strings.TrimRight(text, "fF")
		v, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			l.diag.Warnf(pos, "malformed float literal %q", text)
		}
		return token.Token{Kind: token.FLOAT_LIT, Lexeme: text, Pos: pos, Literal: token.Literal{FloatVal: v}}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.diag.Warnf(pos, "malformed integer literal %q", text)
	}
	return token.Token{Kind: token.INT_LIT, Lexeme: text, Pos: pos, Literal: token.Literal{IntVal: v}}
}

// escapeValue maps a recognized escape letter to its byte value. ok is
// false for unrecognized escapes, per spec.md §4.1's "unrecognized
// escape passes the next character through with a warning" rule.
func escapeValue(ch byte) (byte, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '0':
		return 0, true
	}
	return ch, false
}

func (l *Lexer) scanCharLiteral(pos token.Position) token.Token {
	start := l.pos
	l.advance() // opening '

	var val byte
	if l.peek() == '\\' {
		l.advance()
		esc := l.advance()
		v, ok := escapeValue(esc)
		if !ok {
			l.diag.Warnf(pos, "unrecognized escape sequence '\\%c'", esc)
		}
		val = v
	} else if l.peek() != 0 && l.peek() != '\n' {
		val = l.advance()
	}

	if l.peek() == '\'' {
		l.advance()
	} else {
		l.diag.Warnf(pos, "unterminated character literal")
	}

	text := l.src[start:l.pos]
	return token.Token{Kind: token.CHAR_LIT, Lexeme: text, Pos: pos, Literal: token.Literal{CharVal: val}}
}

// scanStringLiteral preserves the opening/closing quotes and escape
// sequences verbatim in the lexeme; unescaping is left to later
// processing, per spec.md §4.1.
func (l *Lexer) scanStringLiteral(pos token.Position) token.Token {
	start := l.pos
	l.advance() // opening quote

	for {
		ch := l.peek()
		if ch == 0 || ch == '\n' {
			l.diag.Warnf(pos, "unterminated string literal")
			break
		}
		if ch == '\\' {
			l.advance()
			if l.peek() != 0 {
				l.advance()
			}
			continue
		}
		if ch == '"' {
			l.advance()
			break
		}
		l.advance()
	}

	text := l.src[start:l.pos]
	return token.Token{Kind: token.STRING_LIT, Lexeme: text, Pos: pos}
}

// scanOperator dispatches punctuation and operators: it tries the
// multi-character spellings longest-first, then falls back to the
// single-character default, matching spec.md §4.1.
func (l *Lexer) scanOperator(pos token.Position) token.Token {
	rest := l.src[l.pos:]
	// token.MultiCharOps is ordered longest-match-first within each
	// starting byte; slices.IndexFunc walks it in that order so the
	// three-character "..." form is tried before the two-character
	// forms that share its leading '.'.
	if i := slices.IndexFunc(token.MultiCharOps, func(op struct {
		Text string
		Kind token.Kind
	}) bool {
		return strings.HasPrefix(rest, op.Text)
	}); i >= 0 {
		op := token.MultiCharOps[i]
		for range op.Text {
			l.advance()
		}
		return token.Token{Kind: op.Kind, Lexeme: op.Text, Pos: pos}
	}

	ch := l.peek()
	if kind, ok := token.SingleCharOps[ch]; ok {
		l.advance()
		return token.Token{Kind: kind, Lexeme: string(ch), Pos: pos}
	}

	l.advance()
	l.diag.Warnf(pos, "unknown character %q", ch)
	return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Pos: pos}
}
