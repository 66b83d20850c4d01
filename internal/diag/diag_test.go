package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gmofishsauce/ccc/internal/token"
)

func TestHasErrorsOnlyCountsErrorSeverity(t *testing.T) {
	m := NewManager(nil)
	pos := token.Position{Line: 1, Column: 1}
	m.Warnf(pos, "just a warning")
	m.Notef(pos, "just a note")
	if m.HasErrors() {
		t.Fatal("HasErrors() = true after only warnings/notes, want false")
	}
	m.Errorf(pos, "an actual error")
	if !m.HasErrors() {
		t.Fatal("HasErrors() = false after an Errorf, want true")
	}
}

func TestPrintIncludesPositionSeverityAndHint(t *testing.T) {
	m := NewManager(nil)
	pos := token.Position{Line: 5, Column: 2}
	m.ErrorfHint(pos, "insert a semicolon", "expected ';', found '}'")

	var buf bytes.Buffer
	m.Print(&buf, false)
	out := buf.String()

	for _, want := range []string{"5:2", "error", "expected ';'", "insert a semicolon"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() output missing %q; got:\n%s", want, out)
		}
	}
}

func TestPrintNoColorOmitsEscapeCodes(t *testing.T) {
	m := NewManager(nil)
	m.Errorf(token.Position{}, "boom")
	var buf bytes.Buffer
	m.Print(&buf, false)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Print(colorOut=false) emitted an ANSI escape code:\n%q", buf.String())
	}
}

func TestPrintColorIncludesEscapeCodes(t *testing.T) {
	m := NewManager(nil)
	m.Errorf(token.Position{}, "boom")
	var buf bytes.Buffer
	m.Print(&buf, true)
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Print(colorOut=true) did not emit any ANSI escape code:\n%q", buf.String())
	}
}

func TestPrintReportsTotalCount(t *testing.T) {
	m := NewManager(nil)
	m.Errorf(token.Position{}, "e1")
	m.Errorf(token.Position{}, "e2")
	m.Warnf(token.Position{}, "w1")
	var buf bytes.Buffer
	m.Print(&buf, false)
	if !strings.Contains(buf.String(), "2 error(s), 1 warning(s)") {
		t.Errorf("Print() count line wrong; got:\n%s", buf.String())
	}
}

func TestWrapIOPreservesCauseAndNilIsNil(t *testing.T) {
	if WrapIO(nil, "op") != nil {
		t.Error("WrapIO(nil, ...) != nil")
	}
	cause := &testError{"underlying failure"}
	wrapped := WrapIO(cause, "reading input file")
	if got := Cause(wrapped); got != cause {
		t.Errorf("Cause(WrapIO(err, ...)) = %v, want the original error", got)
	}
	if !strings.Contains(wrapped.Error(), "reading input file") {
		t.Errorf("wrapped.Error() = %q, want it to mention the operation", wrapped.Error())
	}
}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
