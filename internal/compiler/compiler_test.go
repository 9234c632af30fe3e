// Grounded on the teacher's table-driven *_test.go idiom throughout
// (e.g. internal/lexer/lexer_strings_test.go's t.Run-per-case style) and
// spec.md §8's scenarios A-F, which this file exercises end to end
// through the full lex -> parse -> translate -> emit pipeline.
package compiler

import (
	"regexp"
	"strings"
	"testing"
)

func compileOK(t *testing.T, source string) string {
	t.Helper()
	res := New(WithFilename("test.csl")).Compile(source)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	return res.IR
}

// Scenario A: a constant-folded global initializer.
func TestCompile_GlobalConstFold(t *testing.T) {
	ir := compileOK(t, `int x = 3 + 4 * 2;`)
	if !strings.Contains(ir, "@x") || !strings.Contains(ir, "11") {
		t.Errorf("expected a folded global @x = ... 11, got:\n%s", ir)
	}
}

// Scenario B: two functions, a call, argument-slot allocas.
func TestCompile_FunctionCall(t *testing.T) {
	ir := compileOK(t, `
def add(a: int, b: int): int { return a + b; }
def main(): int { return add(2, 3); }
`)
	if !strings.Contains(ir, "define i32 @add(i32, i32)") {
		t.Errorf("expected add's define line, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @add(i32 2, i32 3)") {
		t.Errorf("expected the call-site rendering, got:\n%s", ir)
	}
	if strings.Contains(ir, "declare") {
		t.Errorf("a fully defined function must not also get a declare line, got:\n%s", ir)
	}
}

// A function only forward-declared (never given a body) keeps its
// declare line; one that goes on to be defined loses it.
func TestCompile_ForwardDeclarationEmitsDeclareOnlyWhenUndefined(t *testing.T) {
	ir := compileOK(t, `
def unused(x: int): int;
def add(a: int, b: int): int;
def add(a: int, b: int): int { return a + b; }
def main(): int { return add(2, 3); }
`)
	if !strings.Contains(ir, "declare i32 @unused(i32)") {
		t.Errorf("expected a declare line for the never-defined function, got:\n%s", ir)
	}
	if strings.Contains(ir, "declare i32 @add(i32, i32)") {
		t.Errorf("add is defined; its forward declaration must not also emit a declare line, got:\n%s", ir)
	}
	if strings.Count(ir, "define i32 @add(i32, i32)") != 1 {
		t.Errorf("expected exactly one define for add, got:\n%s", ir)
	}
}

// Scenario C: a for loop emits its four labels exactly once each. Label
// names carry the translator's numeric suffix (e.g. "for.cond2:").
func TestCompile_ForLoopLabels(t *testing.T) {
	ir := compileOK(t, `
def main(): int {
  int s = 0;
  int i = 0;
  for (i = 0; i < 10; i = i + 1) { s = s + i; }
  return s;
}
`)
	for _, label := range []string{"for.cond", "for.body", "for.step", "for.end"} {
		if n := len(regexp.MustCompile(`(?m)^`+regexp.QuoteMeta(label)+`\d+:`).FindAllString(ir, -1)); n != 1 {
			t.Errorf("expected exactly one %s: label, got:\n%s", label, ir)
		}
	}
}

// Scenario D: a 2D array initializer, both as a global and as a local.
func TestCompile_ArrayInitializer(t *testing.T) {
	ir := compileOK(t, `int a[2][3] = { {1,2,3}, {4,5,6} };`)
	if !strings.Contains(ir, "[2 x [3 x i32]]") {
		t.Errorf("expected a [2 x [3 x i32]] global type, got:\n%s", ir)
	}
	for _, want := range []string{"1", "2", "3", "4", "5", "6"} {
		if !strings.Contains(ir, want) {
			t.Errorf("expected constant %s in array literal, got:\n%s", want, ir)
		}
	}

	ir = compileOK(t, `
def main(): int {
  int a[2][3] = { {1,2,3}, {4,5,6} };
  return 0;
}
`)
	if !strings.Contains(ir, "alloca [2 x [3 x i32]]") {
		t.Errorf("expected one alloca [2 x [3 x i32]], got:\n%s", ir)
	}
	if n := strings.Count(ir, "getelementptr"); n != 6 {
		t.Errorf("expected 6 getelementptr instructions, got %d in:\n%s", n, ir)
	}
}

// Scenario E: if/else lowers to one conditional branch, two labels, two rets.
func TestCompile_IfElse(t *testing.T) {
	ir := compileOK(t, `
def f(x: int): int {
  if (x > 0) return 1; else return -1;
}
`)
	if strings.Count(ir, "br i1") != 1 {
		t.Errorf("expected exactly one conditional br, got:\n%s", ir)
	}
	if strings.Count(ir, "ret i32") != 2 {
		t.Errorf("expected two ret i32 instructions, got:\n%s", ir)
	}
}

// Scenario F: break outside a loop is a CompileError.
func TestCompile_BreakOutsideLoop(t *testing.T) {
	res := New(WithFilename("test.csl")).Compile(`def bad() { break; }`)
	if len(res.Errors) == 0 {
		t.Fatal("expected a CompileError for break outside a loop, got none")
	}
}

func TestCompile_LocalArraySubscript(t *testing.T) {
	ir := compileOK(t, `
def at(i: int): int {
  int a[4] = {10, 20, 30, 40};
  return a[i];
}
`)
	if !strings.Contains(ir, "getelementptr") {
		t.Errorf("expected array subscript to lower to getelementptr, got:\n%s", ir)
	}
}

func TestCompile_FloatLiteralHexEncoding(t *testing.T) {
	ir := compileOK(t, `float x = 1.5;`)
	if !strings.Contains(ir, "0x3FF8000000000000") {
		t.Errorf("expected the big-endian IEEE-754 hex encoding of 1.5, got:\n%s", ir)
	}
}

func TestCompile_RedefinedGlobalIsError(t *testing.T) {
	res := New().Compile(`
int x = 1;
int x = 2;
`)
	if len(res.Errors) == 0 {
		t.Fatal("expected a redefinition CompileError, got none")
	}
}

func TestCompile_ParseErrorStopsBeforeTranslation(t *testing.T) {
	res := New().Compile(`def broken(: int { return 0; }`)
	if len(res.Errors) == 0 {
		t.Fatal("expected a parse error, got none")
	}
	if res.IR != "" {
		t.Errorf("expected no IR on parse failure, got:\n%s", res.IR)
	}
}
