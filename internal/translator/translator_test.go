package translator

import (
	"testing"

	"github.com/flipboards/cslc/internal/lexer"
	"github.com/flipboards/cslc/internal/parser"
)

func translate(t *testing.T, src string, opts Options) []string {
	t.Helper()
	l := lexer.New(src, "test.csl")
	p := parser.New(l, src, "test.csl")
	root := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	tr := New(src, "test.csl", opts)
	_, errs := tr.Translate(root)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return msgs
}

func translateOK(t *testing.T, src string, opts Options) {
	t.Helper()
	if errs := translate(t, src, opts); len(errs) != 0 {
		t.Fatalf("unexpected translate errors: %v", errs)
	}
}

func TestArraySizeLimitExceeded(t *testing.T) {
	errs := translate(t, `int big[20000];`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected an array-size-limit CompileError")
	}
}

func TestArraySizeAtLimitIsOK(t *testing.T) {
	translateOK(t, `int ok[16384];`, DefaultOptions())
}

func TestExplicitTypeRejectsUntypedParameter(t *testing.T) {
	errs := translate(t, `def f(a): int { return 0; }`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected an explicit-type CompileError for an untyped parameter")
	}
}

func TestExplicitTypeOffAllowsUntypedParameter(t *testing.T) {
	opts := DefaultOptions()
	opts.ExplicitType = false
	translateOK(t, `def f(a): int { return 0; }`, opts)
}

func TestPointerArithmeticGatesScalarSubscript(t *testing.T) {
	opts := DefaultOptions()
	opts.PointerArithmetic = false
	errs := translate(t, `
def f(): int {
  int x = 1;
  return x[0];
}
`, opts)
	if len(errs) == 0 {
		t.Fatal("expected a pointer-arithmetic-disabled CompileError")
	}
}

func TestPointerArithmeticDefaultAllowsScalarSubscript(t *testing.T) {
	translateOK(t, `
def f(): int {
  int x = 1;
  return x[0];
}
`, DefaultOptions())
}

func TestMemberAccessUnsupported(t *testing.T) {
	errs := translate(t, `
def f(): int {
  int x = 1;
  return x.y;
}
`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected a member-access-unsupported CompileError")
	}
}

func TestLvalueRequiredForIncrement(t *testing.T) {
	errs := translate(t, `
def f(): int {
  1++;
  return 0;
}
`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected an lvalue-required CompileError for '1++'")
	}
}

func TestRedefinitionInSameScope(t *testing.T) {
	errs := translate(t, `
def f(): int {
  int x = 1;
  int x = 2;
  return x;
}
`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected a redefinition CompileError")
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	translateOK(t, `
def f(): int {
  int x = 1;
  {
    int x = 2;
    x = x + 1;
  }
  return x;
}
`, DefaultOptions())
}

func TestMissingReturnOnNonVoidFunctionIsError(t *testing.T) {
	errs := translate(t, `def f(): int { int x = 1; }`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected a missing-return CompileError")
	}
}

func TestVoidFunctionMayOmitReturn(t *testing.T) {
	translateOK(t, `def f() { int x = 1; }`, DefaultOptions())
}

func TestCallArgumentCountMismatch(t *testing.T) {
	errs := translate(t, `
def add(a: int, b: int): int { return a + b; }
def main(): int { return add(1); }
`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected an argument-count CompileError")
	}
}

func TestUndefinedSymbolIsError(t *testing.T) {
	errs := translate(t, `def f(): int { return y; }`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected an undefined-symbol CompileError")
	}
}

func TestPowOperatorRejectedByBackend(t *testing.T) {
	errs := translate(t, `def f(): int { return 2 ^ 3; }`, DefaultOptions())
	if len(errs) == 0 {
		t.Fatal("expected '^' to be rejected by the LLVM-IR backend")
	}
}
