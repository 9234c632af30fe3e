// Snapshot tests for the LLVM-IR text emitter, covering spec.md §8's
// end-to-end scenarios A-E plus a float literal (scenario F is a compile
// error and produces no IR). Grounded on
// CWBudde-go-dws/internal/interp/fixture_test.go's
// snaps.MatchSnapshot(t, name, value) usage — go-snaps is the teacher's
// direct snapshot-testing dependency.
package emitter_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/flipboards/cslc/internal/compiler"
)

func emit(t *testing.T, source string) string {
	t.Helper()
	res := compiler.New(compiler.WithFilename("snapshot.csl")).Compile(source)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	return res.IR
}

func TestEmit_GlobalConstFold(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `int x = 3 + 4 * 2;`))
}

func TestEmit_FunctionCall(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `
def add(a: int, b: int): int { return a + b; }
def main(): int { return add(2, 3); }
`))
}

func TestEmit_ForLoop(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `
def main(): int {
  int s = 0;
  int i = 0;
  for (i = 0; i < 10; i = i + 1) { s = s + i; }
  return s;
}
`))
}

func TestEmit_ArrayInitializer(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `int a[2][3] = { {1,2,3}, {4,5,6} };`))
}

func TestEmit_IfElse(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `
def f(x: int): int {
  if (x > 0) return 1; else return -1;
}
`))
}

func TestEmit_FloatLiteral(t *testing.T) {
	snaps.MatchSnapshot(t, emit(t, `float x = 1.5;`))
}
