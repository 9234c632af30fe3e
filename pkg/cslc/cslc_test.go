// Grounded on CWBudde-go-dws/pkg/dwscript's parse_test.go and
// compile_error_test.go: New(...) an engine, then exercise
// Compile/Parse and inspect the structured *CompileError.
package cslc

import (
	"os"
	"strings"
	"testing"

	"github.com/flipboards/cslc/internal/translator"
)

func TestEngine_CompileValidCode(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.Compile(`int x = 3 + 4 * 2;`)
	if err != nil {
		t.Fatalf("Compile() returned unexpected error: %v", err)
	}
	if !strings.Contains(result.IR, "@x") {
		t.Errorf("expected IR to declare @x, got:\n%s", result.IR)
	}
}

func TestEngine_CompileParseError(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	_, err = engine.Compile(`int x = ;`)
	if err == nil {
		t.Fatal("expected a compile error, got nil")
	}

	cerr, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if cerr.Stage != "parsing" {
		t.Errorf("expected stage %q, got %q", "parsing", cerr.Stage)
	}
	if len(cerr.Errors) == 0 {
		t.Fatal("expected structured errors, got none")
	}
}

func TestEngine_CompileTranslateError(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	_, err = engine.Compile(`def bad() { break; }`)
	if err == nil {
		t.Fatal("expected a compile error, got nil")
	}
	cerr, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if cerr.Stage != "compiling" {
		t.Errorf("expected stage %q, got %q", "compiling", cerr.Stage)
	}
}

func TestEngine_Parse(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	root, err := engine.Parse(`int x = 1;`)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if root == nil || len(root.Children) == 0 {
		t.Fatal("Parse() returned an empty AST for valid code")
	}
}

func TestEngine_ParseDoesNotTypeCheck(t *testing.T) {
	// Parse stops before translation, so an undeclared identifier (a
	// CompileError, not a ParseError) must not surface here.
	engine, err := New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	_, err = engine.Parse(`def f(): int { return undeclared; }`)
	if err != nil {
		t.Errorf("Parse() should not run translation, got error: %v", err)
	}
}

func TestWithTranslatorOptions(t *testing.T) {
	opts := translator.DefaultOptions()
	opts.LazyBool = true
	engine, err := New(WithTranslatorOptions(opts))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	result, err := engine.Compile(`
def f(a: int, b: int): bool {
  return a > 0 and b > 0;
}
`)
	if err != nil {
		t.Fatalf("expected lazy-boolean compilation to succeed, got: %v", err)
	}
	if !strings.Contains(result.IR, "phi") {
		t.Errorf("expected LazyBool to lower and/or through a phi node, got:\n%s", result.IR)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/prog.csl"
	if err := os.WriteFile(path, []byte(`int x = 1;`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	result, err := CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile() returned unexpected error: %v", err)
	}
	if !strings.Contains(result.IR, "@x") {
		t.Errorf("expected IR to declare @x, got:\n%s", result.IR)
	}
}

func TestCompileFile_MissingFile(t *testing.T) {
	_, err := CompileFile("/nonexistent/path/does-not-exist.csl")
	if err == nil {
		t.Fatal("expected an error for a missing file, got nil")
	}
	cerr, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if cerr.Stage != "reading" {
		t.Errorf("expected stage %q, got %q", "reading", cerr.Stage)
	}
}
