// Package translator lowers a parsed CSL AST into the three-address IR
// defined by package ir. It owns the global/function tables, the
// lexical-scope stack, the label-name counter, and the loop-label
// stack consulted by break/continue.
//
// Grounded on the original implementation's translate.py: the Translater
// class's processing order (globals and function signatures registered
// top-down, function bodies lowered into a fresh block with a pushed
// scope), and CWBudde-go-dws/internal/bytecode/compiler_core.go's
// struct-of-maps-plus-stacks shape and errorf-with-position idiom.
package translator

import (
	"fmt"

	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/internal/ir"
	"github.com/flipboards/cslc/pkg/token"
)

// Options toggles the translator's policy flags. The field names and
// reference defaults mirror spec.md §4.4.5's policy-flag table.
type Options struct {
	LazyBool          bool // short-circuit and/or via PHI nodes; off lowers them as plain binary ops
	PointerArithmetic bool
	PointerToVal      bool
	ArrayPointerDecay bool
	ExplicitType      bool // reject void as a declared parameter type; variable declarations are not checked
}

// DefaultOptions returns spec.md §4.4.5's reference policy defaults.
func DefaultOptions() Options {
	return Options{
		PointerArithmetic: true,
		PointerToVal:      false,
		ArrayPointerDecay: false,
		ExplicitType:      true,
		LazyBool:          false,
	}
}

type funcEntry struct {
	sig       ir.FuncSignature
	defined   bool // has a concrete body
	blockIdx  int  // index into prog.Functions, meaningful when defined
}

type loopLabels struct {
	continueLabel *ir.Label
	breakLabel    *ir.Label
}

// Translator holds all state accumulated while lowering one translation
// unit.
type Translator struct {
	opts Options

	source, file string

	prog *ir.Program

	globals map[string]*ir.GlobalDecl
	funcs   map[string]*funcEntry

	fb        *ir.FunctionBlock // current function block, nil at top level
	scopes    []map[string]*ir.Identifier
	loopStack []loopLabels

	labelSeq int

	errs []*errors.CompilerError
}

// New constructs a Translator. source/file are used only for error
// reporting.
func New(source, file string, opts Options) *Translator {
	return &Translator{
		opts:    opts,
		source:  source,
		file:    file,
		prog:    &ir.Program{},
		globals: make(map[string]*ir.GlobalDecl),
		funcs:   make(map[string]*funcEntry),
	}
}

func (t *Translator) errorf(pos token.Position, format string, args ...any) {
	t.errs = append(t.errs, errors.New(errors.CompileErr, pos, fmt.Sprintf(format, args...), t.source, t.file))
}

// Translate lowers a parsed Root node into a Program. Errors accumulated
// during lowering are returned alongside whatever partial program was
// built; the caller should treat a non-empty error slice as failure.
func (t *Translator) Translate(root *ast.Node) (*ir.Program, []*errors.CompilerError) {
	for _, child := range root.Children {
		t.translateTopLevel(child)
	}
	return t.prog, t.errs
}

func (t *Translator) translateTopLevel(node *ast.Node) {
	switch node.Kind {
	case ast.Func:
		t.translateFunction(node)
	case ast.Decl:
		t.translateGlobalDecl(node)
	default:
		t.errorf(node.Pos, "unexpected top-level node %s", node.Kind)
	}
}

// pushScope opens a new lexical scope.
func (t *Translator) pushScope() {
	t.scopes = append(t.scopes, make(map[string]*ir.Identifier))
}

// popScope closes the innermost lexical scope.
func (t *Translator) popScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// declareLocal binds name to id in the innermost scope. Redeclaration in
// the same scope is a compile error.
func (t *Translator) declareLocal(pos token.Position, name string, id *ir.Identifier) {
	scope := t.scopes[len(t.scopes)-1]
	if _, exists := scope[name]; exists {
		t.errorf(pos, "redefinition of variable %q", name)
		return
	}
	scope[name] = id
}

// resolve looks a name up innermost-scope-first, then the global table.
// The original implementation's symbol-table stack search runs
// outermost-first (see the internal/translator ledger entry in
// DESIGN.md); this is a deliberate correction to ordinary lexical
// shadowing.
func (t *Translator) resolve(name string) (*ir.Identifier, ir.Type, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if id, ok := t.scopes[i][name]; ok {
			return id, t.fb.TypeOf(id), true
		}
	}
	if g, ok := t.globals[name]; ok {
		id := &ir.Identifier{Loc: ir.Global, Name: g.Name}
		return id, &ir.Pointer{Elem: g.Type}, true
	}
	return nil, nil, false
}

func (t *Translator) newLabel(name string) *ir.Label {
	t.labelSeq++
	return t.fb.NewLabel(fmt.Sprintf("%s%d", name, t.labelSeq))
}

// irTypeOf converts a declared cslvalue.Type (from a TypeName AST node)
// into an ir.Type.
func irTypeOf(vt cslvalue.Type) ir.Type { return ir.Scalar(vt) }
