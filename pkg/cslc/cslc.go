// Package cslc is the embeddable front door to the CSL compiler: it wraps
// internal/compiler's lex/parse/translate/emit pipeline and internal/source's
// BOM-aware file reading behind a small functional-options facade, so a host
// program never needs to import anything under internal/.
//
// Grounded on CWBudde-go-dws/pkg/dwscript's New(opts...)/Engine shape (its
// test files construct an engine with New(WithTypeCheck(false)) and then
// call engine.Compile/engine.Parse — pkg/dwscript itself carries no non-test
// source, so the facade's exact surface is reconstructed from those calls).
package cslc

import (
	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/compiler"
	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/internal/lexer"
	"github.com/flipboards/cslc/internal/parser"
	"github.com/flipboards/cslc/internal/source"
	"github.com/flipboards/cslc/internal/translator"
)

// Option configures an Engine.
type Option func(*Engine)

// WithFilename sets the name reported in diagnostics. Engines created by
// CompileFile call this automatically with the given path.
func WithFilename(name string) Option {
	return func(e *Engine) { e.filename = name }
}

// WithTranslatorOptions overrides the translator's policy flags (lazy
// boolean evaluation, pointer arithmetic, pointer<->int casts, array-to-
// pointer decay, explicit typing). An Engine built by New starts from
// translator.DefaultOptions().
func WithTranslatorOptions(opts translator.Options) Option {
	return func(e *Engine) { e.translatorOpts = opts }
}

// Engine compiles CSL source text to LLVM IR. An Engine is safe to reuse
// across Compile/Parse calls, but keeps no state between calls.
type Engine struct {
	filename       string
	translatorOpts translator.Options
}

// New constructs an Engine with opts applied over the package defaults.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{translatorOpts: translator.DefaultOptions()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CompileError reports the structured compiler diagnostics from a failed
// Compile or Parse call, grouped by which pipeline stage raised them.
type CompileError struct {
	Stage  string
	Errors []*errors.CompilerError
}

func (e *CompileError) Error() string {
	return errors.FormatErrors(e.Errors, false)
}

func stageOf(errs []*errors.CompilerError) string {
	if len(errs) == 0 {
		return ""
	}
	switch errs[0].Kind {
	case errors.ReadErr:
		return "reading"
	case errors.SynErr:
		return "lexing"
	case errors.ParseErr:
		return "parsing"
	default:
		return "compiling"
	}
}

// Result is the successful outcome of Compile: the rendered LLVM IR text.
type Result struct {
	IR string
}

// Compile lexes, parses, translates and emits source, returning the
// rendered LLVM IR. A non-nil error is always a *CompileError.
func (e *Engine) Compile(src string) (*Result, error) {
	c := compiler.New(
		compiler.WithFilename(e.filename),
		compiler.WithTranslatorOptions(e.translatorOpts),
	)
	res := c.Compile(src)
	if len(res.Errors) > 0 {
		return nil, &CompileError{Stage: stageOf(res.Errors), Errors: res.Errors}
	}
	return &Result{IR: res.IR}, nil
}

// CompileFile reads path with source.ReadFile's BOM-aware decoding and
// compiles its contents, reporting path in diagnostics.
func CompileFile(path string, opts ...Option) (*Result, error) {
	text, err := source.ReadFile(path)
	if err != nil {
		if cerr, ok := err.(*errors.CompilerError); ok {
			return nil, &CompileError{Stage: "reading", Errors: []*errors.CompilerError{cerr}}
		}
		return nil, err
	}
	e, _ := New(append([]Option{WithFilename(path)}, opts...)...)
	return e.Compile(text)
}

// Parse lexes and parses source, returning the raw AST root. It does not
// run the translator, so it succeeds on any grammatically valid program
// regardless of type errors.
func (e *Engine) Parse(src string) (*ast.Node, error) {
	lex := lexer.New(src, e.filename)
	p := parser.New(lex, src, e.filename)
	root := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return root, &CompileError{Stage: stageOf(errs), Errors: errs}
	}
	return root, nil
}
