// Package compiler threads one CSL translation unit through the full
// pipeline: lex -> parse -> translate -> emit.
//
// Grounded on CWBudde-go-dws/internal/bytecode/compiler.go's
// NewCompiler(chunkName)/Compile(program) entry-point shape, and on
// internal/lexer's WithXxx LexerOption idiom for Compilation's own
// functional options.
package compiler

import (
	"strings"

	"github.com/flipboards/cslc/internal/emitter"
	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/internal/lexer"
	"github.com/flipboards/cslc/internal/parser"
	"github.com/flipboards/cslc/internal/translator"
)

// Option configures a Compilation.
type Option func(*Compilation)

// WithFilename sets the name used in error messages; it never affects
// reading (the source text is always passed directly to Compile).
func WithFilename(name string) Option {
	return func(c *Compilation) { c.file = name }
}

// WithTranslatorOptions overrides the translator's policy flags; a
// Compilation built by New starts from translator.DefaultOptions().
func WithTranslatorOptions(opts translator.Options) Option {
	return func(c *Compilation) { c.translatorOpts = opts }
}

// Compilation holds the configuration for one or more Compile calls.
type Compilation struct {
	file           string
	translatorOpts translator.Options
}

// New constructs a Compilation with opts applied over the defaults.
func New(opts ...Option) *Compilation {
	c := &Compilation{translatorOpts: translator.DefaultOptions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is everything Compile produces: the rendered LLVM IR text (when
// every stage succeeds) and any errors accumulated along the way.
type Result struct {
	IR     string
	Errors []*errors.CompilerError
}

// Compile runs source through the full pipeline. It stops at the first
// stage that reports errors — lexing and parsing share one error slice
// (via Parser.Errors), so a read/syntax/grammar problem short-circuits
// before translation ever runs, matching spec.md §7's stage-ordered
// error taxonomy.
func (c *Compilation) Compile(source string) *Result {
	lex := lexer.New(source, c.file)
	p := parser.New(lex, source, c.file)
	root := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		return &Result{Errors: errs}
	}

	tr := translator.New(source, c.file, c.translatorOpts)
	prog, errs := tr.Translate(root)
	if len(errs) > 0 {
		return &Result{Errors: errs}
	}

	var sb strings.Builder
	if err := emitter.Emit(&sb, prog); err != nil {
		return &Result{Errors: []*errors.CompilerError{
			errors.New(errors.CompileErr, root.Pos, err.Error(), source, c.file),
		}}
	}
	return &Result{IR: sb.String()}
}
