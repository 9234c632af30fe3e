// Grounded on CWBudde-go-dws/cmd/dwscript/cmd/compile.go's read-file,
// run-pipeline, report-structured-errors, write-output shape.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/internal/source"
	"github.com/flipboards/cslc/pkg/cslc"
)

var (
	outputFile   string
	emitLLVM     bool
	dumpAST      bool
	dumpASTJSON  bool
	compileColor bool
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Compile a CSL source file to LLVM IR",
	Long: `Compile reads a CSL source file, lexes and parses it, lowers it to
the compiler's internal IR, and emits textual LLVM IR.

Examples:
  # Compile to stdout
  cslc compile program.csl

  # Compile to a file
  cslc compile program.csl -o program.ll

  # Dump the parsed AST instead of compiling
  cslc compile program.csl --dump-ast`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVar(&emitLLVM, "emit-llvm", true, "emit textual LLVM IR")
	compileCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST instead of compiling")
	compileCmd.Flags().BoolVar(&dumpASTJSON, "dump-ast-json", false, "print the parsed AST as JSON instead of compiling")
	compileCmd.Flags().BoolVar(&compileColor, "color", false, "colorize diagnostics")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	text, err := source.ReadFile(filename)
	if err != nil {
		if cerr, ok := err.(*errors.CompilerError); ok {
			fmt.Fprintln(os.Stderr, cerr.Format(compileColor))
			return fmt.Errorf("reading failed")
		}
		return err
	}

	if dumpAST || dumpASTJSON {
		return runDumpAST(filename, text)
	}

	opts, err := loadTranslatorOptions(configFile)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configFile, err)
	}

	engine, _ := cslc.New(cslc.WithFilename(filename), cslc.WithTranslatorOptions(opts))
	result, err := engine.Compile(text)
	if err != nil {
		if cerr, ok := err.(*cslc.CompileError); ok {
			for _, e := range cerr.Errors {
				fmt.Fprintln(os.Stderr, e.Format(compileColor))
			}
			return fmt.Errorf("%s failed with %d error(s)", cerr.Stage, len(cerr.Errors))
		}
		return err
	}

	if !emitLLVM {
		fmt.Printf("%s: no errors\n", filename)
		return nil
	}

	out := outputFile
	if out == "" {
		fmt.Print(result.IR)
		return nil
	}
	if err := os.WriteFile(out, []byte(result.IR), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", out, err)
	}
	fmt.Printf("Compiled %s -> %s\n", filename, out)
	return nil
}

func runDumpAST(filename, text string) error {
	engine, _ := cslc.New(cslc.WithFilename(filename))
	root, err := engine.Parse(text)
	if err != nil {
		cerr, ok := err.(*cslc.CompileError)
		if !ok {
			return err
		}
		for _, e := range cerr.Errors {
			fmt.Fprintln(os.Stderr, e.Format(compileColor))
		}
		if root == nil {
			return fmt.Errorf("%s failed with %d error(s)", cerr.Stage, len(cerr.Errors))
		}
	}

	if dumpASTJSON {
		json, err := astJSON(root)
		if err != nil {
			return fmt.Errorf("failed to render AST as JSON: %w", err)
		}
		fmt.Println(json)
		return nil
	}
	fmt.Print(root.String())
	return nil
}
