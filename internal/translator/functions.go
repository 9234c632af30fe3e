package translator

import (
	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/ir"
)

// translateFunction lowers one `def` node (spec.md §4.4.1). head's
// children are laid out by the parser as [name, returnType, param1, ...].
func (t *Translator) translateFunction(node *ast.Node) {
	head := node.Children[0]
	nameNode := head.Children[0]
	retTypeNode := head.Children[1]
	paramNodes := head.Children[2:]

	name := nameNode.Ident
	retVal := retTypeNode.ValType
	retType := irTypeOf(retVal)

	argTypes := make([]ir.Type, len(paramNodes))
	for i, p := range paramNodes {
		paramType := p.Children[0].ValType
		if t.opts.ExplicitType && paramType == cslvalue.Void {
			t.errorf(p.Pos, "parameter %q must have an explicit type", p.Ident)
		}
		argTypes[i] = irTypeOf(paramType)
	}

	sig := ir.FuncSignature{Name: name, ArgTypes: argTypes, RetType: retType}

	entry, exists := t.funcs[name]
	hasBody := len(node.Children) > 1

	if exists && entry.defined && hasBody {
		t.errorf(node.Pos, "function %q already defined", name)
		return
	}
	if !exists {
		entry = &funcEntry{sig: sig}
		t.funcs[name] = entry
		if !hasBody {
			t.prog.Declarations = append(t.prog.Declarations, &entry.sig)
		}
	}

	if !hasBody {
		return // forward declaration only
	}

	if exists && !entry.defined {
		// a prior forward declaration is about to get a body: it no longer
		// belongs in the declare-only list.
		t.prog.Declarations = removeSignature(t.prog.Declarations, &entry.sig)
	}

	fb := ir.NewFunctionBlock(sig)
	t.fb = fb
	t.pushScope()

	for i, p := range paramNodes {
		argType := argTypes[i]
		argReg := fb.NewRegister(argType)
		slot := fb.NewRegister(&ir.Pointer{Elem: argType})
		fb.Emit(ir.Instruction{Op: ir.ALLOC, Ret: slot, CastTo: argType})
		fb.Emit(ir.Instruction{Op: ir.STORE, A: slot, B: argReg})
		t.declareLocal(p.Pos, p.Ident, slot)
	}

	entryLabel := t.newLabel("entry")
	fb.PlaceLabel(entryLabel)

	body := node.Children[1]
	t.translateBlock(body)

	if len(fb.Code) == 0 || fb.Code[len(fb.Code)-1].Op != ir.RET {
		if retVal == cslvalue.Void {
			fb.Emit(ir.Instruction{Op: ir.RET})
		} else {
			t.errorf(node.Pos, "function %q does not return a value on every path", name)
		}
	}

	t.popScope()
	if len(t.loopStack) != 0 {
		t.errorf(node.Pos, "internal error: loop-label stack not empty at function exit")
		t.loopStack = nil
	}
	t.fb = nil

	entry.defined = true
	entry.blockIdx = len(t.prog.Functions)
	entry.sig = sig
	t.prog.Functions = append(t.prog.Functions, fb)
}

// lookupFunc resolves a callee by name against the function table (first-
// match-by-name; spec.md §4.4.3 "single overload lookup by name").
func (t *Translator) lookupFunc(name string) (*funcEntry, bool) {
	e, ok := t.funcs[name]
	return e, ok
}

// removeSignature drops sig from decls by pointer identity, preserving
// order of what remains.
func removeSignature(decls []*ir.FuncSignature, sig *ir.FuncSignature) []*ir.FuncSignature {
	out := decls[:0]
	for _, d := range decls {
		if d != sig {
			out = append(out, d)
		}
	}
	return out
}
