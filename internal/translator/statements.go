package translator

import (
	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/ir"
)

// translateBlock lowers a Block node: push a scope, lower every child
// (declarations and statements interleaved), pop (spec.md §4.4.2).
func (t *Translator) translateBlock(node *ast.Node) {
	t.pushScope()
	for _, child := range node.Children {
		t.translateBlockItem(child)
	}
	t.popScope()
}

func (t *Translator) translateBlockItem(node *ast.Node) {
	if node.Kind == ast.Decl {
		t.translateLocalDecl(node)
		return
	}
	t.translateStmt(node)
}

func (t *Translator) translateStmt(node *ast.Node) {
	switch node.Kind {
	case ast.Block:
		t.translateBlock(node)
	case ast.Ctrl:
		t.translateCtrl(node)
	default:
		// bare expression statement
		t.translateExpr(node, RHS)
	}
}

func (t *Translator) translateCtrl(node *ast.Node) {
	switch node.Ctrl {
	case ast.CtrlIf:
		t.translateIf(node)
	case ast.CtrlWhile:
		t.translateWhile(node)
	case ast.CtrlFor:
		t.translateFor(node)
	case ast.CtrlBreak:
		t.translateBreak(node)
	case ast.CtrlContinue:
		t.translateContinue(node)
	case ast.CtrlReturn:
		t.translateReturn(node)
	default:
		t.errorf(node.Pos, "unhandled control statement")
	}
}

// translateIf lowers `if(cond) then [else]` per spec.md §4.4.2.
func (t *Translator) translateIf(node *ast.Node) {
	cond, _ := t.translateExpr(node.Children[0], RHS)
	thenNode := node.Children[1]
	var elseNode *ast.Node
	if len(node.Children) > 2 {
		elseNode = node.Children[2]
	}

	tLabel := t.newLabel("if.then")
	fLabel := t.newLabel("if.else")
	endLabel := fLabel
	if elseNode != nil {
		endLabel = t.newLabel("if.end")
	}

	t.fb.Emit(ir.Instruction{Op: ir.BR, Cond: cond, Targets: []*ir.Label{tLabel, fLabel}})
	t.fb.PlaceLabel(tLabel)
	t.translateStmt(thenNode)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{endLabel}})
	t.fb.PlaceLabel(fLabel)
	if elseNode != nil {
		t.translateStmt(elseNode)
		t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{endLabel}})
		t.fb.PlaceLabel(endLabel)
	}
}

// translateWhile lowers `while(cond) body` per spec.md §4.4.2.
func (t *Translator) translateWhile(node *ast.Node) {
	begin := t.newLabel("while.cond")
	loop := t.newLabel("while.body")
	end := t.newLabel("while.end")

	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{begin}})
	t.fb.PlaceLabel(begin)
	cond, _ := t.translateExpr(node.Children[0], RHS)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Cond: cond, Targets: []*ir.Label{loop, end}})

	t.loopStack = append(t.loopStack, loopLabels{continueLabel: begin, breakLabel: end})
	t.fb.PlaceLabel(loop)
	t.translateStmt(node.Children[1])
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{begin}})
	t.fb.PlaceLabel(end)
	t.loopStack = t.loopStack[:len(t.loopStack)-1]
}

// translateFor lowers `for(init; cond; step) body` per spec.md §4.4.2.
// continue targets the pre-step label (`ctn`) so the step is never
// skipped.
func (t *Translator) translateFor(node *ast.Node) {
	initNode, condNode, stepNode, bodyNode := node.Children[0], node.Children[1], node.Children[2], node.Children[3]

	begin := t.newLabel("for.cond")
	loop := t.newLabel("for.body")
	ctn := t.newLabel("for.step")
	end := t.newLabel("for.end")

	t.translateExpr(initNode, RHS)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{begin}})
	t.fb.PlaceLabel(begin)
	cond, _ := t.translateExpr(condNode, RHS)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Cond: cond, Targets: []*ir.Label{loop, end}})
	t.fb.PlaceLabel(loop)

	t.loopStack = append(t.loopStack, loopLabels{continueLabel: ctn, breakLabel: end})
	t.translateStmt(bodyNode)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{ctn}})
	t.fb.PlaceLabel(ctn)
	t.translateExpr(stepNode, RHS)
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{begin}})
	t.fb.PlaceLabel(end)
	t.loopStack = t.loopStack[:len(t.loopStack)-1]
}

func (t *Translator) translateBreak(node *ast.Node) {
	if len(t.loopStack) == 0 {
		t.errorf(node.Pos, "'break' outside a loop")
		return
	}
	target := t.loopStack[len(t.loopStack)-1].breakLabel
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{target}})
}

func (t *Translator) translateContinue(node *ast.Node) {
	if len(t.loopStack) == 0 {
		t.errorf(node.Pos, "'continue' outside a loop")
		return
	}
	target := t.loopStack[len(t.loopStack)-1].continueLabel
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{target}})
}

func (t *Translator) translateReturn(node *ast.Node) {
	retType := t.fb.Sig.RetType
	isVoid := retType == irTypeOf(cslvalue.Void)

	if len(node.Children) == 0 {
		if !isVoid {
			t.errorf(node.Pos, "non-void function requires a return value")
		}
		t.fb.Emit(ir.Instruction{Op: ir.RET})
		return
	}

	if isVoid {
		t.errorf(node.Pos, "void function must not return a value")
		return
	}

	val, valType := t.translateExpr(node.Children[0], RHS)
	val = t.castTo(node.Pos, val, valType, retType)
	t.fb.Emit(ir.Instruction{Op: ir.RET, A: val})
}
