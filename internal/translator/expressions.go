package translator

import (
	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/ctfold"
	"github.com/flipboards/cslc/internal/ir"
	"github.com/flipboards/cslc/internal/operator"
	"github.com/flipboards/cslc/pkg/token"
)

// Side selects how a Name/subscript/parenthesized expression is lowered:
// as an address (LHS, for assignment targets and increment/decrement) or
// as a loaded value (RHS, everywhere else). Mirrors spec.md §4.4.3's
// explicit LHS/RHS lowering distinction.
type Side int

const (
	RHS Side = iota
	LHS
)

// translateExpr lowers one expression node and returns its operand
// together with the IR type it evaluates to.
func (t *Translator) translateExpr(node *ast.Node, side Side) (ir.Operand, ir.Type) {
	switch node.Kind {
	case ast.Val:
		return ir.Const{Value: node.Value}, ir.Scalar(node.Value.Type)
	case ast.Name:
		return t.translateName(node, side)
	case ast.Call:
		return t.translateCall(node)
	case ast.Op:
		return t.translateOp(node, side)
	case ast.None:
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	default:
		t.errorf(node.Pos, "unexpected expression node %s", node.Kind)
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	}
}

func (t *Translator) translateName(node *ast.Node, side Side) (ir.Operand, ir.Type) {
	id, ptrType, ok := t.resolve(node.Ident)
	if !ok {
		t.errorf(node.Pos, "undefined symbol %q", node.Ident)
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	}
	if side == LHS {
		return id, ptrType
	}
	ptr, ok := ptrType.(*ir.Pointer)
	if !ok {
		// a bare function name used as a value, or some other non-
		// addressable resolution; return it unloaded.
		return id, ptrType
	}
	ret := t.fb.NewRegister(ptr.Elem)
	t.fb.Emit(ir.Instruction{Op: ir.LOAD, Ret: ret, A: id})
	return ret, ptr.Elem
}

// translateCall lowers a call: arguments left-to-right, each cast to its
// declared parameter type, single overload lookup by name (spec.md
// §4.4.3).
func (t *Translator) translateCall(node *ast.Node) (ir.Operand, ir.Type) {
	calleeNode := node.Children[0]
	if calleeNode.Kind != ast.Name {
		t.errorf(node.Pos, "call target must be a function name")
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	}
	name := calleeNode.Ident
	entry, ok := t.lookupFunc(name)
	if !ok {
		t.errorf(node.Pos, "undefined function %q", name)
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	}

	argNodes := node.Children[1:]
	if len(argNodes) != len(entry.sig.ArgTypes) {
		t.errorf(node.Pos, "function %q expects %d argument(s), got %d", name, len(entry.sig.ArgTypes), len(argNodes))
	}

	args := make([]ir.Operand, 0, len(argNodes))
	for i, a := range argNodes {
		val, valType := t.translateExpr(a, RHS)
		if i < len(entry.sig.ArgTypes) {
			val = t.castTo(a.Pos, val, valType, entry.sig.ArgTypes[i])
		}
		args = append(args, val)
	}

	retType := entry.sig.RetType
	if isVoidType(retType) {
		t.fb.Emit(ir.Instruction{Op: ir.CALL, Callee: name, Args: args})
		return ir.Const{}, retType
	}
	ret := t.fb.NewRegister(retType)
	t.fb.Emit(ir.Instruction{Op: ir.CALL, Ret: ret, Callee: name, Args: args})
	return ret, retType
}

func (t *Translator) translateOp(node *ast.Node, side Side) (ir.Operand, ir.Type) {
	op := node.Operator
	switch {
	case op == operator.LSUB:
		return t.translateSubscript(node, side)
	case op == operator.MBER:
		t.errorf(node.Pos, "member access is not supported")
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	case op == operator.ASN:
		return t.translateAssign(node)
	case operator.IsAssign(op):
		return t.translateCompoundAssign(node)
	case op == operator.INC, op == operator.DEC:
		return t.translateIncDec(node, true)
	case op == operator.POSTINC, op == operator.POSTDEC:
		return t.translateIncDec(node, false)
	case op == operator.PLUS:
		return t.translateExpr(node.Children[0], RHS)
	case op == operator.MINUS:
		return t.translateUnaryMinus(node)
	case op == operator.NOT:
		return t.translateNot(node)
	case op == operator.AND, op == operator.OR:
		return t.translateLogical(node)
	default:
		return t.translateBinary(node)
	}
}

// unwindSubscript flattens a chain of nested LSUB nodes (a[i][j] parses as
// LSUB(LSUB(a, i), j)) into its base expression and an ordered index list.
func unwindSubscript(node *ast.Node) (*ast.Node, []*ast.Node) {
	if node.Kind == ast.Op && node.Operator == operator.LSUB {
		base, indices := unwindSubscript(node.Children[0])
		return base, append(indices, node.Children[1])
	}
	return node, nil
}

// translateSubscript lowers a[i1][i2]... into a single GETPTR. An array-
// typed base gets a leading zero index (the "dereference the alloca"
// index LLVM getelementptr requires); a pointer-typed base (array-to-
// pointer decay, or a pointer parameter) is indexed directly and requires
// POINTER_ARITHMETIC to be enabled.
func (t *Translator) translateSubscript(node *ast.Node, side Side) (ir.Operand, ir.Type) {
	baseNode, idxNodes := unwindSubscript(node)
	baseOperand, baseType := t.translateExpr(baseNode, LHS)

	basePtr, ok := baseType.(*ir.Pointer)
	if !ok {
		t.errorf(node.Pos, "cannot subscript a non-array, non-pointer value")
		return ir.Const{}, ir.Scalar(cslvalue.Void)
	}

	elem := basePtr.Elem
	indices := make([]ir.Operand, 0, len(idxNodes)+1)
	if _, isArray := elem.(*ir.Array); isArray {
		indices = append(indices, ir.Const{Value: cslvalue.IntValue(0)})
	} else if !t.opts.PointerArithmetic {
		t.errorf(node.Pos, "pointer arithmetic is disabled")
	}

	for _, idxNode := range idxNodes {
		idxVal, idxType := t.translateExpr(idxNode, RHS)
		idxVal = t.castTo(idxNode.Pos, idxVal, idxType, ir.Scalar(cslvalue.Int))
		indices = append(indices, idxVal)
		if arr, ok := elem.(*ir.Array); ok {
			elem = arr.Elem
		}
	}

	resultPtr := &ir.Pointer{Elem: elem}
	ptrReg := t.fb.NewRegister(resultPtr)
	t.fb.Emit(ir.Instruction{Op: ir.GETPTR, Ret: ptrReg, A: baseOperand, Indices: indices, CastFrom: basePtr, CastTo: resultPtr})

	if side == LHS {
		return ptrReg, resultPtr
	}
	valReg := t.fb.NewRegister(elem)
	t.fb.Emit(ir.Instruction{Op: ir.LOAD, Ret: valReg, A: ptrReg})
	return valReg, elem
}

func (t *Translator) translateAssign(node *ast.Node) (ir.Operand, ir.Type) {
	lhsNode, rhsNode := node.Children[0], node.Children[1]
	ptr, ptrType := t.translateExpr(lhsNode, LHS)
	target, ok := ptrType.(*ir.Pointer)
	if !ok {
		t.errorf(node.Pos, "lvalue required on left side of assignment")
		return ptr, ptrType
	}
	val, valType := t.translateExpr(rhsNode, RHS)
	val = t.castTo(rhsNode.Pos, val, valType, target.Elem)
	t.fb.Emit(ir.Instruction{Op: ir.STORE, A: ptr, B: val})
	return val, target.Elem
}

func (t *Translator) translateCompoundAssign(node *ast.Node) (ir.Operand, ir.Type) {
	base, _ := operator.CompoundBase(node.Operator)
	lhsNode, rhsNode := node.Children[0], node.Children[1]

	ptr, ptrType := t.translateExpr(lhsNode, LHS)
	target, ok := ptrType.(*ir.Pointer)
	if !ok {
		t.errorf(node.Pos, "lvalue required on left side of assignment")
		return ptr, ptrType
	}

	old := t.fb.NewRegister(target.Elem)
	t.fb.Emit(ir.Instruction{Op: ir.LOAD, Ret: old, A: ptr})

	rhsVal, rhsType := t.translateExpr(rhsNode, RHS)
	result, resultType := t.applyBinary(node.Pos, base, old, target.Elem, rhsVal, rhsType)
	result = t.castTo(node.Pos, result, resultType, target.Elem)

	t.fb.Emit(ir.Instruction{Op: ir.STORE, A: ptr, B: result})
	return result, target.Elem
}

func (t *Translator) translateIncDec(node *ast.Node, isPrefix bool) (ir.Operand, ir.Type) {
	ptr, ptrType := t.translateExpr(node.Children[0], LHS)
	target, ok := ptrType.(*ir.Pointer)
	if !ok {
		t.errorf(node.Pos, "lvalue required for '++'/'--'")
		return ptr, ptrType
	}

	delta := operator.ADD
	if node.Operator == operator.DEC || node.Operator == operator.POSTDEC {
		delta = operator.SUB
	}

	old := t.fb.NewRegister(target.Elem)
	t.fb.Emit(ir.Instruction{Op: ir.LOAD, Ret: old, A: ptr})

	newVal := t.fb.NewRegister(target.Elem)
	t.fb.Emit(ir.Instruction{Op: irOpcodeFor(delta), Ret: newVal, A: old, B: ir.Const{Value: oneOf(target.Elem)}})
	t.fb.Emit(ir.Instruction{Op: ir.STORE, A: ptr, B: newVal})

	if isPrefix {
		return newVal, target.Elem
	}
	return old, target.Elem
}

func (t *Translator) translateUnaryMinus(node *ast.Node) (ir.Operand, ir.Type) {
	val, valType := t.translateExpr(node.Children[0], RHS)
	if c, ok := val.(ir.Const); ok {
		v, err := ctfold.EvalUnary(operator.MINUS, c.Value)
		if err != nil {
			t.errorf(node.Pos, "%s", err)
			return ir.Const{}, valType
		}
		return ir.Const{Value: v}, ir.Scalar(v.Type)
	}

	retType := valType
	if s, ok := valType.(ir.Scalar); ok && cslvalue.Type(s) < cslvalue.Char {
		retType = ir.Scalar(cslvalue.Char)
		val = t.castTo(node.Pos, val, valType, retType)
	}
	ret := t.fb.NewRegister(retType)
	t.fb.Emit(ir.Instruction{Op: ir.SUB, Ret: ret, A: ir.Const{Value: zeroOf(retType)}, B: val})
	return ret, retType
}

func (t *Translator) translateNot(node *ast.Node) (ir.Operand, ir.Type) {
	val, valType := t.translateExpr(node.Children[0], RHS)
	if c, ok := val.(ir.Const); ok {
		v, err := ctfold.EvalUnary(operator.NOT, c.Value)
		if err != nil {
			t.errorf(node.Pos, "%s", err)
			return ir.Const{}, ir.Scalar(cslvalue.Bool)
		}
		return ir.Const{Value: v}, ir.Scalar(cslvalue.Bool)
	}
	val = t.castTo(node.Pos, val, valType, ir.Scalar(cslvalue.Bool))
	ret := t.fb.NewRegister(ir.Scalar(cslvalue.Bool))
	t.fb.Emit(ir.Instruction{Op: ir.NOT, Ret: ret, A: val})
	return ret, ir.Scalar(cslvalue.Bool)
}

func (t *Translator) translateBinary(node *ast.Node) (ir.Operand, ir.Type) {
	lhsVal, lhsType := t.translateExpr(node.Children[0], RHS)
	rhsVal, rhsType := t.translateExpr(node.Children[1], RHS)
	return t.applyBinary(node.Pos, node.Operator, lhsVal, lhsType, rhsVal, rhsType)
}

// translateLogical lowers and/or. LazyBool off (the default) evaluates
// both operands eagerly, matching spec.md §4.4.3's "the default leaves
// short-circuiting to an optimizer pass".
func (t *Translator) translateLogical(node *ast.Node) (ir.Operand, ir.Type) {
	if !t.opts.LazyBool {
		return t.translateBinary(node)
	}
	return t.translateLazyLogical(node)
}

// translateLazyLogical lowers a short-circuiting and/or as a two-way
// branch feeding a PHI, instead of unconditionally evaluating the right
// operand.
func (t *Translator) translateLazyLogical(node *ast.Node) (ir.Operand, ir.Type) {
	isAnd := node.Operator == operator.AND

	lhsVal, lhsType := t.translateExpr(node.Children[0], RHS)
	lhsBool := t.castTo(node.Pos, lhsVal, lhsType, ir.Scalar(cslvalue.Bool))

	evalLabel := t.newLabel("lazybool.eval")
	shortLabel := t.newLabel("lazybool.short")
	joinLabel := t.newLabel("lazybool.join")

	if isAnd {
		t.fb.Emit(ir.Instruction{Op: ir.BR, Cond: lhsBool, Targets: []*ir.Label{evalLabel, shortLabel}})
	} else {
		t.fb.Emit(ir.Instruction{Op: ir.BR, Cond: lhsBool, Targets: []*ir.Label{shortLabel, evalLabel}})
	}

	t.fb.PlaceLabel(evalLabel)
	rhsVal, rhsType := t.translateExpr(node.Children[1], RHS)
	rhsBool := t.castTo(node.Pos, rhsVal, rhsType, ir.Scalar(cslvalue.Bool))
	// the rhs arm's predecessor is the last label placed before this BR,
	// which differs from evalLabel when the rhs opened blocks of its own.
	rhsPred := evalLabel
	for i := len(t.fb.Registers) - 1; i >= 0; i-- {
		if r := t.fb.Registers[i]; r.IsLabel {
			rhsPred = r.Label
			break
		}
	}
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{joinLabel}})

	t.fb.PlaceLabel(shortLabel)
	shortVal := ir.Const{Value: cslvalue.BoolValue(!isAnd)}
	t.fb.Emit(ir.Instruction{Op: ir.BR, Targets: []*ir.Label{joinLabel}})

	t.fb.PlaceLabel(joinLabel)
	ret := t.fb.NewRegister(ir.Scalar(cslvalue.Bool))
	t.fb.Emit(ir.Instruction{Op: ir.PHI, Ret: ret, Edges: []ir.PhiEdge{
		{Value: rhsBool, Pred: rhsPred},
		{Value: shortVal, Pred: shortLabel},
	}})
	return ret, ir.Scalar(cslvalue.Bool)
}

// applyBinary constant-folds op(lhs, rhs) when both operands are
// compile-time constants, otherwise reconciles their types (comparisons
// always produce BOOL; arithmetic promotes to max(lhs,rhs) lifted to at
// least CHAR, or to the pointer type when POINTER_ARITHMETIC allows a
// scalar offset) and emits the instruction.
func (t *Translator) applyBinary(pos token.Position, op operator.Operator, lhs ir.Operand, lhsType ir.Type, rhs ir.Operand, rhsType ir.Type) (ir.Operand, ir.Type) {
	if lc, lok := lhs.(ir.Const); lok {
		if rc, rok := rhs.(ir.Const); rok && ctfold.IsFoldable(op) {
			v, err := ctfold.Eval(op, lc.Value, rc.Value)
			if err != nil {
				t.errorf(pos, "%s", err)
				return ir.Const{}, ir.Scalar(cslvalue.Void)
			}
			return ir.Const{Value: v}, ir.Scalar(v.Type)
		}
	}

	lhsScalar, lok := lhsType.(ir.Scalar)
	rhsScalar, rok := rhsType.(ir.Scalar)

	var retType ir.Type
	switch {
	case operator.IsComparison(op):
		retType = ir.Scalar(cslvalue.Bool)
	case lok && rok:
		promoted := cslvalue.Promote(cslvalue.Type(lhsScalar), cslvalue.Type(rhsScalar))
		if promoted < cslvalue.Char {
			promoted = cslvalue.Char
		}
		retType = ir.Scalar(promoted)
	case t.opts.PointerArithmetic && isPointer(lhsType):
		retType = lhsType
	case t.opts.PointerArithmetic && isPointer(rhsType):
		retType = rhsType
	default:
		t.errorf(pos, "operator %s requires numeric operands", op)
		retType = lhsType
	}

	if op == operator.POW {
		t.errorf(pos, "'^' is not supported by the LLVM-IR backend")
		return ir.Const{}, retType
	}

	// operandType is what both sides get cast to before the instruction:
	// the promoted scalar type for a scalar/scalar operation (comparisons
	// included), or the untouched lhsType for pointer arithmetic/compare.
	operandType := retType
	if lok && rok {
		operandType = ir.Scalar(cslvalue.Promote(cslvalue.Type(lhsScalar), cslvalue.Type(rhsScalar)))
	} else if isPointer(lhsType) {
		operandType = lhsType
	} else if isPointer(rhsType) {
		operandType = rhsType
	}
	lhs = t.castTo(pos, lhs, lhsType, operandType)
	rhs = t.castTo(pos, rhs, rhsType, operandType)

	ret := t.fb.NewRegister(retType)
	t.fb.Emit(ir.Instruction{Op: irOpcodeFor(op), Ret: ret, A: lhs, B: rhs})
	return ret, retType
}

func irOpcodeFor(op operator.Operator) ir.Opcode {
	switch op {
	case operator.ADD:
		return ir.ADD
	case operator.SUB:
		return ir.SUB
	case operator.MUL:
		return ir.MUL
	case operator.DIV:
		return ir.DIV
	case operator.REM:
		return ir.REM
	case operator.POW:
		return ir.POW
	case operator.AND:
		return ir.AND
	case operator.OR:
		return ir.OR
	case operator.XOR:
		return ir.XOR
	case operator.NOT:
		return ir.NOT
	case operator.EQ:
		return ir.EQ
	case operator.NE:
		return ir.NE
	case operator.LT:
		return ir.LT
	case operator.LE:
		return ir.LE
	case operator.GT:
		return ir.GT
	case operator.GE:
		return ir.GE
	default:
		return ir.HLT
	}
}

func isPointer(t ir.Type) bool {
	_, ok := t.(*ir.Pointer)
	return ok
}

func isVoidType(t ir.Type) bool {
	s, ok := t.(ir.Scalar)
	return ok && cslvalue.Type(s) == cslvalue.Void
}

func zeroOf(t ir.Type) cslvalue.Value {
	if s, ok := t.(ir.Scalar); ok && cslvalue.Type(s) == cslvalue.Float {
		return cslvalue.FloatValue(0)
	}
	return cslvalue.IntValue(0)
}

func oneOf(t ir.Type) cslvalue.Value {
	if s, ok := t.(ir.Scalar); ok && cslvalue.Type(s) == cslvalue.Float {
		return cslvalue.FloatValue(1)
	}
	return cslvalue.IntValue(1)
}
