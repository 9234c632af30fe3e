package translator

import (
	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/ctfold"
	"github.com/flipboards/cslc/internal/ir"
	"github.com/flipboards/cslc/internal/operator"
)

// arraySizeLimit caps the total element count of any declared array
// (spec.md §4.4.4's "array size over limit" CompileError).
const arraySizeLimit = 16384

// translateGlobalDecl lowers a top-level `TYPE decl_elem (',' decl_elem)*`
// declaration. Every dimension and initializer must be a compile-time
// constant (spec.md §4.4.4).
func (t *Translator) translateGlobalDecl(node *ast.Node) {
	baseVal := node.Children[0].ValType
	baseType := irTypeOf(baseVal)
	for _, elem := range node.Children[1:] {
		t.translateGlobalElem(elem, baseVal, baseType)
	}
}

func (t *Translator) translateGlobalElem(elem *ast.Node, baseVal cslvalue.Type, baseType ir.Type) {
	nameNode := elem.Children[0]
	name := nameNode.Ident

	if _, exists := t.globals[name]; exists {
		t.errorf(elem.Pos, "redefinition of global %q", name)
		return
	}
	if _, exists := t.funcs[name]; exists {
		t.errorf(elem.Pos, "%q is already declared as a function", name)
		return
	}

	dims, ok := t.evalDims(nameNode)
	if !ok {
		return
	}

	var initNode *ast.Node
	if len(elem.Children) > 1 {
		initNode = elem.Children[1]
	}

	if len(dims) == 0 {
		init := cslvalue.Value{Type: baseVal}
		if initNode != nil {
			v, ok := t.evalConstExpr(initNode)
			if !ok {
				return
			}
			init = castConstValue(v, baseVal)
		}
		g := &ir.GlobalDecl{Name: name, Type: baseType, Init: init}
		t.globals[name] = g
		t.prog.Globals = append(t.prog.Globals, g)
		return
	}

	total := product(dims)
	if total > arraySizeLimit {
		t.errorf(elem.Pos, "array %q exceeds the maximum of %d elements", name, arraySizeLimit)
		return
	}

	flat := make([]cslvalue.Value, total)
	for i := range flat {
		flat[i] = cslvalue.Value{Type: baseVal}
	}
	if initNode != nil {
		if !t.flattenConstInitializer(initNode, dims, baseVal, flat, 0, total) {
			return
		}
	}

	g := &ir.GlobalDecl{Name: name, Type: buildArrayType(dims, baseType), IsArray: true, Array: flat}
	t.globals[name] = g
	t.prog.Globals = append(t.prog.Globals, g)
}

// translateLocalDecl lowers a block-local declaration: an ALLOC per
// declarator, plus a STORE (scalar) or one GETPTR+STORE per flattened
// cell (array), zero-filling any cell the initializer list left out.
func (t *Translator) translateLocalDecl(node *ast.Node) {
	baseVal := node.Children[0].ValType
	baseType := irTypeOf(baseVal)
	for _, elem := range node.Children[1:] {
		t.translateLocalElem(elem, baseVal, baseType)
	}
}

func (t *Translator) translateLocalElem(elem *ast.Node, baseVal cslvalue.Type, baseType ir.Type) {
	nameNode := elem.Children[0]
	name := nameNode.Ident

	dims, ok := t.evalDims(nameNode)
	if !ok {
		return
	}

	var initNode *ast.Node
	if len(elem.Children) > 1 {
		initNode = elem.Children[1]
	}

	if len(dims) == 0 {
		slot := t.fb.NewRegister(&ir.Pointer{Elem: baseType})
		t.fb.Emit(ir.Instruction{Op: ir.ALLOC, Ret: slot, CastTo: baseType})
		t.declareLocal(elem.Pos, name, slot)
		if initNode != nil {
			val, valType := t.translateExpr(initNode, RHS)
			val = t.castTo(initNode.Pos, val, valType, baseType)
			t.fb.Emit(ir.Instruction{Op: ir.STORE, A: slot, B: val})
		}
		return
	}

	total := product(dims)
	if total > arraySizeLimit {
		t.errorf(elem.Pos, "array %q exceeds the maximum of %d elements", name, arraySizeLimit)
		return
	}

	arrType := buildArrayType(dims, baseType)
	arrPtrType := &ir.Pointer{Elem: arrType}
	slot := t.fb.NewRegister(arrPtrType)
	t.fb.Emit(ir.Instruction{Op: ir.ALLOC, Ret: slot, CastTo: arrType})
	t.declareLocal(elem.Pos, name, slot)

	flatInit := make([]*ast.Node, total)
	if initNode != nil {
		if !t.flattenLocalInitializer(initNode, dims, flatInit, 0, total) {
			return
		}
	}

	elemPtrType := &ir.Pointer{Elem: baseType}
	for i := 0; i < total; i++ {
		indices := make([]ir.Operand, 0, len(dims)+1)
		indices = append(indices, ir.Const{Value: cslvalue.IntValue(0)})
		for _, ix := range unflattenIndex(i, dims) {
			indices = append(indices, ir.Const{Value: cslvalue.IntValue(int64(ix))})
		}
		ptr := t.fb.NewRegister(elemPtrType)
		t.fb.Emit(ir.Instruction{Op: ir.GETPTR, Ret: ptr, A: slot, Indices: indices, CastFrom: arrPtrType, CastTo: elemPtrType})

		var val ir.Operand = ir.Const{Value: cslvalue.Value{Type: baseVal}}
		var valType ir.Type = ir.Scalar(baseVal)
		if flatInit[i] != nil {
			val, valType = t.translateExpr(flatInit[i], RHS)
		}
		val = t.castTo(elem.Pos, val, valType, baseType)
		t.fb.Emit(ir.Instruction{Op: ir.STORE, A: ptr, B: val})
	}
}

// evalDims folds every `[expr]` dimension on a declarator's Name node to a
// positive int, in declaration order (outermost dimension first).
func (t *Translator) evalDims(nameNode *ast.Node) ([]int, bool) {
	if len(nameNode.Children) == 0 {
		return nil, true
	}
	dims := make([]int, 0, len(nameNode.Children))
	for _, d := range nameNode.Children {
		v, ok := t.evalConstExpr(d)
		if !ok {
			return nil, false
		}
		n := int(v.AsInt())
		if n <= 0 {
			t.errorf(d.Pos, "array dimension must be a positive constant")
			return nil, false
		}
		dims = append(dims, n)
	}
	return dims, true
}

// evalConstExpr folds a declaration-context expression (an array
// dimension or a global initializer) without needing a live function
// block: only literals and operators ctfold already knows how to fold are
// legal here.
func (t *Translator) evalConstExpr(node *ast.Node) (cslvalue.Value, bool) {
	switch node.Kind {
	case ast.Val:
		return node.Value, true
	case ast.Op:
		switch node.Operator {
		case operator.PLUS:
			return t.evalConstExpr(node.Children[0])
		case operator.MINUS, operator.NOT:
			v, ok := t.evalConstExpr(node.Children[0])
			if !ok {
				return cslvalue.Value{}, false
			}
			r, err := ctfold.EvalUnary(node.Operator, v)
			if err != nil {
				t.errorf(node.Pos, "%s", err)
				return cslvalue.Value{}, false
			}
			return r, true
		default:
			if len(node.Children) == 2 {
				lv, ok1 := t.evalConstExpr(node.Children[0])
				rv, ok2 := t.evalConstExpr(node.Children[1])
				if !ok1 || !ok2 {
					return cslvalue.Value{}, false
				}
				r, err := ctfold.Eval(node.Operator, lv, rv)
				if err != nil {
					t.errorf(node.Pos, "%s", err)
					return cslvalue.Value{}, false
				}
				return r, true
			}
		}
	}
	t.errorf(node.Pos, "expression is not a compile-time constant")
	return cslvalue.Value{}, false
}

// flattenConstInitializer fills flat[start:start+span] from a (possibly
// nested) brace initializer, following dims outermost-first; a shorter
// list zero-fills its remaining cells (spec.md §4.4.4).
func (t *Translator) flattenConstInitializer(init *ast.Node, dims []int, baseVal cslvalue.Type, flat []cslvalue.Value, start, span int) bool {
	if len(dims) == 0 {
		v, ok := t.evalConstExpr(init)
		if !ok {
			return false
		}
		flat[start] = castConstValue(v, baseVal)
		return true
	}
	if init.Kind != ast.List {
		t.errorf(init.Pos, "array initializer must be a brace-enclosed list")
		return false
	}
	if len(init.Children) > dims[0] {
		t.errorf(init.Pos, "array initializer has more elements than declared")
		return false
	}
	cellSpan := span / dims[0]
	for i, child := range init.Children {
		if !t.flattenConstInitializer(child, dims[1:], baseVal, flat, start+i*cellSpan, cellSpan) {
			return false
		}
	}
	return true
}

// flattenLocalInitializer is flattenConstInitializer's local-declaration
// counterpart: it records the initializer expression node for each cell
// instead of evaluating it, since a local initializer need not be a
// compile-time constant.
func (t *Translator) flattenLocalInitializer(init *ast.Node, dims []int, flat []*ast.Node, start, span int) bool {
	if len(dims) == 0 {
		flat[start] = init
		return true
	}
	if init.Kind != ast.List {
		t.errorf(init.Pos, "array initializer must be a brace-enclosed list")
		return false
	}
	if len(init.Children) > dims[0] {
		t.errorf(init.Pos, "array initializer has more elements than declared")
		return false
	}
	cellSpan := span / dims[0]
	for i, child := range init.Children {
		if !t.flattenLocalInitializer(child, dims[1:], flat, start+i*cellSpan, cellSpan) {
			return false
		}
	}
	return true
}

// unflattenIndex converts a row-major flat index back into its per-
// dimension subscripts.
func unflattenIndex(i int, dims []int) []int {
	idx := make([]int, len(dims))
	for d := len(dims) - 1; d >= 0; d-- {
		idx[d] = i % dims[d]
		i /= dims[d]
	}
	return idx
}

func buildArrayType(dims []int, base ir.Type) ir.Type {
	t := base
	for i := len(dims) - 1; i >= 0; i-- {
		t = &ir.Array{Size: dims[i], Elem: t}
	}
	return t
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
