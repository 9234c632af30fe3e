package translator

import (
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/ir"
	"github.com/flipboards/cslc/pkg/token"
)

// castTo inserts the IR cast instruction (if any) needed to convert val
// from "from" to "to", following spec.md §4.4.5's cast table. Identical
// types are returned unchanged. An operand that is already a compile-time
// Const is folded directly instead of emitting a cast instruction.
func (t *Translator) castTo(pos token.Position, val ir.Operand, from, to ir.Type) ir.Operand {
	if typesEqual(from, to) {
		return val
	}

	fromScalar, fromOK := from.(ir.Scalar)
	toScalar, toOK := to.(ir.Scalar)

	if fromOK && toOK {
		if c, ok := val.(ir.Const); ok {
			return ir.Const{Value: castConstValue(c.Value, cslvalue.Type(toScalar))}
		}
		op := scalarCastOpcode(cslvalue.Type(fromScalar), cslvalue.Type(toScalar))
		if op < 0 {
			t.errorf(pos, "no implicit cast from %s to %s", from, to)
			return val
		}
		ret := t.fb.NewRegister(to)
		t.fb.Emit(ir.Instruction{Op: op, Ret: ret, A: val, CastFrom: from, CastTo: to})
		return ret
	}

	_, fromPtr := from.(*ir.Pointer)
	_, toPtr := to.(*ir.Pointer)
	if fromPtr && toPtr {
		ret := t.fb.NewRegister(to)
		t.fb.Emit(ir.Instruction{Op: ir.BITC, Ret: ret, A: val, CastFrom: from, CastTo: to})
		return ret
	}

	if fromPtr && toOK && cslvalue.Type(toScalar) == cslvalue.Int {
		if !t.opts.PointerToVal {
			t.errorf(pos, "pointer-to-value cast is disabled")
			return val
		}
		ret := t.fb.NewRegister(to)
		t.fb.Emit(ir.Instruction{Op: ir.PTOI, Ret: ret, A: val, CastFrom: from, CastTo: to})
		return ret
	}
	if toPtr && fromOK && cslvalue.Type(fromScalar) == cslvalue.Int {
		if !t.opts.PointerToVal {
			t.errorf(pos, "value-to-pointer cast is disabled")
			return val
		}
		ret := t.fb.NewRegister(to)
		t.fb.Emit(ir.Instruction{Op: ir.ITOP, Ret: ret, A: val, CastFrom: from, CastTo: to})
		return ret
	}

	if arr, ok := from.(*ir.Array); ok && toPtr {
		if !t.opts.ArrayPointerDecay {
			t.errorf(pos, "array-to-pointer decay is disabled")
			return val
		}
		ret := t.fb.NewRegister(to)
		zero := ir.Const{Value: cslvalue.IntValue(0)}
		t.fb.Emit(ir.Instruction{Op: ir.GETPTR, Ret: ret, A: val, Indices: []ir.Operand{zero, zero}, CastFrom: arr, CastTo: to})
		return ret
	}

	t.errorf(pos, "no implicit cast from %s to %s", from, to)
	return val
}

// scalarCastOpcode picks the cast opcode for a scalar-to-scalar
// conversion per spec.md §4.4.5's table. Returns -1 when no such cast
// exists (the two scalar types are incomparable, e.g. neither is
// numerically wider/narrower in a meaningful way).
func scalarCastOpcode(from, to cslvalue.Type) ir.Opcode {
	switch {
	case from == to:
		return ir.BITC // unreachable: caller already checked typesEqual
	case to == cslvalue.Float:
		if from == cslvalue.Float {
			return ir.BITC
		}
		return ir.ITOF
	case from == cslvalue.Float:
		return ir.FTOI
	case cslvalue.Sizeof(to) > cslvalue.Sizeof(from):
		return ir.EXT
	case cslvalue.Sizeof(to) < cslvalue.Sizeof(from):
		return ir.TRUNC
	default:
		return ir.BITC
	}
}

func castConstValue(v cslvalue.Value, to cslvalue.Type) cslvalue.Value {
	switch to {
	case cslvalue.Float:
		return cslvalue.FloatValue(v.AsFloat())
	case cslvalue.Bool:
		if v.IsTruthy() {
			return cslvalue.BoolValue(true)
		}
		return cslvalue.BoolValue(false)
	case cslvalue.Char:
		return cslvalue.CharValue(rune(v.AsInt()))
	default:
		return cslvalue.IntValue(v.AsInt())
	}
}

func typesEqual(a, b ir.Type) bool {
	as, aok := a.(ir.Scalar)
	bs, bok := b.(ir.Scalar)
	if aok && bok {
		return as == bs
	}
	ap, aok := a.(*ir.Pointer)
	bp, bok := b.(*ir.Pointer)
	if aok && bok {
		return typesEqual(ap.Elem, bp.Elem)
	}
	aa, aok := a.(*ir.Array)
	ba, bok := b.(*ir.Array)
	if aok && bok {
		return aa.Size == ba.Size && typesEqual(aa.Elem, ba.Elem)
	}
	return false
}
