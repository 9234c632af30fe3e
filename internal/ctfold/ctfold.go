// Package ctfold implements CSL's compile-time constant evaluator, used
// by the translator for array dimensions and global/local initializers
// that must resolve to a cslvalue.Value without emitting any IR.
//
// Grounded on the original implementation's evalute.py: the same
// op-to-function table (OpEvalLoc) and the same result-type rule (boolean
// family returns BOOL, everything else promotes via max(lhs,rhs) lifted
// to at least CHAR).
package ctfold

import (
	"fmt"

	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/operator"
)

// Eval folds a binary operation over two constants.
func Eval(op operator.Operator, lhs, rhs cslvalue.Value) (cslvalue.Value, error) {
	return eval(op, lhs, &rhs)
}

// EvalUnary folds a unary operation (MINUS, NOT) over one constant.
func EvalUnary(op operator.Operator, operand cslvalue.Value) (cslvalue.Value, error) {
	return eval(op, operand, nil)
}

func eval(op operator.Operator, lhs cslvalue.Value, rhs *cslvalue.Value) (cslvalue.Value, error) {
	if lhs.Type == cslvalue.Void || (rhs != nil && rhs.Type == cslvalue.Void) {
		return cslvalue.Value{}, fmt.Errorf("need value type")
	}

	var retType cslvalue.Type
	switch {
	case operator.IsComparison(op) || operator.IsLogical(op):
		retType = cslvalue.Bool
	case rhs != nil:
		retType = cslvalue.Promote(lhs.Type, rhs.Type)
	default:
		retType = lhs.Type
	}
	// arithmetic/bitwise results (everything below EQ in the opcode's
	// originating operator order) are lifted to at least CHAR; comparisons
	// and logicals already resolved to BOOL above and are left alone.
	if !operator.IsComparison(op) && !operator.IsLogical(op) {
		retType = cslvalue.Promote(retType, cslvalue.Char)
	}

	fn, ok := evalFuncs[op]
	if !ok {
		return cslvalue.Value{}, fmt.Errorf("unrecognized operator in constant expression: %s", op)
	}
	if rhs == nil {
		return fn.unary(retType, lhs)
	}
	return fn.binary(retType, lhs, *rhs)
}

type evalFunc struct {
	unary  func(ret cslvalue.Type, a cslvalue.Value) (cslvalue.Value, error)
	binary func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error)
}

func asFloatOp(ret cslvalue.Type, f float64) cslvalue.Value {
	if ret == cslvalue.Float {
		return cslvalue.FloatValue(f)
	}
	return cslvalue.Value{Type: ret, I: int64(f)}
}

func asBool(b bool) cslvalue.Value { return cslvalue.BoolValue(b) }

// cdiv mirrors the original's _cdiv: integer/integer truncates, any float
// operand makes it a real division.
func cdiv(a, b cslvalue.Value) float64 {
	if a.Type == cslvalue.Float || b.Type == cslvalue.Float {
		return a.AsFloat() / b.AsFloat()
	}
	return float64(a.AsInt() / b.AsInt())
}

var evalFuncs = map[operator.Operator]evalFunc{
	operator.ADD: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asFloatOp(ret, a.AsFloat()+b.AsFloat()), nil
	}},
	operator.SUB: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asFloatOp(ret, a.AsFloat()-b.AsFloat()), nil
	}},
	operator.MUL: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asFloatOp(ret, a.AsFloat()*b.AsFloat()), nil
	}},
	operator.DIV: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		if b.AsFloat() == 0 {
			return cslvalue.Value{}, fmt.Errorf("division by zero in constant expression")
		}
		return asFloatOp(ret, cdiv(a, b)), nil
	}},
	operator.REM: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		if b.AsInt() == 0 {
			return cslvalue.Value{}, fmt.Errorf("division by zero in constant expression")
		}
		return asFloatOp(ret, float64(a.AsInt()%b.AsInt())), nil
	}},
	operator.POW: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return cslvalue.Value{}, fmt.Errorf("'^' is not supported by the LLVM-IR backend")
	}},

	operator.MINUS: {unary: func(ret cslvalue.Type, a cslvalue.Value) (cslvalue.Value, error) {
		return asFloatOp(ret, -a.AsFloat()), nil
	}},

	operator.AND: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.IsTruthy() && b.IsTruthy()), nil
	}},
	operator.OR: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.IsTruthy() || b.IsTruthy()), nil
	}},
	operator.XOR: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.IsTruthy() != b.IsTruthy()), nil
	}},
	operator.NOT: {unary: func(ret cslvalue.Type, a cslvalue.Value) (cslvalue.Value, error) {
		return asBool(!a.IsTruthy()), nil
	}},

	operator.EQ: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() == b.AsFloat()), nil
	}},
	operator.NE: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() != b.AsFloat()), nil
	}},
	operator.LT: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() < b.AsFloat()), nil
	}},
	operator.LE: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() <= b.AsFloat()), nil
	}},
	operator.GT: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() > b.AsFloat()), nil
	}},
	operator.GE: {binary: func(ret cslvalue.Type, a, b cslvalue.Value) (cslvalue.Value, error) {
		return asBool(a.AsFloat() >= b.AsFloat()), nil
	}},
}

// IsFoldable reports whether op has a constant-evaluation rule at all
// (used by the translator to decide whether to attempt folding before
// falling back to emitting an IR instruction).
func IsFoldable(op operator.Operator) bool {
	_, ok := evalFuncs[op]
	return ok
}
