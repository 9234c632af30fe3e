package ctfold

import (
	"testing"

	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/operator"
)

func TestEvalArithmetic(t *testing.T) {
	v, err := Eval(operator.ADD, cslvalue.IntValue(3), cslvalue.IntValue(4))
	if err != nil || v.AsInt() != 7 || v.Type != cslvalue.Int {
		t.Errorf("3 + 4 = %v, %v, want Int(7)", v, err)
	}
}

func TestEvalIntegerDivisionTruncates(t *testing.T) {
	v, err := Eval(operator.DIV, cslvalue.IntValue(7), cslvalue.IntValue(2))
	if err != nil || v.AsInt() != 3 {
		t.Errorf("7 / 2 = %v, %v, want Int(3)", v, err)
	}
	// C-style truncation toward zero, not floor.
	v, err = Eval(operator.DIV, cslvalue.IntValue(-7), cslvalue.IntValue(2))
	if err != nil || v.AsInt() != -3 {
		t.Errorf("-7 / 2 = %v, %v, want Int(-3) (truncation, not floor)", v, err)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	if _, err := Eval(operator.DIV, cslvalue.IntValue(1), cslvalue.IntValue(0)); err == nil {
		t.Error("expected an error for division by zero")
	}
	if _, err := Eval(operator.REM, cslvalue.IntValue(1), cslvalue.IntValue(0)); err == nil {
		t.Error("expected an error for remainder by zero")
	}
}

func TestEvalComparisonReturnsBool(t *testing.T) {
	v, err := Eval(operator.LT, cslvalue.IntValue(1), cslvalue.IntValue(2))
	if err != nil || v.Type != cslvalue.Bool || !v.IsTruthy() {
		t.Errorf("1 < 2 = %v, %v, want true Bool", v, err)
	}
}

func TestEvalLogical(t *testing.T) {
	v, err := Eval(operator.AND, cslvalue.BoolValue(true), cslvalue.BoolValue(false))
	if err != nil || v.IsTruthy() {
		t.Errorf("true and false = %v, %v, want false", v, err)
	}
}

func TestEvalUnaryMinus(t *testing.T) {
	v, err := EvalUnary(operator.MINUS, cslvalue.IntValue(5))
	if err != nil || v.AsInt() != -5 {
		t.Errorf("-5 = %v, %v, want Int(-5)", v, err)
	}
}

func TestEvalPowUnsupported(t *testing.T) {
	if _, err := Eval(operator.POW, cslvalue.IntValue(2), cslvalue.IntValue(3)); err == nil {
		t.Error("expected POW to be rejected by the constant evaluator")
	}
}

func TestEvalResultPromotesToAtLeastChar(t *testing.T) {
	// bool + bool promotes past BOOL up to at least CHAR for arithmetic.
	v, err := Eval(operator.ADD, cslvalue.BoolValue(true), cslvalue.BoolValue(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Type < cslvalue.Char {
		t.Errorf("bool + bool result type = %s, want at least Char", v.Type)
	}
}

func TestIsFoldable(t *testing.T) {
	if !IsFoldable(operator.ADD) {
		t.Error("ADD should be foldable")
	}
	if IsFoldable(operator.ASN) {
		t.Error("ASN should not be foldable")
	}
}
