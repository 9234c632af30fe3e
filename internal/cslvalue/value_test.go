package cslvalue

import "testing"

func TestPromote(t *testing.T) {
	cases := []struct {
		a, b Type
		want Type
	}{
		{Bool, Char, Char},
		{Int, Float, Float},
		{Float, Int, Float},
		{Bool, Bool, Bool},
	}
	for _, c := range cases {
		if got := Promote(c.a, c.b); got != c.want {
			t.Errorf("Promote(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestSizeof(t *testing.T) {
	cases := []struct {
		t    Type
		want int
	}{
		{Void, 0}, {Bool, 1}, {Char, 1}, {Int, 4}, {Float, 4},
	}
	for _, c := range cases {
		if got := Sizeof(c.t); got != c.want {
			t.Errorf("Sizeof(%s) = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("42")
	if err != nil || v.Type != Int || v.I != 42 {
		t.Errorf("Parse(42) = %v, %v, want Int(42)", v, err)
	}

	v, err = Parse("3.14")
	if err != nil || v.Type != Float || v.F != 3.14 {
		t.Errorf("Parse(3.14) = %v, %v, want Float(3.14)", v, err)
	}

	v, err = Parse("1e3")
	if err != nil || v.Type != Float || v.F != 1000 {
		t.Errorf("Parse(1e3) = %v, %v, want Float(1000)", v, err)
	}

	if _, err := Parse("not-a-number"); err == nil {
		t.Error("Parse(\"not-a-number\") expected an error, got nil")
	}
}

func TestTypeByName(t *testing.T) {
	if v, ok := TypeByName("int"); !ok || v != Int {
		t.Errorf("TypeByName(int) = %v, %v, want Int, true", v, ok)
	}
	if _, ok := TypeByName("nonsense"); ok {
		t.Error("TypeByName(nonsense) expected ok = false")
	}
}

func TestValueConstructorsAndAccessors(t *testing.T) {
	if !BoolValue(true).IsTruthy() || BoolValue(false).IsTruthy() {
		t.Error("BoolValue truthiness mismatch")
	}
	if IntValue(5).AsFloat() != 5.0 {
		t.Error("IntValue(5).AsFloat() != 5.0")
	}
	if FloatValue(2.9).AsInt() != 2 {
		t.Error("FloatValue(2.9).AsInt() should truncate toward zero")
	}
	if CharValue('a').AsInt() != int64('a') {
		t.Error("CharValue('a').AsInt() mismatch")
	}
}
