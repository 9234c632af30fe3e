package ast

import (
	"strings"
	"testing"

	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/operator"
	"github.com/flipboards/cslc/pkg/token"
)

func TestAppend(t *testing.T) {
	root := New(Root, token.Position{})
	child := NewName(token.Position{}, "x")
	if got := root.Append(child); got != root {
		t.Error("Append should return the receiver for chaining")
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Error("Append should add child to Children")
	}
}

func TestStringRendersEveryKind(t *testing.T) {
	tree := New(Root, token.Position{},
		NewVal(token.Position{}, cslvalue.IntValue(42)),
		NewName(token.Position{}, "x"),
		NewOp(token.Position{}, operator.ADD, NewName(token.Position{}, "a"), NewName(token.Position{}, "b")),
		NewType(token.Position{}, cslvalue.Int),
		NewDecl(token.Position{}, VarDecl),
		NewCtrl(token.Position{}, CtrlIf),
	)
	out := tree.String()
	for _, want := range []string{"val(42)", "name(x)", "op(+)", "type(int)", "decl(", "ctrl("} {
		if !strings.Contains(out, want) {
			t.Errorf("expected String() to contain %q, got:\n%s", want, out)
		}
	}
}

func TestStringIndentsByDepth(t *testing.T) {
	tree := New(Root, token.Position{}, NewName(token.Position{}, "x"))
	out := tree.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if strings.HasPrefix(lines[1], " ") == false {
		t.Errorf("expected the child line to be indented, got %q", lines[1])
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{Val: "val", Name: "name", Op: "op", Root: "root"}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind.String() = %q, want %q", got, want)
		}
	}
}
