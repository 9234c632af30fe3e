// Package ast defines CSL's abstract syntax tree: a tagged variant node
// with an ordered child sequence, following the original implementation's
// ast.py shape (an AST class carrying a type tag, an optional value, and a
// nodes slice) rather than CWBudde-go-dws's interface-per-node-type AST —
// the tagged-variant shape is what lets the translator pattern-match on
// Kind the way translate.py pattern-matches on ASTType.
package ast

import (
	"fmt"
	"strings"

	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/operator"
	"github.com/flipboards/cslc/pkg/token"
)

// Kind tags what a Node represents.
type Kind int

const (
	None Kind = iota
	Val       // literal constant; Value holds the cslvalue.Value
	Name      // identifier reference; Ident holds the spelling
	Call      // function call; Children[0] is the callee Name, rest are args
	Op        // operator application; Operator holds which one
	Ctrl      // control statement; the Ctrl field says which, Children hold its parts
	TypeName  // a builtin type keyword; ValType holds which
	Decl      // declaration; DeclKind distinguishes func/var/array/element
	Func      // function definition; Children[0] head, Children[1] body (if any)
	Block     // compound statement
	List      // brace-initializer list
	Root      // translation unit
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Val:
		return "val"
	case Name:
		return "name"
	case Call:
		return "call"
	case Op:
		return "op"
	case Ctrl:
		return "ctrl"
	case TypeName:
		return "type"
	case Decl:
		return "decl"
	case Func:
		return "func"
	case Block:
		return "block"
	case List:
		return "list"
	case Root:
		return "root"
	default:
		return "?"
	}
}

// DeclKind distinguishes the sub-shapes a Decl node can take.
type DeclKind int

const (
	NoDecl DeclKind = iota
	FuncDecl
	VarDecl
	ArrayDecl
	DeclElem
)

// CtrlKeyword distinguishes the sub-shapes a Ctrl node can take.
type CtrlKeyword int

const (
	NoCtrl CtrlKeyword = iota
	CtrlIf
	CtrlWhile
	CtrlFor
	CtrlBreak
	CtrlContinue
	CtrlReturn
)

// Node is a single AST node: a Kind tag, at most one scalar payload
// (selected by Kind), and an ordered list of children.
type Node struct {
	Kind Kind
	Pos  token.Position

	Value    cslvalue.Value    // Val
	Ident    string            // Name
	Operator operator.Operator // Op
	ValType  cslvalue.Type     // TypeName
	DeclKind DeclKind          // Decl
	Ctrl     CtrlKeyword       // Ctrl

	Children []*Node
}

// Append adds child to n's children and returns n for chaining.
func (n *Node) Append(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch n.Kind {
	case Val:
		fmt.Fprintf(sb, "val(%s)\n", n.Value)
	case Name:
		fmt.Fprintf(sb, "name(%s)\n", n.Ident)
	case Op:
		fmt.Fprintf(sb, "op(%s)\n", n.Operator)
	case TypeName:
		fmt.Fprintf(sb, "type(%s)\n", n.ValType)
	case Decl:
		fmt.Fprintf(sb, "decl(%v)\n", n.DeclKind)
	case Ctrl:
		fmt.Fprintf(sb, "ctrl(%v)\n", n.Ctrl)
	default:
		fmt.Fprintf(sb, "%s\n", n.Kind)
	}
	for _, c := range n.Children {
		c.write(sb, depth+1)
	}
}

// New constructs a leaf or parent node of the given kind at pos.
func New(kind Kind, pos token.Position, children ...*Node) *Node {
	return &Node{Kind: kind, Pos: pos, Children: children}
}

// NewVal constructs a Val node.
func NewVal(pos token.Position, v cslvalue.Value) *Node {
	return &Node{Kind: Val, Pos: pos, Value: v}
}

// NewName constructs a Name node.
func NewName(pos token.Position, ident string) *Node {
	return &Node{Kind: Name, Pos: pos, Ident: ident}
}

// NewOp constructs an Op node over its operand children.
func NewOp(pos token.Position, op operator.Operator, children ...*Node) *Node {
	return &Node{Kind: Op, Pos: pos, Operator: op, Children: children}
}

// NewType constructs a TypeName node.
func NewType(pos token.Position, t cslvalue.Type) *Node {
	return &Node{Kind: TypeName, Pos: pos, ValType: t}
}

// NewDecl constructs a Decl node of the given sub-kind.
func NewDecl(pos token.Position, dk DeclKind, children ...*Node) *Node {
	return &Node{Kind: Decl, Pos: pos, DeclKind: dk, Children: children}
}

// NewCtrl constructs a Ctrl node of the given sub-keyword.
func NewCtrl(pos token.Position, ck CtrlKeyword, children ...*Node) *Node {
	return &Node{Kind: Ctrl, Pos: pos, Ctrl: ck, Children: children}
}
