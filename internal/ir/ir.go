// Package ir defines CSL's three-address intermediate representation: the
// type lattice used inside a function body (scalar, pointer, array), the
// Identifier/Register addressing scheme, and the per-opcode-family
// Instruction shape a FunctionBlock is built from.
//
// Grounded on the original implementation's ir.py, ir/code.py, ir/types.py
// and ir/memory.py: Opcode keeps their exact integer groupings (so range
// tests like "code >= ADD && code < POW" used by the emitter still carve
// out the same opcode families), and Identifier/MemoryLoc mirror
// ir/memory.py's Identifier/MemoryLoc pair. The register table
// interleaving value registers and label markers (ir/memory.py's
// Block.registers) is kept because the emitter's predecessor numbering
// scans it by address.
package ir

import (
	"fmt"

	"github.com/flipboards/cslc/internal/cslvalue"
)

// Type is the IR-level type of a value: a scalar (cslvalue.Type), a
// *Pointer, or an *Array. The translator builds these while lowering CSL
// declarations and never needs more structure than this.
type Type interface {
	irType()
	String() string
}

// Scalar wraps a cslvalue.Type so it satisfies Type.
type Scalar cslvalue.Type

func (Scalar) irType()        {}
func (s Scalar) String() string { return cslvalue.Type(s).String() }

// Pointer is a pointer-to-Type, as produced by ALLOC and consumed by
// LOAD/STORE/GETPTR.
type Pointer struct{ Elem Type }

func (*Pointer) irType()        {}
func (p *Pointer) String() string { return p.Elem.String() + " *" }

// Array is a fixed-size array of Type, used for declarations with array
// dimensions.
type Array struct {
	Elem Type
	Size int
}

func (*Array) irType()        {}
func (a *Array) String() string { return fmt.Sprintf("[%d x %s]", a.Size, a.Elem) }

// MemoryLoc distinguishes a local register slot from a named global.
type MemoryLoc int

const (
	Local MemoryLoc = iota
	Global
)

// Identifier addresses a storage location: a numbered register within the
// current function (Local) or a named global (Global).
type Identifier struct {
	Loc   MemoryLoc
	Index int    // meaningful when Loc == Local
	Name  string // meaningful when Loc == Global
}

func (id Identifier) String() string {
	if id.Loc == Global {
		return "@" + id.Name
	}
	return fmt.Sprintf("%%%d", id.Index)
}

// Operand is either an *Identifier (a register/global reference) or a
// Const wrapping a cslvalue.Value (an immediate constant): the two operand kinds every
// Instruction field accepts.
type Operand interface {
	isOperand()
}

func (*Identifier) isOperand() {}

// Const wraps a compile-time constant so it satisfies Operand.
type Const struct {
	Value cslvalue.Value
}

func (Const) isOperand() {}

// Label names a branch target. Addr is filled in once the label is placed
// at a code index (see FunctionBlock.PlaceLabel); the emitter finds a
// label's predecessor number by scanning the register table for the entry
// whose Addr equals the following instruction's index.
type Label struct {
	Name string
	Addr int
}

// Opcode enumerates every three-address instruction. Numeric grouping
// mirrors ir/code.py exactly: arithmetic op codes occupy a contiguous
// range, comparisons another, so range checks translate 1:1.
type Opcode int

const (
	HLT Opcode = iota
	RET
	BR
	INVOKE

	ADD
	SUB
	MUL
	DIV
	REM
	POW
	AND
	OR
	XOR
	NOT

	ALLOC
	LOAD
	STORE
	GETPTR

	EXT
	TRUNC
	ITOF
	FTOI
	ITOP
	PTOI
	BITC

	EQ
	NE
	LT
	LE
	GT
	GE

	PHI
	CALL
	DECL
)

var opcodeNames = [...]string{
	"hlt", "ret", "br", "invoke",
	"add", "sub", "mul", "div", "rem", "pow", "and", "or", "xor", "not",
	"alloc", "load", "store", "getptr",
	"ext", "trunc", "itof", "ftoi", "itop", "ptoi", "bitc",
	"eq", "ne", "lt", "le", "gt", "ge",
	"phi", "call", "decl",
}

func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return "?"
	}
	return opcodeNames[op]
}

// IsArithmetic reports whether op is one of ADD..NOT (the binary/unary
// arithmetic and bitwise-logical family).
func (op Opcode) IsArithmetic() bool { return op >= ADD && op <= NOT }

// IsCast reports whether op is one of the EXT..BITC conversion opcodes.
func (op Opcode) IsCast() bool { return op >= EXT && op <= BITC }

// IsComparison reports whether op is one of EQ..GE.
func (op Opcode) IsComparison() bool { return op >= EQ && op <= GE }

// PhiEdge is one incoming value of a PHI instruction: the value if control
// arrived from Pred.
type PhiEdge struct {
	Value Operand
	Pred  *Label
}

// Instruction is a single three-address statement. Only the fields
// relevant to Op are populated; this mirrors the original's single IR
// namedtuple(code, ret, first, second) while giving each opcode family a
// named slot instead of overloading first/second positionally.
type Instruction struct {
	Op  Opcode
	Ret *Identifier // destination register, nil for HLT/RET/BR/STORE/void CALL

	A, B Operand // primary operands: arithmetic lhs/rhs, LOAD/STORE addr+value, cast src+origin

	Cond    Operand  // BR only: branch condition: nil means unconditional
	Targets []*Label // BR: [then,else] or [target]; GETPTR/CALL do not use this

	Indices []Operand // GETPTR: subscript chain
	Args    []Operand // CALL: argument list

	Callee   string // CALL: function name; INVOKE reserved for future use
	CastFrom Type   // cast opcodes: the source type
	CastTo   Type   // cast opcodes and ALLOC: the target/allocated type

	Edges []PhiEdge // PHI operands

	FuncDecl *FuncSignature // DECL on a function: declares without a body
	VarDecl  *GlobalDecl    // DECL on a variable: a global with its initializer
}

// FuncSignature is a function's calling-convention shape: name, parameter
// types in order, and return type.
type FuncSignature struct {
	Name     string
	ArgTypes []Type
	RetType  Type
}

// GlobalDecl is a global variable declaration with its compile-time
// initializer.
type GlobalDecl struct {
	Name    string
	Type    Type
	Init    cslvalue.Value
	IsArray bool
	Array   []cslvalue.Value // flattened, row-major, when IsArray
}

// RegisterEntry is one slot of a function's register table: either a
// typed value register or a label marker recording the code index it was
// placed at. The table is addressed by the same integer namespace as
// Identifier.Index (Local), exactly like ir/memory.py's interleaved
// Block.registers list, so the emitter can recover a branch target's
// predecessor number by finding which table slot is a label whose Addr
// equals a code index.
type RegisterEntry struct {
	IsLabel bool
	Type    Type   // meaningful when !IsLabel
	Label   *Label // meaningful when IsLabel
}

// FunctionBlock is a translated function body: its register table (values
// and labels interleaved) plus its linear instruction sequence.
type FunctionBlock struct {
	Sig       FuncSignature
	Registers []RegisterEntry
	Code      []Instruction
}

// NewFunctionBlock creates an empty block for sig.
func NewFunctionBlock(sig FuncSignature) *FunctionBlock {
	return &FunctionBlock{Sig: sig}
}

// NewRegister appends a fresh value register of type t and returns the
// Identifier addressing it.
func (f *FunctionBlock) NewRegister(t Type) *Identifier {
	idx := len(f.Registers)
	f.Registers = append(f.Registers, RegisterEntry{Type: t})
	return &Identifier{Loc: Local, Index: idx}
}

// NewLabel allocates a named label (not yet placed at any code index).
func (f *FunctionBlock) NewLabel(name string) *Label {
	return &Label{Name: name, Addr: -1}
}

// PlaceLabel records lbl as pointing at the instruction about to be
// appended (len(f.Code)) and adds a label marker to the register table so
// the emitter can find it by scanning.
func (f *FunctionBlock) PlaceLabel(lbl *Label) {
	lbl.Addr = len(f.Code)
	f.Registers = append(f.Registers, RegisterEntry{IsLabel: true, Label: lbl})
}

// Emit appends inst to the function's instruction sequence.
func (f *FunctionBlock) Emit(inst Instruction) {
	f.Code = append(f.Code, inst)
}

// TypeOf returns the type an operand evaluates to: a register's table
// entry, or a constant's own cslvalue.Type. Used by the emitter, which
// needs an operand's type to render it.
func (f *FunctionBlock) TypeOf(op Operand) Type {
	switch v := op.(type) {
	case *Identifier:
		if v.Loc == Local && v.Index < len(f.Registers) {
			return f.Registers[v.Index].Type
		}
		return nil
	case Const:
		return Scalar(v.Value.Type)
	default:
		return nil
	}
}

// Program is the fully translated compilation unit: global declarations,
// function bodies, and declared-only (no-body) function signatures, in
// the order the translator encountered them.
type Program struct {
	Globals      []*GlobalDecl
	Functions    []*FunctionBlock
	Declarations []*FuncSignature
}
