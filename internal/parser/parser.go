// Package parser implements CSL's recursive-descent parser with an
// explicit precedence-climbing pass for expressions.
//
// Grounded on the original implementation's parse.py: the grammar (parse,
// _parse_func_or_def, _parse_compound_stmt, _parse_stmt, _parse_expr,
// _parse_simple_expr, _parse_decl) and the operator/value-stack climbing
// algorithm with its maxpred lvalue check are ported statement for
// statement. The token-buffering style (a single pending lookahead token,
// match/forceMatch/matchNoGet helpers) is adapted from
// CWBudde-go-dws/internal/parser/cursor.go's TokenCursor, simplified to
// the one-token lookahead this grammar actually needs.
package parser

import (
	"fmt"

	"github.com/flipboards/cslc/internal/ast"
	"github.com/flipboards/cslc/internal/cslvalue"
	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/internal/lexer"
	"github.com/flipboards/cslc/internal/operator"
	"github.com/flipboards/cslc/pkg/token"
)

// Parser turns a token stream into an ast.Node tree.
type Parser struct {
	lex    *lexer.Lexer
	source string
	file   string

	cur  token.Token
	next token.Token

	errs []*errors.CompilerError
}

// New constructs a Parser reading from l. source and file are used only
// for error reporting.
func New(l *lexer.Lexer, source, file string) *Parser {
	p := &Parser{lex: l, source: source, file: file}
	p.next = l.NextToken()
	return p
}

// Errors returns every ParseErr accumulated while parsing (in addition to
// any SynErr the underlying lexer collected).
func (p *Parser) Errors() []*errors.CompilerError {
	return append(p.lex.Errors(), p.errs...)
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errs = append(p.errs, errors.New(errors.ParseErr, pos, fmt.Sprintf(format, args...), p.source, p.file))
}

// advance consumes the pending token, making it current, and buffers the
// next one.
func (p *Parser) advance() token.Token {
	p.cur = p.next
	p.next = p.lex.NextToken()
	return p.cur
}

func (p *Parser) match(tt token.Type) bool {
	if p.next.Type == tt {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchNoGet(tt token.Type) bool { return p.next.Type == tt }

func (p *Parser) forceMatch(tt token.Type) bool {
	if p.match(tt) {
		return true
	}
	p.errorf(p.next.Pos, "expected %s, got %s %q", tt, p.next.Type, p.next.Literal)
	return false
}

// peekOperator returns the Operator the pending OP token denotes, if any.
func (p *Parser) peekOperator() (operator.Operator, bool) {
	if p.next.Type != token.OP {
		return 0, false
	}
	return operator.Lookup(p.next.Literal)
}

func (p *Parser) matchOp(op operator.Operator) bool {
	if cur, ok := p.peekOperator(); ok && cur == op {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) forceMatchOp(op operator.Operator) bool {
	if p.matchOp(op) {
		return true
	}
	p.errorf(p.next.Pos, "expected operator %s, got %q", op, p.next.Literal)
	return false
}

// ParseProgram parses an entire translation unit.
func (p *Parser) ParseProgram() *ast.Node {
	root := ast.New(ast.Root, token.Position{Line: 1, Column: 1})

	for {
		switch {
		case p.matchNoGet(token.DEF):
			root.Append(p.parseFuncOrDecl())
		case token.IsTypeKeyword(p.next.Type):
			decl := p.parseDecl()
			root.Append(decl)
			if !p.matchNoGet(token.EOF) {
				p.forceMatch(token.SEMICOLON)
			}
		case p.match(token.SEMICOLON):
			continue
		case p.match(token.EOF):
			return root
		default:
			p.errorf(p.next.Pos, "unexpected token %s %q", p.next.Type, p.next.Literal)
			p.advance()
			if p.next.Type == token.EOF {
				return root
			}
		}
	}
}

// parseFuncOrDecl parses `def NAME '(' param_list? ')' (':' TYPE)? (';' | block)`.
//
// A parameter or return type annotation is grammatically optional (`param
// := NAME (':' TYPE)?`); a return type left off defaults to void, but a
// parameter left off also defaults to void and is rejected later by the
// translator's EXPLICIT_TYPE check — void is not a valid argument type,
// only a valid implicit return type.
//
// The built head node lays its children out as
// [name, returnType, param1, param2, ...], each param itself a Name node
// carrying its declared type as a single TypeName child (see
// parseParamType).
func (p *Parser) parseFuncOrDecl() *ast.Node {
	pos := p.next.Pos
	p.forceMatch(token.DEF)
	p.forceMatch(token.IDENT)
	name := ast.NewName(p.cur.Pos, p.cur.Literal)

	p.forceMatchOp(operator.LBRA)
	var params []*ast.Node
	if !p.matchOp(operator.RBRA) {
		for {
			if !p.forceMatch(token.IDENT) {
				break
			}
			param := ast.NewName(p.cur.Pos, p.cur.Literal)
			param.Append(p.parseTypeAnnotation())
			params = append(params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.forceMatchOp(operator.RBRA)
	}

	retType := p.parseTypeAnnotation()

	head := ast.NewDecl(pos, ast.FuncDecl, name, retType)
	for _, param := range params {
		head.Append(param)
	}

	fn := ast.New(ast.Func, pos, head)
	if p.match(token.SEMICOLON) {
		return fn
	}
	fn.Append(p.parseCompoundStmt())
	return fn
}

// parseTypeAnnotation parses an optional `: TYPE` suffix, defaulting to
// void when absent.
func (p *Parser) parseTypeAnnotation() *ast.Node {
	pos := p.next.Pos
	if !p.match(token.COLON) {
		return ast.NewType(pos, cslvalue.Void)
	}
	if !token.IsTypeKeyword(p.next.Type) {
		p.errorf(p.next.Pos, "expected type, got %q", p.next.Literal)
		return ast.NewType(pos, cslvalue.Void)
	}
	p.advance()
	vt, _ := cslvalue.TypeByName(p.cur.Literal)
	return ast.NewType(p.cur.Pos, vt)
}

// parseCompoundStmt parses `{ decl|stmt ... }`.
func (p *Parser) parseCompoundStmt() *ast.Node {
	pos := p.next.Pos
	p.forceMatch(token.LBRACE)
	block := ast.New(ast.Block, pos)
	for {
		switch {
		case p.match(token.RBRACE):
			return block
		case p.matchNoGet(token.EOF):
			p.errorf(p.next.Pos, "expected '}' before end of input")
			return block
		case p.match(token.SEMICOLON):
			continue
		case p.matchNoGet(token.LBRACE):
			block.Append(p.parseCompoundStmt())
		case token.IsTypeKeyword(p.next.Type):
			block.Append(p.parseDecl())
		default:
			block.Append(p.parseStmt())
		}
	}
}

// parseStmt parses a single statement.
func (p *Parser) parseStmt() *ast.Node {
	switch {
	case p.match(token.IF):
		pos := p.cur.Pos
		p.forceMatchOp(operator.LBRA)
		cond := p.parseExpr()
		p.forceMatchOp(operator.RBRA)
		then := p.parseStmt()
		n := ast.NewCtrl(pos, ast.CtrlIf, cond, then)
		if p.match(token.ELSE) {
			n.Append(p.parseStmt())
		}
		return n

	case p.match(token.WHILE):
		pos := p.cur.Pos
		p.forceMatchOp(operator.LBRA)
		cond := p.parseExpr()
		p.forceMatchOp(operator.RBRA)
		body := p.parseStmt()
		return ast.NewCtrl(pos, ast.CtrlWhile, cond, body)

	case p.match(token.FOR):
		pos := p.cur.Pos
		p.forceMatchOp(operator.LBRA)
		init := p.parseExpr()
		p.forceMatch(token.SEMICOLON)
		cond := p.parseExpr()
		p.forceMatch(token.SEMICOLON)
		post := p.parseExpr()
		p.forceMatchOp(operator.RBRA)
		body := p.parseStmt()
		return ast.NewCtrl(pos, ast.CtrlFor, init, cond, post, body)

	case p.match(token.BREAK):
		return ast.NewCtrl(p.cur.Pos, ast.CtrlBreak)

	case p.match(token.CONTINUE):
		return ast.NewCtrl(p.cur.Pos, ast.CtrlContinue)

	case p.match(token.RETURN):
		pos := p.cur.Pos
		if p.match(token.SEMICOLON) {
			return ast.NewCtrl(pos, ast.CtrlReturn)
		}
		n := ast.NewCtrl(pos, ast.CtrlReturn, p.parseExpr())
		p.forceMatch(token.SEMICOLON)
		return n

	case p.matchNoGet(token.LBRACE):
		return p.parseCompoundStmt()

	default:
		n := p.parseExpr()
		p.forceMatch(token.SEMICOLON)
		return n
	}
}

// parseExpr parses `simple_expr | postfix_expr '=' expr`: the assignment
// level, which sits above the left-associative precedence climb so the
// right operand can itself contain another assignment (right-assoc).
func (p *Parser) parseExpr() *ast.Node {
	lhs, maxpred := p.parseSimpleExpr()

	if op, ok := p.peekOperator(); ok && operator.Arity(op) == 2 && operator.Assoc(op) == operator.Right {
		if maxpred > 0 {
			// maxpred is the precedence of the tightest binary operator the
			// climb applied to lhs; any real binary operator (maxpred>0,
			// since those all sit below the unary-prefix/postfix band)
			// means lhs is not a bare lvalue expression (e.g. `a+b = c`).
			p.errorf(p.next.Pos, "lvalue required for assignment")
		}
		assignPos := p.next.Pos
		p.advance()
		rhs := p.parseExpr()
		return ast.NewOp(assignPos, op, lhs, rhs)
	}
	return lhs
}

// parseSimpleExpr runs the precedence-climbing loop over unary/postfix
// operands, returning the built expression and the tightest operator
// precedence seen (used by parseExpr's lvalue check).
func (p *Parser) parseSimpleExpr() (*ast.Node, int) {
	type frame struct {
		op  operator.Operator
		has bool
	}
	opStack := []frame{{}}
	var varStack []*ast.Node
	maxpred := 0

	for {
		varStack = append(varStack, p.parseUnaryExpr())

		curOp, ok := p.peekOperator()
		if !ok {
			break
		}
		if operator.Arity(curOp) == 2 && operator.Assoc(curOp) == operator.Right {
			break // assignment: leave for parseExpr
		}
		if curOp == operator.RBRA || curOp == operator.RSUB {
			break
		}

		p.advance()
		if operator.Arity(curOp) == 1 || operator.Assoc(curOp) != operator.Left {
			p.errorf(p.cur.Pos, "incorrect operator in expression: %s", curOp)
		}

		curPred := operator.Precedence(curOp)
		if curPred > maxpred {
			maxpred = curPred
		}

		top := opStack[len(opStack)-1]
		topPred := 0
		if top.has {
			topPred = operator.Precedence(top.op)
		}

		if curPred > topPred {
			opStack = append(opStack, frame{curOp, true})
		} else {
			// reduce every stacked operator that binds at least as tightly
			// as curOp (left-associative folding) before pushing curOp.
			for {
				top = opStack[len(opStack)-1]
				topPred = 0
				if top.has {
					topPred = operator.Precedence(top.op)
				}
				if curPred > topPred {
					break
				}
				n := len(varStack)
				rv, lv := varStack[n-1], varStack[n-2]
				varStack = varStack[:n-2]
				varStack = append(varStack, ast.NewOp(lv.Pos, opStack[len(opStack)-1].op, lv, rv))
				opStack = opStack[:len(opStack)-1]
			}
			opStack = append(opStack, frame{curOp, true})
		}
	}

	for len(opStack) > 1 {
		n := len(varStack)
		rv, lv := varStack[n-1], varStack[n-2]
		varStack = varStack[:n-2]
		varStack = append(varStack, ast.NewOp(lv.Pos, opStack[len(opStack)-1].op, lv, rv))
		opStack = opStack[:len(opStack)-1]
	}

	if len(opStack) != 1 || len(varStack) != 1 {
		p.errorf(p.next.Pos, "binary operator mismatch")
		if len(varStack) == 0 {
			return ast.New(ast.None, p.next.Pos), maxpred
		}
	}
	return varStack[len(varStack)-1], maxpred
}

// parseUnaryExpr parses `unary_expr = postfix_expr | (++|--|+|-|not) unary_expr`.
func (p *Parser) parseUnaryExpr() *ast.Node {
	var prefixOps []operator.Operator

loop:
	for {
		switch {
		case p.matchOp(operator.INC):
			prefixOps = append(prefixOps, operator.INC)
		case p.matchOp(operator.DEC):
			prefixOps = append(prefixOps, operator.DEC)
		case p.matchOp(operator.ADD):
			prefixOps = append(prefixOps, operator.PLUS)
		case p.matchOp(operator.SUB):
			prefixOps = append(prefixOps, operator.MINUS)
		case p.matchOp(operator.NOT):
			prefixOps = append(prefixOps, operator.NOT)
		default:
			break loop
		}
	}

	node := p.parsePrimaryAndPostfix()

	// apply prefix operators innermost-first (closest to the operand binds
	// tightest, matching the original's nested ext_child construction).
	for i := len(prefixOps) - 1; i >= 0; i-- {
		node = ast.NewOp(node.Pos, prefixOps[i], node)
	}
	return node
}

func (p *Parser) parsePrimaryAndPostfix() *ast.Node {
	var node *ast.Node

	switch {
	case p.match(token.IDENT):
		node = ast.NewName(p.cur.Pos, p.cur.Literal)
	case p.match(token.INT), p.match(token.FLOAT):
		node = p.parseNumberLiteral()
	case p.matchOp(operator.LBRA):
		node = p.parseExpr()
		p.forceMatchOp(operator.RBRA)
	default:
		p.errorf(p.next.Pos, "unrecognized token: %q", p.next.Literal)
		pos := p.next.Pos
		p.advance()
		return ast.New(ast.None, pos)
	}

	for {
		switch {
		case p.matchOp(operator.LSUB):
			idx := p.parseExpr()
			p.forceMatchOp(operator.RSUB)
			node = ast.NewOp(node.Pos, operator.LSUB, node, idx)

		case p.matchOp(operator.LBRA):
			call := ast.New(ast.Call, node.Pos, node)
			if !p.matchOp(operator.RBRA) {
				for {
					call.Append(p.parseExpr())
					if !p.match(token.COMMA) {
						break
					}
				}
				p.forceMatchOp(operator.RBRA)
			}
			node = call

		case p.matchOp(operator.MBER):
			pos := p.cur.Pos
			p.forceMatch(token.IDENT)
			node = ast.NewOp(pos, operator.MBER, node, ast.NewName(p.cur.Pos, p.cur.Literal))

		case p.matchOp(operator.INC):
			node = ast.NewOp(node.Pos, operator.POSTINC, node)

		case p.matchOp(operator.DEC):
			node = ast.NewOp(node.Pos, operator.POSTDEC, node)

		default:
			return node
		}
	}
}

func (p *Parser) parseNumberLiteral() *ast.Node {
	v, err := cslvalue.Parse(p.cur.Literal)
	if err != nil {
		p.errorf(p.cur.Pos, "%s", err)
		return ast.New(ast.None, p.cur.Pos)
	}
	return ast.NewVal(p.cur.Pos, v)
}

// parseDecl parses `TYPE decl_init (',' decl_init)*`.
func (p *Parser) parseDecl() *ast.Node {
	pos := p.next.Pos
	p.advance() // consume the type keyword (already verified by the caller)

	vt, ok := cslvalue.TypeByName(p.cur.Literal)
	if !ok {
		p.errorf(p.cur.Pos, "unknown type %q", p.cur.Literal)
	}
	decl := ast.NewDecl(pos, ast.VarDecl, ast.NewType(p.cur.Pos, vt))

	for {
		elem := ast.NewDecl(p.next.Pos, ast.DeclElem, p.parseDeclarator())
		if p.matchOp(operator.ASN) {
			elem.Append(p.parseInitializer())
		}
		decl.Append(elem)
		if !p.match(token.COMMA) {
			break
		}
	}
	return decl
}

// parseDeclarator parses `NAME ('[' expr ']')*`, attaching each dimension
// expression as a child of the Name node.
func (p *Parser) parseDeclarator() *ast.Node {
	p.forceMatch(token.IDENT)
	name := ast.NewName(p.cur.Pos, p.cur.Literal)
	for p.matchOp(operator.LSUB) {
		dim := p.parseExpr()
		name.Append(dim)
		p.forceMatchOp(operator.RSUB)
	}
	return name
}

// parseInitializer parses `expr | '{' initializer_list '}'`.
func (p *Parser) parseInitializer() *ast.Node {
	if p.match(token.LBRACE) {
		pos := p.cur.Pos
		list := ast.New(ast.List, pos)
		for {
			list.Append(p.parseInitializer())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.forceMatch(token.RBRACE)
		return list
	}
	return p.parseExpr()
}
