// Package parser implements the syntax analysis for the robot DSL.
// It is a recursive-descent parser that pulls tokens lazily from the lexer,
// holding only the current token plus an on-demand lookahead.
package parser

import (
	"robo-lang/internal/ast"
	"robo-lang/internal/diag"
	"robo-lang/internal/lexer"
	"robo-lang/internal/prepro"
	"robo-lang/internal/span"
	"robo-lang/internal/token"
	"strconv"
)

// Parser performs syntax analysis on the token stream of a single lexer.
// Parsing stops at the first error.
type Parser struct {
	lex  *lexer.Lexer
	tok  token.Token // current token, not yet consumed
	prev token.Token // most recently consumed token

	funcs     *ast.FuncTable
	funcDepth int
	warnings  []diag.Diagnostic
}

// New creates a parser reading from lex.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex, funcs: ast.NewFuncTable()}
}

// ParseString strips comments from src, then parses it as a program.
func ParseString(src, filename string) (*ast.Program, []diag.Diagnostic, error) {
	p := New(lexer.New(prepro.Filter(src), filename))
	prog, err := p.ParseProgram()
	return prog, p.Warnings(), err
}

// Warnings returns the non-fatal diagnostics collected so far.
func (p *Parser) Warnings() []diag.Diagnostic {
	return p.warnings
}

// ParseProgram parses the whole input as the program block. Anything left
// over once no further statement can start is an UnexpectedToken error.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	start := p.tok.Span.Start

	body := &ast.BlockStmt{}
	for startsStmt(p.tok.Kind) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body.Stmts = append(body.Stmts, stmt)
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}

	body.Span = span.Span{Start: start, End: p.prevEnd()}
	return &ast.Program{
		NodeBase: ast.NodeBase{Span: body.Span},
		Body:     body,
		Funcs:    p.funcs,
	}, nil
}

// ---- navigation helpers ----

// advance consumes the current token and pulls the next one from the lexer.
func (p *Parser) advance() error {
	p.prev = p.tok
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) check(kind token.Kind) bool {
	return p.tok.Kind == kind
}

// expect checks the current token's kind, fails with UnexpectedToken
// otherwise, and advances. It returns the consumed token.
func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if !p.check(kind) {
		return p.tok, p.unexpected(kindDescription(kind))
	}
	tok := p.tok
	if kind == token.EOF {
		// nothing to pull after the end of input
		p.prev = tok
		return tok, nil
	}
	return tok, p.advance()
}

func (p *Parser) unexpected(want string) *diag.Diagnostic {
	return diag.Errorf(diag.UnexpectedToken, p.tok.Span,
		"expected %s, got %s", want, p.tok.Describe())
}

func (p *Parser) warn(code string, s span.Span, format string, args ...interface{}) {
	p.warnings = append(p.warnings, diag.Warningf(code, s, format, args...))
}

func kindDescription(kind token.Kind) string {
	switch kind {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return "identifier"
	case token.TYPE:
		return "type name"
	case token.SENSOR_POS:
		return "sensor position"
	default:
		return "'" + kind.String() + "'"
	}
}

// startsStmt reports whether a statement can begin with kind.
func startsStmt(kind token.Kind) bool {
	switch kind {
	case token.LBRACE, token.KW_VAR, token.IDENT, token.KW_IF, token.KW_WHILE,
		token.KW_FOR, token.COMMAND, token.KW_FUNC, token.KW_RETURN, token.KW_PRINTLN:
		return true
	}
	return false
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tok.Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_VAR:
		return p.parseVarDecl()
	case token.IDENT:
		return p.parseIdentStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.COMMAND:
		return p.parseCommandStmt()
	case token.KW_FUNC:
		return p.parseFuncDecl()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_PRINTLN:
		return p.parsePrintStmt()
	default:
		return nil, p.unexpected("statement")
	}
}

// parseBlock parses: { stmt { stmt } }
func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	start, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStmt{}

	for !p.check(token.RBRACE) {
		if p.check(token.EOF) {
			return nil, p.unexpected("'}'")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if len(block.Stmts) == 0 {
		return nil, diag.Errorf(diag.EmptyBlock, span.Join(start.Span, p.tok.Span),
			"block must contain at least one statement")
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	block.Span = p.makeSpan(start.Span.Start)
	return block, nil
}

// parseVarDecl parses: var IDENT : TYPE [ = expr ] ;
func (p *Parser) parseVarDecl() (*ast.VarDeclStmt, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	stmt := &ast.VarDeclStmt{Name: nameTok.Lexeme, Type: typ}

	if p.check(token.ASSIGN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if stmt.Init, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt, nil
}

func (p *Parser) parseType() (ast.Type, error) {
	tok, err := p.expect(token.TYPE)
	if err != nil {
		return ast.TypeVoid, err
	}
	typ, _ := ast.LookupType(tok.Lexeme)
	return typ, nil
}

// parseIdentStmt distinguishes a call statement from an assignment by
// peeking one token past the identifier.
func (p *Parser) parseIdentStmt() (ast.Stmt, error) {
	next, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if next.Kind == token.LPAREN {
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		if p.check(token.SEMICOLON) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return &ast.ExprStmt{
			StmtBase: makeStmtBase(call.Span.Start, p.prevEnd()),
			Expr:     call,
		}, nil
	}
	return p.parseAssign()
}

// parseAssign parses: IDENT = expr ;
func (p *Parser) parseAssign() (*ast.AssignStmt, error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.AssignStmt{
		StmtBase: makeStmtBase(nameTok.Span.Start, p.prevEnd()),
		Name:     nameTok.Lexeme,
		Value:    value,
	}, nil
}

// parseIfStmt parses: if ( expr ) block [ else block ]
func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	start := p.tok
	cond, err := p.parseKeywordCondition()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Condition: cond}
	if stmt.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	if p.check(token.KW_ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if stmt.ElseBody, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt, nil
}

// parseWhileStmt parses: while ( expr ) block
func (p *Parser) parseWhileStmt() (*ast.WhileStmt, error) {
	start := p.tok
	cond, err := p.parseKeywordCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}, nil
}

// parseKeywordCondition consumes the leading keyword and a parenthesized
// condition.
func (p *Parser) parseKeywordCondition() (ast.Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseForStmt parses: for IDENT = expr to expr block
func (p *Parser) parseForStmt() (*ast.ForStmt, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	stmt := &ast.ForStmt{VarName: nameTok.Lexeme}
	if stmt.Start, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_TO); err != nil {
		return nil, err
	}
	if stmt.End, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if stmt.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt, nil
}

// parseCommandStmt parses: COMMAND ( ) ;
func (p *Parser) parseCommandStmt() (*ast.CommandStmt, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	for _, kind := range []token.Kind{token.LPAREN, token.RPAREN, token.SEMICOLON} {
		if _, err := p.expect(kind); err != nil {
			return nil, err
		}
	}
	return &ast.CommandStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Name:     start.Lexeme,
	}, nil
}

// parseFuncDecl parses: func IDENT ( [ param { , param } ] ) [ TYPE ] block
//
// The signature goes into the function table before the body is parsed, so
// the body may call the function itself.
func (p *Parser) parseFuncDecl() (*ast.FuncDecl, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	decl := &ast.FuncDecl{Name: nameTok.Lexeme}

	if decl.Params, err = p.parseParamList(); err != nil {
		return nil, err
	}
	if p.check(token.TYPE) {
		if decl.Result, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	if p.funcs.Declare(decl) {
		p.warn(diag.WarnFuncRedeclared, nameTok.Span,
			"function %q redeclared; the later declaration wins", decl.Name)
	}

	p.funcDepth++
	decl.Body, err = p.parseBlock()
	p.funcDepth--
	if err != nil {
		return nil, err
	}

	decl.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return decl, nil
}

// parseParamList parses: ( [ IDENT [:] TYPE { , IDENT [:] TYPE } ] )
func (p *Parser) parseParamList() ([]ast.Param, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	if p.check(token.RPAREN) {
		return params, p.advance()
	}

	for {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if p.check(token.COLON) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{
			Span: p.makeSpan(nameTok.Span.Start),
			Name: nameTok.Lexeme,
			Type: typ,
		})

		if !p.check(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

// parseReturnStmt parses: return expr ;
func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	start := p.tok
	if p.funcDepth == 0 {
		p.warn(diag.WarnReturnOutsideFunc, start.Span,
			"return outside a function ends the enclosing program block")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Value:    value,
	}, nil
}

// parsePrintStmt parses: Println ( expr ) ;
func (p *Parser) parsePrintStmt() (*ast.PrintStmt, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for _, kind := range []token.Kind{token.RPAREN, token.SEMICOLON} {
		if _, err := p.expect(kind); err != nil {
			return nil, err
		}
	}
	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Value:    value,
	}, nil
}

// ============================================================
// Expression parsing (lowest to highest precedence)
// ============================================================

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

// binaryLevel parses a left-associative chain of the given operators over
// operands produced by next.
func (p *Parser) binaryLevel(next func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for matches(p.tok.Kind, ops) {
		op := p.tok.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = newBinary(op, left, right)
	}
	return left, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.binaryLevel(p.parseAnd, token.OR)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.binaryLevel(p.parseNot, token.AND)
}

// parseNot parses: ! not | rel
func (p *Parser) parseNot() (ast.Expr, error) {
	if !p.check(token.BANG) {
		return p.parseRel()
	}
	return p.parsePrefix(p.parseNot)
}

// parseRel parses: add [ relop add ]. Comparisons do not chain.
func (p *Parser) parseRel() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if !p.tok.Kind.IsRelational() {
		return left, nil
	}
	op := p.tok.Kind
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	return newBinary(op, left, right), nil
}

func (p *Parser) parseAdd() (ast.Expr, error) {
	return p.binaryLevel(p.parseMul, token.PLUS, token.MINUS)
}

func (p *Parser) parseMul() (ast.Expr, error) {
	return p.binaryLevel(p.parseUnary, token.STAR, token.SLASH)
}

// parseUnary parses: ( + | - | ! ) unary | primary
func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.tok.Kind {
	case token.PLUS, token.MINUS, token.BANG:
		return p.parsePrefix(p.parseUnary)
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrefix(operand func() (ast.Expr, error)) (ast.Expr, error) {
	opTok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	x, err := operand()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{
		ExprBase: makeExprBase(opTok.Span.Start, x.GetSpan().End),
		Op:       opTok.Kind,
		Operand:  x,
	}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.tok
	base := makeExprBase(tok.Span.Start, tok.Span.End)

	switch tok.Kind {
	case token.INT:
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, diag.Errorf(diag.UnexpectedToken, tok.Span,
				"integer literal out of range: %s", tok.Lexeme)
		}
		return &ast.IntLiteral{ExprBase: base, Value: val}, p.advance()

	case token.STRING:
		return &ast.StringLiteral{ExprBase: base, Value: tok.Lexeme}, p.advance()

	case token.BOOL:
		return &ast.BoolLiteral{ExprBase: base, Value: tok.Lexeme == "true"}, p.advance()

	case token.KW_SENSOR:
		return p.parseSensor()

	case token.KW_SCAN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		for _, kind := range []token.Kind{token.LPAREN, token.RPAREN} {
			if _, err := p.expect(kind); err != nil {
				return nil, err
			}
		}
		return &ast.ScanExpr{ExprBase: makeExprBase(tok.Span.Start, p.prevEnd())}, nil

	case token.IDENT:
		next, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if next.Kind == token.LPAREN {
			return p.parseCall()
		}
		return &ast.IdentExpr{ExprBase: base, Name: tok.Lexeme}, p.advance()

	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.unexpected("expression")
	}
}

// parseSensor parses: sensor . SENSOR_POS
func (p *Parser) parseSensor() (*ast.SensorExpr, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	pos, err := p.expect(token.SENSOR_POS)
	if err != nil {
		return nil, err
	}
	return &ast.SensorExpr{
		ExprBase: makeExprBase(start.Span.Start, p.prevEnd()),
		Position: pos.Lexeme,
	}, nil
}

// parseCall parses: IDENT ( [ expr { , expr } ] )
func (p *Parser) parseCall() (*ast.CallExpr, error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Name: nameTok.Lexeme}

	if !p.check(token.RPAREN) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.check(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	call.ExprBase = makeExprBase(nameTok.Span.Start, p.prevEnd())
	return call, nil
}

// ============================================================
// Helpers
// ============================================================

func matches(kind token.Kind, set []token.Kind) bool {
	for _, k := range set {
		if kind == k {
			return true
		}
	}
	return false
}

func newBinary(op token.Kind, left, right ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Join(left.GetSpan(), right.GetSpan())}},
		Op:       op,
		Left:     left,
		Right:    right,
	}
}

func (p *Parser) prevEnd() span.Position {
	if p.prev.Span.End.IsValid() {
		return p.prev.Span.End
	}
	return p.tok.Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
