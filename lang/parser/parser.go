// Package parser implements a Pratt/recursive-descent parser that turns a
// token stream into an index-based AST (lang/ast), with panic-mode error
// recovery (spec §4.2).
package parser

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
)

// state is the parser's diagnostic state machine (spec §4.2 / §7): OK is the
// normal state; on the first error within a statement the parser moves to
// ERROR (further errors in the same statement are recorded but not
// reported); a hard syntax error unwinds (via Go panic/recover). Inside a
// block it skips to the enclosing '}', the next 'fun' or EOF and continues
// with the next statement; at top level it enters PANIC, synchronizes on the
// next 'fun' keyword or EOF, and returns to OK via SYNCED.
type state uint8

const (
	stateOK state = iota
	stateError
	statePanic
	stateSynced
)

// Parse parses a single source file into an AST. The returned error, if
// non-nil, is a scanner.ErrorList accumulating every diagnostic seen; no
// partial results should be passed to the resolver when err != nil (spec
// §7).
func Parse(filename string, toks *lexer.Tokens) (*ast.Tree, error) {
	p := &parser{toks: toks, tree: ast.NewTree(), filename: filename}
	p.advance()
	p.parseFile()
	p.errors.Sort()
	return p.tree, p.errors.Err()
}

var errPanicMode = fmt.Errorf("parser panic mode")

type parser struct {
	filename string
	toks     *lexer.Tokens
	tree     *ast.Tree
	errors   scanner.ErrorList

	pos   int // index of current token in toks.Tokens
	tok   token.Kind
	state state

	// currentFunction is the index of the FunctionDef node currently being
	// parsed, or 0 if at top level; used to detect 'return' outside a
	// function body (spec §4.2).
	currentFunction int
}

func (p *parser) advance() {
	p.pos++
	if p.pos >= len(p.toks.Tokens) {
		p.pos = len(p.toks.Tokens) - 1
	}
	p.tok = p.toks.Tokens[p.pos].Kind
}

func (p *parser) errorf(tokI int, format string, args ...interface{}) {
	if p.state != stateOK {
		// first-error-per-statement: suppress the diagnostic but keep going
		return
	}
	p.state = stateError
	pos := lexer.Position(p.toks, tokI)
	p.errors.Add(gotoken.Position{Filename: p.filename, Line: pos.Line, Column: pos.Col},
		fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches want, else reports an
// error and enters panic mode.
func (p *parser) expect(want token.Kind) int {
	if p.tok != want {
		p.errorf(p.pos, "expected %s, got %s", want.GoString(), p.describeCurrent())
		panic(errPanicMode)
	}
	i := p.pos
	p.advance()
	return i
}

func (p *parser) describeCurrent() string {
	if p.tok == token.IDENT || p.tok == token.NUMBER || p.tok == token.STRING {
		return lexer.Lexeme(p.toks, p.pos)
	}
	return p.tok.GoString()
}

// synchronize advances tokens until the next 'fun' keyword or EOF; it is the
// top-level sync point (statements inside a block recover in
// parseStatementRecovering).
func (p *parser) synchronize() {
	p.state = statePanic
	for p.tok != token.FUN && p.tok != token.EOF {
		p.advance()
	}
	p.state = stateSynced
}

func (p *parser) parseFile() {
	for p.tok != token.EOF {
		i := p.parseTopLevelRecovering()
		if i != 0 {
			p.tree.TopLevel = append(p.tree.TopLevel, i)
		}
		p.state = stateOK
	}
}

func (p *parser) parseTopLevelRecovering() (i int) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			i = 0
		}
	}()
	return p.parseTopLevel()
}

func (p *parser) parseTopLevel() int {
	switch p.tok {
	case token.FUN:
		return p.parseFunctionDecl()
	case token.VAR:
		return p.parseVarDecl()
	default:
		p.errorf(p.pos, "expected a top-level declaration, got %s", p.describeCurrent())
		panic(errPanicMode)
	}
}

func (p *parser) parseFunctionDecl() int {
	fn := p.tree.Reserve()
	n := p.tree.Node(fn)
	n.Kind = ast.FunctionDef
	p.expect(token.FUN)
	n.MainTokenI = p.expect(token.IDENT)

	prevFn := p.currentFunction
	p.currentFunction = fn

	p.expect(token.LPAREN)
	var params []int
	if p.tok != token.RPAREN {
		params = append(params, p.parseParam())
		for p.tok == token.COMMA {
			p.advance()
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN)

	paramsList := p.tree.Add(ast.Node{Kind: ast.List, Children: params})
	n = p.tree.Node(fn)
	n.Lhs = paramsList

	extra := ast.Extra{}
	if p.tok == token.COLON {
		p.advance()
		extra.ReturnTypeI = p.parseType()
	}
	n = p.tree.Node(fn)
	n.ExtraDataI = p.tree.AddExtra(extra)

	body := p.parseBlock()
	n = p.tree.Node(fn)
	n.Rhs = body

	p.currentFunction = prevFn
	return fn
}

func (p *parser) parseParam() int {
	mainTok := p.expect(token.IDENT)
	p.expect(token.COLON)
	typeI := p.parseType()
	return p.tree.Add(ast.Node{Kind: ast.FunctionParam, MainTokenI: mainTok, Lhs: typeI})
}

func (p *parser) parseType() int {
	mainTok := p.expect(token.IDENT)
	n := p.tree.Add(ast.Node{Kind: ast.Type, MainTokenI: mainTok})
	for p.tok == token.DOT {
		p.advance()
		part := p.expect(token.IDENT)
		n = p.tree.Add(ast.Node{Kind: ast.Type, MainTokenI: part, Lhs: n})
	}
	return n
}

func (p *parser) parseBlock() int {
	p.expect(token.LBRACE)
	var stmts []int
	for p.tok != token.RBRACE && p.tok != token.EOF {
		prevState := p.state
		stmts = append(stmts, p.parseStatementRecovering())
		p.state = prevState
	}
	p.expect(token.RBRACE)
	return p.tree.Add(ast.Node{Kind: ast.List, Children: stmts})
}

func (p *parser) parseStatementRecovering() (i int) {
	p.state = stateOK
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			// resynchronize on the closing brace of the current block, the next
			// 'fun' or EOF; the rest of the broken statement is skipped.
			for p.tok != token.RBRACE && p.tok != token.FUN && p.tok != token.EOF {
				p.advance()
			}
			i = p.tree.Add(ast.Node{Kind: ast.None, Flags: ast.FlagBad})
		}
	}()
	return p.parseStatement()
}

func (p *parser) parseStatement() int {
	switch p.tok {
	case token.WHILE:
		return p.parseWhile()
	case token.VAR:
		return p.parseVarDecl()
	default:
		return p.parseAssignmentOrExpr()
	}
}

func (p *parser) parseWhile() int {
	mainTok := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return p.tree.Add(ast.Node{Kind: ast.WhileLoop, MainTokenI: mainTok, Lhs: cond, Rhs: body})
}

func (p *parser) parseVarDecl() int {
	p.expect(token.VAR)
	mainTok := p.expect(token.IDENT)
	extra := ast.Extra{}
	if p.tok == token.COLON {
		p.advance()
		extra.DeclaredTypeI = p.parseType()
	}
	var rhs int
	if p.tok == token.EQ {
		p.advance()
		rhs = p.parseExpr()
	}
	extraI := p.tree.AddExtra(extra)
	return p.tree.Add(ast.Node{Kind: ast.VarDef, MainTokenI: mainTok, Rhs: rhs, ExtraDataI: extraI})
}

// parseAssignmentOrExpr implements statement := assignment, where assignment
// := expression ('=' expression)?. The lvalue check (spec §4.2) is performed
// after the fact since the parser cannot know ahead of time whether the LHS
// denotes a variable.
func (p *parser) parseAssignmentOrExpr() int {
	lhs := p.parseExpr()
	if p.tok != token.EQ {
		return lhs
	}
	eqTok := p.pos
	p.advance()
	rhs := p.parseExpr()

	if p.tree.Node(lhs).Kind != ast.VarRef {
		p.errorf(eqTok, "target is not an lvalue")
	}
	return p.tree.Add(ast.Node{Kind: ast.Assignment, MainTokenI: eqTok, Lhs: lhs, Rhs: rhs})
}
