package parser

import (
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
)

// parseExpr parses a full expression via precedence climbing, per the
// grammar in spec §4.2: disjunction is the lowest-precedence binary level.
func (p *parser) parseExpr() int {
	return p.parseDisjunction()
}

func (p *parser) parseDisjunction() int {
	lhs := p.parseConjunction()
	for p.tok == token.PIPEPIPE {
		opTok := p.pos
		p.advance()
		rhs := p.parseConjunction()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseConjunction() int {
	lhs := p.parseEquality()
	for p.tok == token.AMPAMP {
		opTok := p.pos
		p.advance()
		rhs := p.parseEquality()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseEquality() int {
	lhs := p.parseComparison()
	for p.tok == token.EQEQ || p.tok == token.NEQ {
		opTok := p.pos
		p.advance()
		rhs := p.parseComparison()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseComparison() int {
	lhs := p.parseAdditive()
	for p.tok == token.LT || p.tok == token.LE || p.tok == token.GT || p.tok == token.GE {
		opTok := p.pos
		p.advance()
		rhs := p.parseAdditive()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseAdditive() int {
	lhs := p.parseMultiplicative()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		opTok := p.pos
		p.advance()
		rhs := p.parseMultiplicative()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseMultiplicative() int {
	lhs := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.PERCENT {
		opTok := p.pos
		p.advance()
		rhs := p.parseUnary()
		lhs = p.tree.Add(ast.Node{Kind: ast.Binary, MainTokenI: opTok, Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

func (p *parser) parseUnary() int {
	if p.tok == token.BANG || p.tok == token.MINUS {
		opTok := p.pos
		p.advance()
		rhs := p.parseUnary()
		return p.tree.Add(ast.Node{Kind: ast.Unary, MainTokenI: opTok, Rhs: rhs})
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() int {
	e := p.parsePrimary()
	for {
		switch p.tok {
		case token.LPAREN:
			e = p.parseCall(e)
		case token.DOT:
			p.advance()
			nameTok := p.expect(token.IDENT)
			e = p.tree.Add(ast.Node{Kind: ast.Navigation, MainTokenI: nameTok, Lhs: e})
		default:
			return e
		}
	}
}

func (p *parser) parseCall(fn int) int {
	p.expect(token.LPAREN)
	var args []int
	if p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	closeTok := p.expect(token.RPAREN)
	return p.tree.Add(ast.Node{Kind: ast.Call, MainTokenI: closeTok, Lhs: fn, Children: args})
}

func (p *parser) parsePrimary() int {
	switch p.tok {
	case token.NUMBER:
		return p.parseNumberLit()
	case token.STRING:
		return p.parseStringLit()
	case token.TRUE, token.FALSE:
		return p.parseBoolLit()
	case token.IDENT:
		mainTok := p.pos
		p.advance()
		return p.tree.Add(ast.Node{Kind: ast.VarRef, MainTokenI: mainTok})
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.IF:
		return p.parseIfExpr()
	case token.RETURN:
		return p.parseReturn()
	default:
		p.errorf(p.pos, "expected an expression, got %s", p.describeCurrent())
		panic(errPanicMode)
	}
}

func (p *parser) parseNumberLit() int {
	mainTok := p.pos
	value, overflowed := lexer.ParseIntLiteral(p.toks, mainTok)
	if overflowed {
		p.errorf(mainTok, "integer literal %q is out of range", lexer.Lexeme(p.toks, mainTok))
	}
	extra := p.tree.AddExtra(ast.Extra{IntValue: value, IsLong: lexer.HasLongSuffix(p.toks, mainTok)})
	p.advance()
	return p.tree.Add(ast.Node{Kind: ast.Number, MainTokenI: mainTok, ExtraDataI: extra})
}

func (p *parser) parseStringLit() int {
	mainTok := p.pos
	extra := p.tree.AddExtra(ast.Extra{StringValue: lexer.StringValue(p.toks, mainTok)})
	p.advance()
	return p.tree.Add(ast.Node{Kind: ast.String, MainTokenI: mainTok, ExtraDataI: extra})
}

func (p *parser) parseBoolLit() int {
	mainTok := p.pos
	var v int64
	if p.tok == token.TRUE {
		v = 1
	}
	extra := p.tree.AddExtra(ast.Extra{IntValue: v})
	p.advance()
	return p.tree.Add(ast.Node{Kind: ast.Bool, MainTokenI: mainTok, ExtraDataI: extra})
}

func (p *parser) parseIfExpr() int {
	mainTok := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	// an arm is either a braced block or a single expression, which is
	// wrapped in a one-statement List so both shapes look the same later
	body := func() int {
		if p.tok == token.LBRACE {
			return p.parseBlock()
		}
		e := p.parseExpr()
		return p.tree.Add(ast.Node{Kind: ast.List, Children: []int{e}})
	}
	thenBlock := body()

	var elseBlock int
	flags := ast.Flags(0)
	if p.tok == token.ELSE {
		p.advance()
		elseBlock = body()
		flags |= ast.FlagHasElse
	}

	te := p.tree.Add(ast.Node{Kind: ast.ThenElse, Lhs: thenBlock, Rhs: elseBlock})
	return p.tree.Add(ast.Node{Kind: ast.If, MainTokenI: mainTok, Lhs: cond, Rhs: te, Flags: flags})
}

func (p *parser) parseReturn() int {
	mainTok := p.expect(token.RETURN)
	if p.currentFunction == 0 {
		p.errorf(mainTok, "code outside of a function body")
	}
	var rhs int
	if maybeExprStart(p.tok) {
		rhs = p.parseExpr()
	}
	return p.tree.Add(ast.Node{Kind: ast.Return, MainTokenI: mainTok, Rhs: rhs})
}

func maybeExprStart(k token.Kind) bool {
	switch k {
	case token.NUMBER, token.STRING, token.TRUE, token.FALSE, token.IDENT,
		token.LPAREN, token.IF, token.RETURN, token.BANG, token.MINUS:
		return true
	default:
		return false
	}
}
