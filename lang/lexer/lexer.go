// Package lexer implements byte-accurate tokenization of the source
// language, producing a token stream and a line table for diagnostics.
package lexer

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"unicode/utf8"

	"github.com/gaultier/kotlinc-lite/lang/token"
)

// Tokens is the result of lexing a source file: the token stream (index 0 is
// a reserved dummy token, so every real token has a nonzero index) and the
// line table used to translate offsets to positions for diagnostics.
type Tokens struct {
	Src    []byte
	Lines  *token.LineTable
	Tokens []token.Token // index 0 is the dummy sentinel
}

// Lex tokenizes src fully and returns the token stream. A non-nil error is
// always a scanner.ErrorList; lexing never stops at the first error, since
// diagnostics accumulate across the whole file (matching the parser's and
// resolver's first-error-per-statement philosophy at the lexical level).
func Lex(filename string, src []byte) (*Tokens, error) {
	var l lexer
	l.src = src
	l.lines = token.NewLineTable(src)
	l.filename = filename
	l.cur = ' '
	l.off = 0
	l.roff = 0
	l.tokens = append(l.tokens, token.Token{Kind: token.ILLEGAL, Offset: 0}) // dummy index 0
	l.advanceRune()

	for {
		tok := l.scan()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	l.errors.Sort()
	return &Tokens{Src: src, Lines: l.lines, Tokens: l.tokens}, l.errors.Err()
}

type lexer struct {
	filename string
	src      []byte
	lines    *token.LineTable
	errors   scanner.ErrorList

	tokens []token.Token

	cur rune
	off int
	roff int
}

func (l *lexer) advanceRune() {
	if l.roff >= len(l.src) {
		l.off = len(l.src)
		l.cur = -1
		return
	}
	l.off = l.roff
	r, w := rune(l.src[l.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.src[l.roff:])
	}
	l.roff += w
	l.cur = r
}

func (l *lexer) peekByte() byte {
	if l.roff < len(l.src) {
		return l.src[l.roff]
	}
	return 0
}

func (l *lexer) errorf(offset int, format string, args ...interface{}) {
	pos := l.lines.Position(offset)
	l.errors.Add(gotoken.Position{Filename: l.filename, Line: pos.Line, Column: pos.Col}, fmt.Sprintf(format, args...))
}

func (l *lexer) advanceIf(b byte) bool {
	if l.cur == rune(b) {
		l.advanceRune()
		return true
	}
	return false
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.cur == ' ' || l.cur == '\t' || l.cur == '\n' || l.cur == '\r' || l.cur == ';':
			// ';' is an optional statement separator and carries no meaning
			l.advanceRune()
		case l.cur == '/' && l.peekByte() == '/':
			for l.cur != '\n' && l.cur != -1 {
				l.advanceRune()
			}
		case l.cur == '/' && l.peekByte() == '*':
			start := l.off
			l.advanceRune()
			l.advanceRune()
			closed := false
			for l.cur != -1 {
				if l.cur == '*' && l.peekByte() == '/' {
					l.advanceRune()
					l.advanceRune()
					closed = true
					break
				}
				l.advanceRune()
			}
			if !closed {
				l.errorf(start, "unterminated block comment")
			}
		default:
			return
		}
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func (l *lexer) scan() token.Token {
	l.skipWhitespaceAndComments()
	start := l.off

	switch {
	case l.cur == -1:
		return token.Token{Kind: token.EOF, Offset: start}

	case isLetter(l.cur):
		for isLetter(l.cur) || isDigit(l.cur) {
			l.advanceRune()
		}
		lit := string(l.src[start:l.off])
		return token.Token{Kind: token.LookupIdent(lit), Offset: start}

	case isDigit(l.cur):
		return l.scanNumber(start)

	case l.cur == '"':
		l.advanceRune()
		for l.cur != '"' && l.cur != -1 && l.cur != '\n' {
			l.advanceRune()
		}
		if l.cur != '"' {
			l.errorf(start, "unterminated string literal")
		} else {
			l.advanceRune()
		}
		return token.Token{Kind: token.STRING, Offset: start}

	default:
		cur := l.cur
		l.advanceRune()
		switch cur {
		case '+':
			return token.Token{Kind: token.PLUS, Offset: start}
		case '-':
			return token.Token{Kind: token.MINUS, Offset: start}
		case '*':
			return token.Token{Kind: token.STAR, Offset: start}
		case '/':
			return token.Token{Kind: token.SLASH, Offset: start}
		case '%':
			return token.Token{Kind: token.PERCENT, Offset: start}
		case '(':
			return token.Token{Kind: token.LPAREN, Offset: start}
		case ')':
			return token.Token{Kind: token.RPAREN, Offset: start}
		case '{':
			return token.Token{Kind: token.LBRACE, Offset: start}
		case '}':
			return token.Token{Kind: token.RBRACE, Offset: start}
		case ':':
			return token.Token{Kind: token.COLON, Offset: start}
		case ',':
			return token.Token{Kind: token.COMMA, Offset: start}
		case '.':
			return token.Token{Kind: token.DOT, Offset: start}
		case '=':
			if l.advanceIf('=') {
				return token.Token{Kind: token.EQEQ, Offset: start}
			}
			return token.Token{Kind: token.EQ, Offset: start}
		case '!':
			if l.advanceIf('=') {
				return token.Token{Kind: token.NEQ, Offset: start}
			}
			return token.Token{Kind: token.BANG, Offset: start}
		case '<':
			if l.advanceIf('=') {
				return token.Token{Kind: token.LE, Offset: start}
			}
			return token.Token{Kind: token.LT, Offset: start}
		case '>':
			if l.advanceIf('=') {
				return token.Token{Kind: token.GE, Offset: start}
			}
			return token.Token{Kind: token.GT, Offset: start}
		case '&':
			if l.advanceIf('&') {
				return token.Token{Kind: token.AMPAMP, Offset: start}
			}
			l.errorf(start, "illegal character '&', expected '&&'")
			return token.Token{Kind: token.ILLEGAL, Offset: start}
		case '|':
			if l.advanceIf('|') {
				return token.Token{Kind: token.PIPEPIPE, Offset: start}
			}
			l.errorf(start, "illegal character '|', expected '||'")
			return token.Token{Kind: token.ILLEGAL, Offset: start}
		default:
			l.errorf(start, "illegal character %#U", cur)
			return token.Token{Kind: token.ILLEGAL, Offset: start}
		}
	}
}
