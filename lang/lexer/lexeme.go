package lexer

import "github.com/gaultier/kotlinc-lite/lang/token"

// fixedLen gives the byte length of punctuation and keyword tokens, whose
// length is a function of kind alone.
var fixedLen = map[token.Kind]int{
	token.PLUS: 1, token.MINUS: 1, token.STAR: 1, token.SLASH: 1, token.PERCENT: 1,
	token.LPAREN: 1, token.RPAREN: 1, token.LBRACE: 1, token.RBRACE: 1,
	token.COLON: 1, token.COMMA: 1, token.DOT: 1, token.EQ: 1, token.BANG: 1,
	token.LT: 1, token.GT: 1,
	token.EQEQ: 2, token.NEQ: 2, token.LE: 2, token.GE: 2, token.AMPAMP: 2, token.PIPEPIPE: 2,
	token.FUN: 3, token.VAR: 3,
	token.IF: 2, token.RETURN: 6, token.FALSE: 5, token.TRUE: 4, token.ELSE: 4, token.WHILE: 5,
}

// Len returns the byte length of the lexeme for the token at index i,
// recomputing it on demand: fixed for punctuation/keywords, scanned from the
// source for identifiers, numbers and strings.
func Len(t *Tokens, i int) int {
	tok := t.Tokens[i]
	switch tok.Kind {
	case token.IDENT:
		end := tok.Offset
		for end < len(t.Src) && (isLetter(rune(t.Src[end])) || isDigit(rune(t.Src[end]))) {
			end++
		}
		return end - tok.Offset
	case token.NUMBER:
		return len(NumberLexeme(t, i))
	case token.STRING:
		end := tok.Offset + 1
		for end < len(t.Src) && t.Src[end] != '"' && t.Src[end] != '\n' {
			end++
		}
		if end < len(t.Src) && t.Src[end] == '"' {
			end++
		}
		return end - tok.Offset
	case token.EOF, token.ILLEGAL:
		return 0
	default:
		return fixedLen[tok.Kind]
	}
}

// Lexeme returns the exact source text of the token at index i.
func Lexeme(t *Tokens, i int) string {
	tok := t.Tokens[i]
	n := Len(t, i)
	return string(t.Src[tok.Offset : tok.Offset+n])
}

// Ident returns the identifier text for an IDENT token, unquoted.
func Ident(t *Tokens, i int) string { return Lexeme(t, i) }

// StringValue returns the unquoted contents of a STRING token.
func StringValue(t *Tokens, i int) string {
	lit := Lexeme(t, i)
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return ""
}

// Position returns the 1-based line/column of the token at index i.
func Position(t *Tokens, i int) token.Pos {
	return t.Lines.Position(t.Tokens[i].Offset)
}
