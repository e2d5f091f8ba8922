package lexer

import (
	"strconv"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/token"
)

// scanNumber scans an integer literal: digits with optional '_' separators
// and an optional trailing 'L' suffix. Values greater than 2^31-1 (without an
// explicit 'L') are still lexed as NUMBER tokens; it is the resolver's job
// (per spec §4.6) to type them as Int or Long. A literal past the signed
// 64-bit range is reported here as out of range. Float literals are out of
// scope (spec §1 non-goals).
func (l *lexer) scanNumber(start int) token.Token {
	for isDigit(l.cur) || l.cur == '_' {
		l.advanceRune()
	}
	if l.cur == 'L' {
		l.advanceRune()
	}

	lit := string(l.src[start:l.off])
	digits := strings.ReplaceAll(strings.TrimSuffix(lit, "L"), "_", "")
	if digits == "" {
		l.errorf(start, "malformed number literal %q", lit)
		return token.Token{Kind: token.ILLEGAL, Offset: start}
	}
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		l.errorf(start, "integer literal %q is out of range", lit)
	}
	return token.Token{Kind: token.NUMBER, Offset: start}
}

// NumberLexeme returns the source bytes that make up the NUMBER token's literal.
func NumberLexeme(t *Tokens, i int) string {
	tok := t.Tokens[i]
	off := tok.Offset
	end := off
	for end < len(t.Src) && (isDigit(rune(t.Src[end])) || t.Src[end] == '_') {
		end++
	}
	if end < len(t.Src) && t.Src[end] == 'L' {
		end++
	}
	return string(t.Src[off:end])
}

// HasLongSuffix reports whether the NUMBER token at index i carries the 'L'
// suffix.
func HasLongSuffix(t *Tokens, i int) bool {
	lit := NumberLexeme(t, i)
	return strings.HasSuffix(lit, "L")
}

// ParseIntLiteral parses the digits of a NUMBER token (ignoring the 'L'
// suffix and '_' separators) into a signed 64-bit value plus whether it
// overflowed the signed 64-bit range (spec §8 boundary: 2^63 triggers
// overflow).
func ParseIntLiteral(t *Tokens, i int) (value int64, overflowed bool) {
	lit := NumberLexeme(t, i)
	digits := strings.ReplaceAll(strings.TrimSuffix(lit, "L"), "_", "")
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, true
	}
	return v, false
}
