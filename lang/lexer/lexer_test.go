package lexer_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
	"github.com/stretchr/testify/require"
)

func TestLexBasic(t *testing.T) {
	src := []byte(`fun main() { var a: Int = 3; return a }`)
	toks, err := lexer.Lex("t.kt", src)
	require.NoError(t, err)
	require.Equal(t, token.ILLEGAL, toks.Tokens[0].Kind, "index 0 is the dummy sentinel")

	var kinds []token.Kind
	for _, tk := range toks.Tokens[1:] {
		kinds = append(kinds, tk.Kind)
	}
	require.Contains(t, kinds, token.FUN)
	require.Contains(t, kinds, token.VAR)
	require.Contains(t, kinds, token.RETURN)
	require.Equal(t, token.EOF, kinds[len(kinds)-1])
}

func TestLexNumberSuffix(t *testing.T) {
	src := []byte(`4L 2147483647`)
	toks, err := lexer.Lex("t.kt", src)
	require.NoError(t, err)
	require.True(t, lexer.HasLongSuffix(toks, 1))
	require.False(t, lexer.HasLongSuffix(toks, 2))
}

func TestLexNumberOverflow(t *testing.T) {
	src := []byte(`9223372036854775808`) // 2^63
	_, err := lexer.Lex("t.kt", src)
	require.Error(t, err)
}

func TestLexLineComments(t *testing.T) {
	src := []byte("// hello\nvar x = 1")
	toks, err := lexer.Lex("t.kt", src)
	require.NoError(t, err)
	require.Equal(t, token.VAR, toks.Tokens[1].Kind)
}

func TestLineTableSentinel(t *testing.T) {
	src := []byte("a\nb\n")
	toks, err := lexer.Lex("t.kt", src)
	require.NoError(t, err)
	pos := lexer.Position(toks, len(toks.Tokens)-1)
	require.Equal(t, 3, pos.Line, "EOF is on the (empty) third line")
}
