package parser_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/parser"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Tree, *lexer.Tokens, error) {
	t.Helper()
	toks, err := lexer.Lex("t.kt", []byte(src))
	require.NoError(t, err)
	tree, err := parser.Parse("t.kt", toks)
	return tree, toks, err
}

func TestParseEmptyFunction(t *testing.T) {
	tree, _, err := parse(t, `fun main() { }`)
	require.NoError(t, err)
	require.Len(t, tree.TopLevel, 1)
	fn := tree.Node(tree.TopLevel[0])
	require.Equal(t, ast.FunctionDef, fn.Kind)
}

func TestParseArithmeticAndReturn(t *testing.T) {
	tree, _, err := parse(t, `fun f(): Long { var a: Int = 3; var b: Long = 4; return a + b }`)
	require.NoError(t, err)
	require.Len(t, tree.TopLevel, 1)
}

func TestParseLvalueError(t *testing.T) {
	_, _, err := parse(t, `fun f() { 1 = 2 }`)
	require.Error(t, err)
}

func TestParseReturnOutsideFunction(t *testing.T) {
	toks, err := lexer.Lex("t.kt", []byte(`return 1`))
	require.NoError(t, err)
	_, err = parser.Parse("t.kt", toks)
	require.Error(t, err)
}

func TestParseIfExpression(t *testing.T) {
	tree, _, err := parse(t, `fun h(b: Boolean): Int { return if (b) 1 else 2 }`)
	require.NoError(t, err)
	require.Len(t, tree.TopLevel, 1)
}

func TestParsePanicRecoverySynchronizesOnFun(t *testing.T) {
	toks, err := lexer.Lex("t.kt", []byte(`fun broken( { }
fun ok() { }`))
	require.NoError(t, err)
	tree, err := parser.Parse("t.kt", toks)
	require.Error(t, err)
	// recovery should still find the second, valid function
	require.GreaterOrEqual(t, len(tree.TopLevel), 1)
}
