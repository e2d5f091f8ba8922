package resolver_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/parser"
	"github.com/gaultier/kotlinc-lite/lang/resolver"
	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, src string) (*ast.Tree, *types.Table, error) {
	t.Helper()
	toks, err := lexer.Lex("t.kt", []byte(src))
	require.NoError(t, err)
	tree, err := parser.Parse("t.kt", toks)
	require.NoError(t, err)

	tbl := types.NewTable()
	r := resolver.New(tbl, nil, tree, toks, "t.kt", "TKt")
	return tree, tbl, r.Resolve()
}

func TestResolveArithmeticWidening(t *testing.T) {
	tree, tbl, err := resolve(t, `fun f(): Long { var a: Int = 3; var b: Long = 4L; return a + b }`)
	require.NoError(t, err)
	fn := tree.Node(tree.TopLevel[0])
	require.NotEqual(t, 0, fn.TypeI)
	_ = tbl
}

func TestResolveUndeclaredVariableErrors(t *testing.T) {
	_, _, err := resolve(t, `fun f(): Int { return x }`)
	require.Error(t, err)
}

func TestResolveVariableUsedBeforeInitialization(t *testing.T) {
	_, _, err := resolve(t, `fun f(): Int { var a: Int; return a }`)
	require.Error(t, err)
}

func TestResolveIfExpressionMergesBranchTypes(t *testing.T) {
	_, _, err := resolve(t, `fun f(b: Boolean): Int { return if (b) 1 else 2 }`)
	require.NoError(t, err)
}

func TestResolveIfExpressionMismatchErrors(t *testing.T) {
	_, _, err := resolve(t, `fun f(b: Boolean) { if (b) { 1 } else { true } }`)
	require.Error(t, err)
}

func TestResolveForwardFunctionReferenceWorks(t *testing.T) {
	_, _, err := resolve(t, `
fun a(): Int { return b() }
fun b(): Int { return 1 }
`)
	require.NoError(t, err)
}

func TestResolveReturnTypeMismatch(t *testing.T) {
	_, _, err := resolve(t, `fun f(): Boolean { return 1 }`)
	require.Error(t, err)
}

func TestResolveAssignmentToDeclaredVariable(t *testing.T) {
	_, _, err := resolve(t, `fun f() { var a: Int = 1; a = 2 }`)
	require.NoError(t, err)
}
