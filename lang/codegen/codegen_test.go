package codegen_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/codegen"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/parser"
	"github.com/gaultier/kotlinc-lite/lang/resolver"
	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

// generate resolves src and lowers its first top-level function to Code,
// returning the Code alongside the tree/types for further inspection.
func generate(t *testing.T, src string) (classfile.Code, *ast.Tree, *types.Table) {
	t.Helper()
	toks, err := lexer.Lex("t.kt", []byte(src))
	require.NoError(t, err)
	tree, err := parser.Parse("t.kt", toks)
	require.NoError(t, err)

	tbl := types.NewTable()
	r := resolver.New(tbl, nil, tree, toks, "t.kt", "TKt")
	require.NoError(t, r.Resolve())

	pool := classfile.NewPool()
	g := codegen.New(tbl, tree, toks, pool, nil)

	var fnI int
	for _, i := range tree.TopLevel {
		if tree.Node(i).Kind == ast.FunctionDef {
			fnI = i
			break
		}
	}
	require.NotEqual(t, 0, fnI)

	code, err := g.Method(fnI)
	require.NoError(t, err)
	return code, tree, tbl
}

func TestGenerateReturnConstant(t *testing.T) {
	code, _, _ := generate(t, `fun f(): Int { return 42 }`)
	require.NotEmpty(t, code.Bytecode)
	require.Equal(t, byte(0xac), code.Bytecode[len(code.Bytecode)-1]) // ireturn
}

func TestGenerateVoidFunctionFallsThrough(t *testing.T) {
	code, _, _ := generate(t, `fun f() { var a: Int = 1 }`)
	require.Equal(t, byte(0xb1), code.Bytecode[len(code.Bytecode)-1]) // return
}

func TestGenerateArithmeticWidensToLong(t *testing.T) {
	code, _, _ := generate(t, `fun f(): Long { var a: Int = 3; var b: Long = 4L; return a + b }`)
	require.Contains(t, code.Bytecode, byte(0x85)) // i2l somewhere in the stream
	require.Equal(t, byte(0xad), code.Bytecode[len(code.Bytecode)-1]) // lreturn
}

func TestGenerateIfWithElseMergesFrames(t *testing.T) {
	code, _, _ := generate(t, `fun f(b: Boolean): Int { return if (b) 1 else 2 }`)
	require.NotEmpty(t, code.Frames)
}

func TestGenerateIfWithoutElseDiscardsThenValue(t *testing.T) {
	code, _, _ := generate(t, `fun f(b: Boolean) { if (b) { 1 } }`)
	// pop (0x57) must appear to discard the then-block's leftover Int.
	require.Contains(t, code.Bytecode, byte(0x57))
}

func TestGenerateWhileLoopBranchesBackward(t *testing.T) {
	code, _, _ := generate(t, `fun f(b: Boolean) { while (b) { } }`)
	require.Contains(t, code.Bytecode, byte(0xa7)) // goto
}

func TestGenerateShortCircuitAnd(t *testing.T) {
	code, _, _ := generate(t, `fun f(a: Boolean, b: Boolean): Boolean { return a && b }`)
	require.Contains(t, code.Bytecode, byte(0x99)) // ifeq
}

func TestGenerateComparisonOnInts(t *testing.T) {
	code, _, _ := generate(t, `fun f(a: Int, b: Int): Boolean { return a < b }`)
	require.Contains(t, code.Bytecode, byte(0xa1)) // if_icmplt
}

func TestGenerateComparisonOnLongsUsesLcmp(t *testing.T) {
	code, _, _ := generate(t, `fun f(a: Long, b: Long): Boolean { return a < b }`)
	require.Contains(t, code.Bytecode, byte(0x94)) // lcmp
}

func TestGenerateShadowedVariablesUseDistinctSlots(t *testing.T) {
	// the inner 'a' shadows the outer one; codegen must bind each VarRef to
	// its own declaration rather than resolving by name.
	code, _, _ := generate(t, `
fun f(b: Boolean): Int {
	var a: Int = 1
	if (b) {
		var a: Int = 2
		return a
	}
	return a
}
`)
	require.NotEmpty(t, code.Bytecode)
	require.GreaterOrEqual(t, code.MaxLocals, uint16(3)) // b, outer a, inner a
}

func TestGenerateUnaryNegation(t *testing.T) {
	code, _, _ := generate(t, `fun f(a: Int): Int { return -a }`)
	require.Contains(t, code.Bytecode, byte(0x74)) // ineg
}

func TestGenerateBooleanNot(t *testing.T) {
	code, _, _ := generate(t, `fun f(a: Boolean): Boolean { return !a }`)
	require.Contains(t, code.Bytecode, byte(0x99)) // ifeq drives the negation
}

func TestGenerateAssignmentReusesDeclaredSlot(t *testing.T) {
	code, _, _ := generate(t, `fun f(): Int { var a: Int = 1; a = 2; return a }`)
	require.NotEmpty(t, code.Bytecode)
	require.Equal(t, byte(0xac), code.Bytecode[len(code.Bytecode)-1])
}
