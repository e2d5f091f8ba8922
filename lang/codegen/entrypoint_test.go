package codegen_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/codegen"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/parser"
	"github.com/gaultier/kotlinc-lite/lang/resolver"
	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

func generateFile(t *testing.T, src string) *classfile.ClassFile {
	t.Helper()
	toks, err := lexer.Lex("t.kt", []byte(src))
	require.NoError(t, err)
	tree, err := parser.Parse("t.kt", toks)
	require.NoError(t, err)

	tbl := types.NewTable()
	r := resolver.New(tbl, nil, tree, toks, "t.kt", "TKt")
	require.NoError(t, r.Resolve())

	cf, err := codegen.GenerateFile(tbl, tree, toks, nil, "TKt", "t.kt")
	require.NoError(t, err)
	return cf
}

func TestGenerateFileSynthesizesMainTrampoline(t *testing.T) {
	cf := generateFile(t, `fun main() { var a: Int = 1 }`)

	var found int
	for _, m := range cf.Methods {
		name := cf.Pool.Get(m.NameIndex).Utf8
		desc := cf.Pool.Get(m.DescriptorIndex).Utf8
		if name == "main" && desc == "([Ljava/lang/String;)V" {
			found++
		}
	}
	require.Equal(t, 1, found)
}

func TestGenerateFileEmitsEveryTopLevelFunction(t *testing.T) {
	cf := generateFile(t, `
fun a(): Int { return 1 }
fun b(): Int { return 2 }
`)
	names := map[string]bool{}
	for _, m := range cf.Methods {
		names[cf.Pool.Get(m.NameIndex).Utf8] = true
	}
	require.True(t, names["a"])
	require.True(t, names["b"])
}
