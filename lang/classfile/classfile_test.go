package classfile_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/stretchr/testify/require"
)

func TestWriteEmitsMagicAndVersion(t *testing.T) {
	cf := classfile.New("com/example/MainKt", "java/lang/Object")
	cf.SetSourceFile("Main.kt")
	out := cf.Write()

	require.GreaterOrEqual(t, len(out), 10)
	require.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, out[0:4])
	require.Equal(t, byte(classfile.MajorVersion58), out[7])
}

func TestWriteMethodWithCode(t *testing.T) {
	cf := classfile.New("com/example/MainKt", "java/lang/Object")
	nameIdx := cf.Pool.AddUtf8("main")
	descIdx := cf.Pool.AddUtf8("([Ljava/lang/String;)V")

	code := classfile.Code{
		MaxStack:  1,
		MaxLocals: 1,
		Bytecode:  []byte{0xb1}, // return
	}
	codeAttr := classfile.EncodeCode(cf.Pool, code)
	cf.Methods = append(cf.Methods, classfile.Method{
		AccessFlags:     classfile.AccPublic | classfile.AccStatic,
		NameIndex:       nameIdx,
		DescriptorIndex: descIdx,
		Attributes:      []classfile.Attribute{codeAttr},
	})

	out := cf.Write()
	require.NotEmpty(t, out)
}
