package codegen

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/stretchr/testify/require"
)

func TestStripTrailingReturnRemovesReturnOpcode(t *testing.T) {
	require.Equal(t, []byte{opIconst1}, stripTrailingReturn([]byte{opIconst1, opIreturn}))
	require.Equal(t, []byte{}, stripTrailingReturn([]byte{opReturn}))
}

func TestStripTrailingReturnLeavesNonReturnUnchanged(t *testing.T) {
	body := []byte{opIconst1, opIadd}
	require.Equal(t, body, stripTrailingReturn(body))
}

func TestSpliceInlineBodyRemapsFastLocalSlot(t *testing.T) {
	src := classfile.NewPool()
	dst := classfile.NewPool()
	// iload_0 (the callee's sole parameter) should become iload_2, the
	// slot the caller allocated for its argument.
	out, err := spliceInlineBody([]byte{opIload0}, src, dst, []int{2})
	require.NoError(t, err)
	require.Equal(t, []byte{opIload2}, out)
}

func TestSpliceInlineBodyRemapsToGeneralFormBeyondFastRange(t *testing.T) {
	src := classfile.NewPool()
	dst := classfile.NewPool()
	out, err := spliceInlineBody([]byte{opIload0}, src, dst, []int{5})
	require.NoError(t, err)
	require.Equal(t, []byte{opIload, 5}, out)
}

func TestSpliceInlineBodyReimportsPoolConstant(t *testing.T) {
	src := classfile.NewPool()
	idx := src.AddString("hi")
	dst := classfile.NewPool()
	out, err := spliceInlineBody([]byte{opLdc, byte(idx)}, src, dst, nil)
	require.NoError(t, err)
	require.Equal(t, byte(opLdc), out[0])

	entry := dst.Get(uint16(out[1]))
	require.Equal(t, classfile.TagString, entry.Tag)
}

func TestSpliceInlineBodyRejectsUnsupportedOpcode(t *testing.T) {
	src := classfile.NewPool()
	dst := classfile.NewPool()
	_, err := spliceInlineBody([]byte{opIfeq, 0, 0}, src, dst, nil)
	require.Error(t, err)
}

func TestSpliceInlineBodyRejectsTruncatedInstruction(t *testing.T) {
	src := classfile.NewPool()
	dst := classfile.NewPool()
	_, err := spliceInlineBody([]byte{opSipush, 0}, src, dst, nil)
	require.Error(t, err)
}
