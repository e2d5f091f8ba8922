package types_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

func TestWellKnownOrderIsFixed(t *testing.T) {
	tbl := types.NewTable()
	require.Equal(t, types.Index(0), tbl.WellKnown(types.Any))
	require.Equal(t, types.Index(10), tbl.WellKnown(types.String))
	require.Len(t, tbl.Types, 11)
}

func TestDescriptorPrimitives(t *testing.T) {
	tbl := types.NewTable()
	require.Equal(t, "I", tbl.Descriptor(tbl.WellKnown(types.Int)))
	require.Equal(t, "J", tbl.Descriptor(tbl.WellKnown(types.Long)))
	require.Equal(t, "V", tbl.Descriptor(tbl.WellKnown(types.Unit)))
	require.Equal(t, "Ljava/lang/String;", tbl.Descriptor(tbl.WellKnown(types.String)))
}

func TestDescriptorArrayAndInstance(t *testing.T) {
	tbl := types.NewTable()
	str := tbl.AddInstance("java/lang/StringBuilder", "java/lang")
	arr := tbl.AddArray(str)
	require.Equal(t, "Ljava/lang/StringBuilder;", tbl.Descriptor(str))
	require.Equal(t, "[Ljava/lang/StringBuilder;", tbl.Descriptor(arr))
}

func TestAddInstanceLowersBoxedWrappers(t *testing.T) {
	tbl := types.NewTable()
	i := tbl.AddInstance("java/lang/Integer", "java/lang")
	require.Equal(t, tbl.WellKnown(types.Int), i)
}

func TestIsSubtypeWidening(t *testing.T) {
	tbl := types.NewTable()
	require.True(t, tbl.IsSubtype(tbl.WellKnown(types.Int), tbl.WellKnown(types.Long)))
	require.False(t, tbl.IsSubtype(tbl.WellKnown(types.Long), tbl.WellKnown(types.Int)))
	require.True(t, tbl.IsSubtype(tbl.WellKnown(types.Byte), tbl.WellKnown(types.Any)))
}

func TestIsSubtypeIntegerLiteral(t *testing.T) {
	tbl := types.NewTable()
	lit := tbl.AddIntegerLiteral(types.IntKindByte | types.IntKindShort | types.IntKindInt | types.IntKindLong)
	require.True(t, tbl.IsSubtype(lit, tbl.WellKnown(types.Byte)))
	require.True(t, tbl.IsSubtype(lit, tbl.WellKnown(types.Long)))

	narrow := tbl.AddIntegerLiteral(types.IntKindInt | types.IntKindLong)
	require.False(t, tbl.IsSubtype(narrow, tbl.WellKnown(types.Byte)))
}

func TestIsSubtypeInstanceChain(t *testing.T) {
	tbl := types.NewTable()
	obj := tbl.AddInstance("java/lang/Object", "java/lang")
	base := tbl.AddInstance("com/example/Base", "com/example")
	tbl.Get(base).SuperTypeI = obj
	derived := tbl.AddInstance("com/example/Derived", "com/example")
	tbl.Get(derived).SuperTypeI = base

	require.True(t, tbl.IsSubtype(derived, base))
	require.True(t, tbl.IsSubtype(derived, obj))
	require.False(t, tbl.IsSubtype(base, derived))
}
