package types_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

func TestParseFieldDescriptorRoundTrip(t *testing.T) {
	tbl := types.NewTable()
	for _, d := range []string{"I", "J", "Z", "[I", "[[Ljava/lang/String;"} {
		i, err := tbl.ParseFieldDescriptor(d)
		require.NoError(t, err)
		require.Equal(t, d, tbl.Descriptor(i))
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tbl := types.NewTable()
	m, err := tbl.ParseMethodDescriptor("(ILjava/lang/String;)J")
	require.NoError(t, err)
	require.Len(t, m.ArgumentTypes, 2)
	require.Equal(t, tbl.WellKnown(types.Int), m.ArgumentTypes[0])
	require.Equal(t, tbl.WellKnown(types.Long), m.ReturnType)
}

func TestParseMethodDescriptorVoidReturn(t *testing.T) {
	tbl := types.NewTable()
	m, err := tbl.ParseMethodDescriptor("()V")
	require.NoError(t, err)
	require.Empty(t, m.ArgumentTypes)
	require.Equal(t, tbl.WellKnown(types.Unit), m.ReturnType)
}

func TestParseFieldDescriptorMalformed(t *testing.T) {
	tbl := types.NewTable()
	_, err := tbl.ParseFieldDescriptor("Ljava/lang/String")
	require.Error(t, err)

	_, err = tbl.ParseFieldDescriptor("Q")
	require.Error(t, err)
}
