package classfile_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/stretchr/testify/require"
)

func TestResolveFramesSortsAndComputesDeltas(t *testing.T) {
	in := []classfile.ResolvedFrame{
		{PC: 20, Locals: []classfile.VerificationType{{Tag: classfile.VerifInteger}}},
		{PC: 5, Locals: []classfile.VerificationType{{Tag: classfile.VerifInteger}}},
	}
	out := classfile.ResolveFrames(in)
	require.Len(t, out, 2)
	require.Equal(t, 5, out[0].PC)
	require.Equal(t, uint16(5), out[0].OffsetDelta) // 5 - (-1) - 1
	require.Equal(t, 20, out[1].PC)
	require.Equal(t, uint16(14), out[1].OffsetDelta) // 20 - 5 - 1
}

func TestResolveFramesDedupesPCCollisions(t *testing.T) {
	in := []classfile.ResolvedFrame{
		{PC: 10, Locals: nil},
		{PC: 10, Locals: []classfile.VerificationType{{Tag: classfile.VerifInteger}}},
	}
	out := classfile.ResolveFrames(in)
	require.Len(t, out, 1)
	require.Len(t, out[0].Locals, 1)
}

func TestEncodeStackMapTableSameFrame(t *testing.T) {
	p := classfile.NewPool()
	frames := []classfile.ResolvedFrame{
		{PC: 3, OffsetDelta: 3, Locals: nil, Stack: nil},
	}
	attr := classfile.EncodeStackMapTable(p, frames)
	require.Equal(t, "StackMapTable", p.Get(attr.NameIndex).Utf8)
	// number_of_entries (u16) = 1, then same_frame tag == offset_delta (3)
	require.Equal(t, []byte{0, 1, 3}, attr.Info)
}

func TestEncodeStackMapTableFullFrame(t *testing.T) {
	p := classfile.NewPool()
	frames := []classfile.ResolvedFrame{
		{
			PC:          100,
			OffsetDelta: 100,
			Locals: []classfile.VerificationType{
				{Tag: classfile.VerifInteger}, {Tag: classfile.VerifInteger},
				{Tag: classfile.VerifInteger}, {Tag: classfile.VerifInteger},
				{Tag: classfile.VerifInteger},
			},
			Stack: []classfile.VerificationType{{Tag: classfile.VerifInteger}},
		},
	}
	attr := classfile.EncodeStackMapTable(p, frames)
	require.Equal(t, byte(255), attr.Info[2]) // full_frame tag
}
