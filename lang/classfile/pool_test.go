package classfile_test

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/stretchr/testify/require"
)

func TestPoolDedupsUtf8(t *testing.T) {
	p := classfile.NewPool()
	a := p.AddUtf8("hello")
	b := p.AddUtf8("hello")
	require.Equal(t, a, b)
}

func TestPoolLongOccupiesTwoSlotsWithTombstone(t *testing.T) {
	p := classfile.NewPool()
	before := p.Len()
	i := p.AddLong(42)
	require.Equal(t, before+2, p.Len())
	require.Equal(t, classfile.TagLong, p.Get(i).Tag)
	require.Panics(t, func() { p.Get(i + 1) })
}

func TestPoolMethodrefDedup(t *testing.T) {
	p := classfile.NewPool()
	a := p.AddMethodref("java/lang/Object", "toString", "()Ljava/lang/String;")
	b := p.AddMethodref("java/lang/Object", "toString", "()Ljava/lang/String;")
	require.Equal(t, a, b)

	c := p.AddMethodref("java/lang/Object", "hashCode", "()I")
	require.NotEqual(t, a, c)
}

func TestPoolImportClonesTransitively(t *testing.T) {
	src := classfile.NewPool()
	srcIdx := src.AddMethodref("java/lang/Math", "max", "(II)I")

	dst := classfile.NewPool()
	dstIdx := dst.Import(src, srcIdx)

	e := dst.Get(dstIdx)
	require.Equal(t, classfile.TagMethodref, e.Tag)

	classEntry := dst.Get(e.ClassIndex)
	require.Equal(t, "java/lang/Math", dst.Get(classEntry.NameIndex).Utf8)
}
