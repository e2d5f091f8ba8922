package codegen

import (
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return &Generator{frame: newFrame()}
}

func testPool() *classfile.Pool {
	return classfile.NewPool()
}

func TestLoadIntConstantPicksSmallestEncoding(t *testing.T) {
	cases := []struct {
		v    int64
		want []byte
	}{
		{-1, []byte{opIconstM1}},
		{0, []byte{opIconst0}},
		{5, []byte{opIconst5}},
		{6, []byte{opBipush, 6}},
		{127, []byte{opBipush, 127}},
		{128, []byte{opSipush, 0, 128}},
		{32767, []byte{opSipush, 0x7f, 0xff}},
	}
	for _, c := range cases {
		g := newTestGenerator()
		g.loadIntConstant(c.v)
		require.Equal(t, c.want, g.code, "v=%d", c.v)
	}
}

func TestLoadIntConstantOutOfSipushRangeUsesLdc(t *testing.T) {
	g := newTestGenerator()
	g.Pool = testPool()
	g.loadIntConstant(100000)
	require.Equal(t, byte(opLdc), g.code[0])
}

func TestLoadLongConstantUsesFastFormsForZeroAndOne(t *testing.T) {
	g := newTestGenerator()
	g.loadLongConstant(0)
	require.Equal(t, []byte{opLconst0}, g.code)

	g2 := newTestGenerator()
	g2.loadLongConstant(1)
	require.Equal(t, []byte{opLconst1}, g2.code)
}

func TestLoadLongConstantFallsBackToLdc2W(t *testing.T) {
	g := newTestGenerator()
	g.Pool = testPool()
	g.loadLongConstant(42)
	require.Equal(t, byte(opLdc2W), g.code[0])
}

func TestLoadLocalPrefersFastForms(t *testing.T) {
	g := newTestGenerator()
	g.loadLocal(0, false)
	g.loadLocal(3, false)
	g.loadLocal(4, false)
	require.Equal(t, []byte{opIload0, opIload3, opIload, 4}, g.code)
}

func TestStoreLocalWideUsesLongForms(t *testing.T) {
	g := newTestGenerator()
	g.storeLocal(1, true)
	require.Equal(t, []byte{opLstore1}, g.code)
}

func TestLdcNarrowVsWide(t *testing.T) {
	g := newTestGenerator()
	g.ldc(10)
	require.Equal(t, []byte{opLdc, 10}, g.code)

	g2 := newTestGenerator()
	g2.ldc(300)
	require.Equal(t, []byte{opLdcW, byte(300 >> 8), byte(300)}, g2.code)
}
