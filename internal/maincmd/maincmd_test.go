package maincmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequiresExactlyOneSourceFile(t *testing.T) {
	c := &Cmd{args: nil}
	require.Error(t, c.Validate())

	c = &Cmd{args: []string{"a.kt", "b.kt"}}
	require.Error(t, c.Validate())
}

func TestValidateRejectsNonKtExtension(t *testing.T) {
	c := &Cmd{args: []string{"foo.txt"}}
	require.Error(t, c.Validate())
}

func TestValidateAcceptsSingleKtFile(t *testing.T) {
	c := &Cmd{args: []string{"foo.kt"}}
	require.NoError(t, c.Validate())
}

func TestValidateSkipsArgCheckForHelpAndVersion(t *testing.T) {
	c := &Cmd{Help: true}
	require.NoError(t, c.Validate())

	c = &Cmd{Version: true}
	require.NoError(t, c.Validate())
}

func TestBuildClasspathAlwaysIncludesDot(t *testing.T) {
	cp := buildClasspath("", envConfig{})
	require.Equal(t, []string{"."}, cp)
}

func TestBuildClasspathSplitsColonSeparatedFlag(t *testing.T) {
	cp := buildClasspath("a:b", envConfig{})
	require.Equal(t, []string{".", "a", "b"}, cp)
}

func TestBuildClasspathAppendsJavaBaseJmodWhenJavaHomeSet(t *testing.T) {
	cp := buildClasspath("", envConfig{JavaHome: "/opt/jdk"})
	require.Equal(t, []string{".", "/opt/jdk/jmods/java.base.jmod"}, cp)
}

func TestBuildClasspathAppendsJavaBaseJmodAlongsideExplicitEntries(t *testing.T) {
	cp := buildClasspath("", envConfig{ClasspathDefault: "x", JavaHome: "/opt/jdk"})
	require.Equal(t, []string{".", "x", "/opt/jdk/jmods/java.base.jmod"}, cp)
}
