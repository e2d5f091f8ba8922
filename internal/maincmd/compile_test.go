package maincmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileClassNameCapitalizesAndAppendsKt(t *testing.T) {
	require.Equal(t, "FooKt", fileClassName("foo.kt"))
	require.Equal(t, "FooKt", fileClassName("dir/sub/foo.kt"))
	require.Equal(t, "MainKt", fileClassName("Main.kt"))
}

func TestBuildClasspathEntriesSkipsMissingPaths(t *testing.T) {
	entries, err := buildClasspathEntries([]string{"/does/not/exist"})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBuildClasspathEntriesFailsOnMissingJavaBaseJmod(t *testing.T) {
	_, err := buildClasspathEntries([]string{"/does/not/exist/jmods/java.base.jmod"})
	require.Error(t, err)
}

func TestBuildClasspathEntriesAcceptsDirectory(t *testing.T) {
	entries, err := buildClasspathEntries([]string{t.TempDir()})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
