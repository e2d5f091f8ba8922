package archive_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaultier/kotlinc-lite/lang/archive"
	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/types"
	"github.com/stretchr/testify/require"
)

func buildClassBytes(t *testing.T, thisFQN, superFQN string) []byte {
	t.Helper()
	cf := classfile.New(thisFQN, superFQN)
	return cf.Write()
}

func TestDirEntryLoad(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "com", "example")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	raw := buildClassBytes(t, "com/example/Foo", "java/lang/Object")
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Foo.class"), raw, 0o644))

	entry := archive.DirEntry{Root: dir}
	data, ok, err := entry.Load("com/example/Foo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, raw, data)

	_, ok, err = entry.Load("com/example/Missing")
	require.NoError(t, err)
	require.False(t, ok)
}

// buildJarBytes uses the standard library's archive/zip writer purely as a
// test fixture generator; the production JarEntry reader never uses
// archive/zip (spec §4.5 requires a hand-rolled EOCD scan).
func buildJarBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestJarEntryLoadDeflated(t *testing.T) {
	raw := buildClassBytes(t, "com/example/Bar", "java/lang/Object")
	jarBytes := buildJarBytes(t, map[string][]byte{"com/example/Bar.class": raw})

	entry, err := archive.NewJarEntry(jarBytes)
	require.NoError(t, err)

	data, ok, err := entry.Load("com/example/Bar")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, raw, data)
}

func TestJmodEntryStripsMagicAndClassesPrefix(t *testing.T) {
	raw := buildClassBytes(t, "java/util/List", "java/lang/Object")
	jarBytes := buildJarBytes(t, map[string][]byte{"classes/java/util/List.class": raw})

	jmodBytes := append([]byte{'J', 'M', 0x01, 0x00}, jarBytes...)
	entry, err := archive.NewJmodEntry(jmodBytes)
	require.NoError(t, err)

	data, ok, err := entry.Load("java/util/List")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, raw, data)
}

func TestLoaderResolveWalksSuperChain(t *testing.T) {
	dir := t.TempDir()
	writeClass := func(fqn, super string) {
		path := filepath.Join(dir, filepath.FromSlash(fqn)+".class")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, buildClassBytes(t, fqn, super), 0o644))
	}
	writeClass("com/example/Base", "java/lang/Object")
	writeClass("com/example/Derived", "com/example/Base")

	tbl := types.NewTable()
	loader := archive.NewLoader(tbl, archive.DirEntry{Root: dir})

	derived, err := loader.Resolve("com/example/Derived")
	require.NoError(t, err)
	base, err := loader.Resolve("com/example/Base")
	require.NoError(t, err)
	require.True(t, tbl.IsSubtype(derived, base))
}
