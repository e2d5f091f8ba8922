package archive

import (
	"os"
	"path/filepath"
	"strings"
)

// DirEntry loads classes from a directory classpath entry (spec §4.5): for
// fqn "a.b.C" it tries "<root>/a/b/C.class".
type DirEntry struct {
	Root string
}

func (d DirEntry) Load(fqn string) ([]byte, bool, error) {
	rel := strings.ReplaceAll(fqn, "/", string(filepath.Separator)) + ".class"
	path := filepath.Join(d.Root, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
