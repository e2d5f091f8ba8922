package archive

import (
	"bytes"
	"fmt"
)

// jmodMagic is the 4-byte header every .jmod file carries before its ZIP
// payload begins (spec §4.5).
var jmodMagic = []byte{'J', 'M', 0x01, 0x00}

// JmodEntry is identical to JarEntry once the JMOD magic prefix is
// stripped; .jmod archives store their classes under "classes/" inside the
// same ZIP central-directory structure as a JAR.
type JmodEntry struct {
	jar *JarEntry
}

// NewJmodEntry parses a .jmod file's bytes.
func NewJmodEntry(data []byte) (*JmodEntry, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], jmodMagic) {
		return nil, fmt.Errorf("archive: not a jmod file (bad magic)")
	}
	jar, err := NewJarEntry(data[4:])
	if err != nil {
		return nil, err
	}
	return &JmodEntry{jar: jar}, nil
}

func (j *JmodEntry) Load(fqn string) ([]byte, bool, error) {
	return j.jar.Load("classes/" + fqn)
}
