package archive

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"strings"
)

// eocdSignature is the ZIP end-of-central-directory record signature
// (0x06054b50, stored little-endian as these four bytes), located by
// scanning backward from the end of the archive (spec §4.5).
var eocdSignature = []byte{0x50, 0x4b, 0x05, 0x06}

var centralDirSignature = []byte{0x50, 0x4b, 0x01, 0x02}

const (
	compressionStored  = 0
	compressionDeflate = 8
)

// JarEntry loads classes out of a JAR's central directory. Identical
// handling serves JMOD archives once their 4-byte "JM\x01\x00" prefix has
// been stripped (see JmodEntry).
type JarEntry struct {
	data    []byte
	index   map[string]centralDirRecord // fqn without ".class" -> record
}

type centralDirRecord struct {
	compression        uint16
	compressedSize     uint32
	uncompressedSize   uint32
	localHeaderOffset   uint32
}

// NewJarEntry parses data's central directory once, up front, and returns
// an Entry ready to serve Load calls.
func NewJarEntry(data []byte) (*JarEntry, error) {
	eocdOff, err := findEOCD(data)
	if err != nil {
		return nil, err
	}
	if eocdOff+22 > len(data) {
		return nil, fmt.Errorf("archive: truncated end-of-central-directory record")
	}
	cdSize := le32(data, eocdOff+12)
	cdOffset := le32(data, eocdOff+16)

	index := make(map[string]centralDirRecord)
	pos := int(cdOffset)
	end := int(cdOffset + cdSize)
	if end > len(data) {
		end = len(data)
	}
	for pos+46 <= end {
		if !bytes.Equal(data[pos:pos+4], centralDirSignature) {
			break
		}
		compression := le16(data, pos+10)
		compressedSize := le32(data, pos+20)
		uncompressedSize := le32(data, pos+24)
		nameLen := int(le16(data, pos+28))
		extraLen := int(le16(data, pos+30))
		commentLen := int(le16(data, pos+32))
		localOffset := le32(data, pos+42)

		nameStart := pos + 46
		if nameStart+nameLen > len(data) {
			break
		}
		name := string(data[nameStart : nameStart+nameLen])

		if strings.HasSuffix(name, ".class") {
			fqn := strings.TrimSuffix(name, ".class")
			index[fqn] = centralDirRecord{
				compression:      compression,
				compressedSize:   compressedSize,
				uncompressedSize: uncompressedSize,
				localHeaderOffset: localOffset,
			}
		}

		pos = nameStart + nameLen + extraLen + commentLen
	}

	return &JarEntry{data: data, index: index}, nil
}

func (j *JarEntry) Load(fqn string) ([]byte, bool, error) {
	rec, ok := j.index[fqn]
	if !ok {
		return nil, false, nil
	}

	pos := int(rec.localHeaderOffset)
	if pos+30 > len(j.data) || !bytes.Equal(j.data[pos:pos+4], []byte{0x50, 0x4b, 0x03, 0x04}) {
		return nil, false, fmt.Errorf("archive: malformed local file header for %s", fqn)
	}
	nameLen := int(le16(j.data, pos+26))
	extraLen := int(le16(j.data, pos+28))
	dataStart := pos + 30 + nameLen + extraLen
	dataEnd := dataStart + int(rec.compressedSize)
	if dataEnd > len(j.data) {
		return nil, false, fmt.Errorf("archive: truncated entry data for %s", fqn)
	}
	raw := j.data[dataStart:dataEnd]

	switch rec.compression {
	case compressionStored:
		return append([]byte(nil), raw...), true, nil
	case compressionDeflate:
		out := make([]byte, 0, rec.uncompressedSize)
		buf := bytes.NewBuffer(out)
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		if _, err := io.Copy(buf, fr); err != nil {
			return nil, false, fmt.Errorf("archive: inflating %s: %w", fqn, err)
		}
		return buf.Bytes(), true, nil
	default:
		return nil, false, fmt.Errorf("archive: unsupported compression method %d for %s", rec.compression, fqn)
	}
}

// findEOCD scans backward from the end of data for the end-of-central-
// directory signature, to tolerate an optional trailing comment (spec
// §4.5).
func findEOCD(data []byte) (int, error) {
	// the comment field is at most 65535 bytes; search no further back than
	// that plus the fixed 22-byte record.
	minScan := len(data) - 22 - 65535
	if minScan < 0 {
		minScan = 0
	}
	for i := len(data) - 22; i >= minScan; i-- {
		if bytes.Equal(data[i:i+4], eocdSignature) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("archive: no end-of-central-directory record found")
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
