package token

import "sort"

// LineTable is an ordered sequence of source byte offsets: entry i is the
// start offset of line i+1. A sentinel final entry equal to the source
// length is always appended, so callers can look up the line containing any
// valid offset (including EOF) without special-casing it.
type LineTable struct {
	offsets []int
}

// NewLineTable builds a LineTable for src by scanning for newlines.
func NewLineTable(src []byte) *LineTable {
	lt := &LineTable{offsets: []int{0}}
	for i, b := range src {
		if b == '\n' {
			lt.offsets = append(lt.offsets, i+1)
		}
	}
	lt.offsets = append(lt.offsets, len(src))
	return lt
}

// Position returns the 1-based line and column for the given byte offset.
func (lt *LineTable) Position(offset int) Pos {
	// find the line whose start is <= offset, the last one that qualifies
	// (the sentinel is not a line start, so it is left out of the search)
	starts := lt.offsets[:len(lt.offsets)-1]
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	line := i // offsets[0] is line 1's start, so i (1-based) already accounts for it
	lineStart := starts[i-1]
	return Pos{Line: line, Col: offset - lineStart + 1}
}
