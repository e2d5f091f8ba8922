package resolver

import "math"

// maxDepth is the sentinel scope depth a freshly declared variable carries
// until mark_initialized sets it to the enclosing depth; reading a variable
// still at this depth is "used before initialization" (spec §4.6).
const maxDepth = math.MaxInt32

type variable struct {
	name   string
	typeI  int
	depth  int
	nodeI  int // the VarDef/FunctionParam node that declared it
}

// scope tracks in-scope local variables as a flat, depth-tagged stack
// (spec §4.6: begin_scope increments a monotonic counter, end_scope drops
// everything at or past the current depth and decrements).
type scope struct {
	vars  []variable
	depth int
}

func newScope() *scope { return &scope{} }

func (s *scope) begin() { s.depth++ }

func (s *scope) end() {
	i := len(s.vars)
	for i > 0 && s.vars[i-1].depth >= s.depth {
		i--
	}
	s.vars = s.vars[:i]
	s.depth--
}

// declare adds a new variable at maxDepth (uninitialized); a later
// markInitialized call by name makes it readable.
func (s *scope) declare(name string, typeI, nodeI int) {
	s.vars = append(s.vars, variable{name: name, typeI: typeI, depth: maxDepth, nodeI: nodeI})
}

// markInitialized sets the most recently declared variable named name to
// the current scope depth, making it visible to reads.
func (s *scope) markInitialized(name string) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			s.vars[i].depth = s.depth
			return
		}
	}
}

// lookup finds the innermost variable named name. ok is false if no such
// variable is in scope; uninitialized is true if it exists but has not yet
// been through markInitialized.
func (s *scope) lookup(name string) (v variable, ok, uninitialized bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			return s.vars[i], true, s.vars[i].depth == maxDepth
		}
	}
	return variable{}, false, false
}
