// Package ast defines the index-based abstract syntax tree produced by the
// parser. Nodes live in a single growable slice and reference each other by
// small integer indices rather than pointers, so the tree is free of cycles
// by construction and cheap to walk without an allocator (spec §3, §9).
package ast

// Kind identifies the syntactic form of a Node.
type Kind uint8

//nolint:revive
const (
	None Kind = iota // the reserved sentinel at index 0
	Number
	Bool
	FunctionDef
	FunctionParam
	Type
	Binary
	Assignment
	ThenElse
	Unary
	VarDef
	VarRef
	ClassRef
	If
	List
	WhileLoop
	String
	Navigation
	UnresolvedName
	Return
	Call
)

// Flags is a bitset of per-node annotations set during parsing or
// resolution.
type Flags uint32

const (
	// FlagHasElse marks an If node as having an else branch (Rhs points to it).
	FlagHasElse Flags = 1 << iota
	// FlagBad marks a node produced during panic-mode error recovery; its
	// subtree should not be trusted by later phases.
	FlagBad
)

// Node is one entry of the AST. Index 0 is reserved and always has Kind ==
// None; every real node therefore has a nonzero index, and a zero child
// index means "absent" (spec §3).
//
// Children indices are always strictly less than the parent's own index:
// nodes are appended to the tree in post-order as they finish parsing. The
// one exception is a FunctionDef, whose node is reserved before its body is
// parsed (to support forward self-reference in diagnostics); neither the
// resolver nor the pretty-printer depends on the ordering invariant.
type Node struct {
	Kind       Kind
	MainTokenI int    // the token most representative of this node, for diagnostics
	Lhs, Rhs   int    // child node indices, 0 = absent
	TypeI      int    // assigned by the resolver; 0 before resolution
	Children   []int  // used by List and Call (variadic)
	ExtraDataI int    // index into Tree.Extras, 0 = absent
	Flags      Flags
}

// Extra holds the per-kind scratch data that doesn't fit in Node's fixed
// shape. Which fields are meaningful depends on the owning Node's Kind; this
// mirrors the source's per-kind union via a plain struct, since Go has no
// compact tagged union and the set of fields is small.
type Extra struct {
	// Number
	IntValue int64
	IsLong   bool

	// String
	StringValue string

	// FunctionDef: declared return type node (0 = inferred Unit)
	ReturnTypeI int

	// VarDef: declared type node (0 = inferred from initializer)
	DeclaredTypeI int

	// FunctionDef, once resolved: the function's Method type index (types.Type)
	ResolvedMethodI int

	// VarRef (including an Assignment's Lhs): the VarDef/FunctionParam node
	// this reference is bound to, set by the resolver's scope lookup so code
	// generation never has to re-derive binding from names (which would be
	// ambiguous under shadowing).
	ResolvedDeclI int
}

// Tree is the whole AST for one compiled source file: a flat, growable array
// of nodes plus their extra data, both 1-indexed (index 0 reserved).
type Tree struct {
	Nodes  []Node
	Extras []Extra

	// TopLevel lists, in source order, the indices of top-level function and
	// property declarations (spec grammar: file := topLevel*).
	TopLevel []int
}

// NewTree returns an empty Tree with its sentinel index 0 entries populated.
func NewTree() *Tree {
	return &Tree{
		Nodes:  []Node{{}},
		Extras: []Extra{{}},
	}
}

// Add appends n to the tree and returns its index.
func (t *Tree) Add(n Node) int {
	t.Nodes = append(t.Nodes, n)
	return len(t.Nodes) - 1
}

// AddExtra appends e to the extra-data table and returns its index.
func (t *Tree) AddExtra(e Extra) int {
	t.Extras = append(t.Extras, e)
	return len(t.Extras) - 1
}

// Reserve appends a zero-valued node and returns its index, to be filled in
// later by the caller (used for FunctionDef forward patching, spec §3).
func (t *Tree) Reserve() int {
	return t.Add(Node{})
}

// Node returns a pointer to the node at index i; callers must not retain it
// across further calls to Add, since the backing array may grow and move.
func (t *Tree) Node(i int) *Node { return &t.Nodes[i] }

// Extra returns a pointer to the extra-data entry at index i.
func (t *Tree) Extra(i int) *Extra { return &t.Extras[i] }
