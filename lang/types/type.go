// Package types implements the type table and the bidirectional JVM
// descriptor codec (spec §4.4). Types are modeled as a single sum type
// (Kind + payload) rather than an interface hierarchy, and are appended to a
// single growable Table addressed by small integer indices, mirroring the
// index-based design used throughout the compiler (spec §9).
package types

import "github.com/dolthub/swiss"

// Kind is the tag of the Type sum type.
type Kind uint8

//nolint:revive
const (
	Any Kind = iota
	Unit
	Boolean
	Byte
	Char
	Short
	Int
	Float
	Long
	Double
	String

	Method
	Instance
	Array
	IntegerLiteral
	Constructor
)

// IntKind is a bitmask of integer kinds, used both for IntegerLiteral's
// "which integer kinds this literal may satisfy" payload and for the
// widening subtype rule (spec §4.6).
type IntKind uint8

const (
	IntKindByte IntKind = 1 << iota
	IntKindShort
	IntKindInt
	IntKindLong
)

// Index is an index into a Table. Index 0 is the Any type and also stands for
// "not yet resolved" (see Table).
type Index int

// wellKnownOrder lists the indices pre-reserved for primitive types, in the fixed
// order spec §3 requires (indices 0..10).
var wellKnownOrder = []Kind{Any, Unit, Boolean, Byte, Char, Short, Int, Float, Long, Double, String}

// Method and Constructor payload: the things the resolver and codegen need
// about a callable.
type MethodInfo struct {
	Name           string
	SourceFileName string
	SourceLine     int
	ArgumentTypes  []Index
	ReturnType     Index
	AccessFlags    uint16
	ThisClassType  Index
	IsStatic       bool
	IsInlineOnly   bool

	// InlineCode, if IsInlineOnly, is a clone of the method's Code attribute
	// bytes, and ImportedPoolSourceFQN names the class file the constants
	// referenced by InlineCode must be imported from (spec §4.5, §4.7).
	InlineCode            []byte
	ImportedPoolSourceFQN string
}

// Type is one entry of the type table: a Kind tag plus the fields that are
// meaningful for that kind (spec §3's "variant over {...}" with per-variant
// payloads, flattened into one struct since Go lacks a compact tagged
// union).
type Type struct {
	Kind Kind

	// shared fields (Instance/Array/Method/Constructor)
	ThisClassName  string // fully qualified, slash form: java/lang/String
	SuperClassName string
	PackageName    string
	SuperTypeI     Index // set when the class is loaded; 0 if the super class could not be loaded

	// Array
	ElementTypeI Index

	// IntegerLiteral
	Widens IntKind

	// Method / Constructor
	Method *MethodInfo
}

// Table is the growable, 0-based array of interned types. Index 0 is the
// reserved sentinel (Kind == Any, by convention — "no type" contexts should
// use Index(0) only before resolution, not as a real Any value; to write an
// actual Any, use WellKnown(Any) which is also 0, since Any is wellKnownOrder[0]
// — this is intentional: an absent type_i and the Any type share index 0,
// exactly as worded in spec §3's "type_i — assigned by the resolver; 0 before
// resolution").
type Table struct {
	Types []Type

	// byFQN indexes Instance types (and lowered primitives, see AddInstance)
	// by fully qualified name, for the resolver's fast lookup (spec §4.6).
	byFQN *swiss.Map[string, Index]
}

// NewTable returns a Table with the eleven well-known primitive slots
// pre-populated at indices 0..10, in the fixed order spec §3 mandates.
func NewTable() *Table {
	t := &Table{byFQN: swiss.NewMap[string, Index](64)}
	for _, k := range wellKnownOrder {
		t.Types = append(t.Types, Type{Kind: k})
	}
	return t
}

// WellKnown returns the pre-reserved index for one of the eleven primitive
// kinds. It panics if k is not one of those eleven — callers should only
// pass kind literals, never a value read from untrusted input.
func (t *Table) WellKnown(k Kind) Index {
	for i, wk := range wellKnownOrder {
		if wk == k {
			return Index(i)
		}
	}
	panic("types: not a well-known primitive kind")
}

// Get returns the Type at index i.
func (t *Table) Get(i Index) *Type { return &t.Types[i] }

// add appends typ and returns its new index.
func (t *Table) add(typ Type) Index {
	t.Types = append(t.Types, typ)
	return Index(len(t.Types) - 1)
}

// boxedToPrimitive canonicalizes well-known java.lang boxed wrapper fully
// qualified names to their primitive Kind, so that the compiler can avoid
// autoboxing wherever it statically knows the value fits a primitive (spec
// §4.4: "this lowers it to the corresponding primitive kind").
var boxedToPrimitive = map[string]Kind{
	"java/lang/Boolean":   Boolean,
	"java/lang/Byte":      Byte,
	"java/lang/Character": Char,
	"java/lang/Short":     Short,
	"java/lang/Integer":   Int,
	"java/lang/Float":     Float,
	"java/lang/Long":      Long,
	"java/lang/Double":    Double,
	"java/lang/String":    String,
	"java/lang/Object":    Any,
}

// AddInstance interns an Instance type for the given fully qualified name
// (slash form). If fqn is a recognized boxed primitive wrapper, the
// well-known primitive index is returned instead of allocating a new
// Instance entry (spec §4.4 lowering rule).
func (t *Table) AddInstance(fqn, pkg string) Index {
	if k, ok := boxedToPrimitive[fqn]; ok {
		return t.WellKnown(k)
	}
	if i, ok := t.byFQN.Get(fqn); ok {
		return i
	}
	i := t.add(Type{Kind: Instance, ThisClassName: fqn, PackageName: pkg})
	t.byFQN.Put(fqn, i)
	return i
}

// LookupInstance returns the index of an already-interned Instance type by
// fully qualified name, or 0 (+ false) if not yet loaded.
func (t *Table) LookupInstance(fqn string) (Index, bool) {
	return t.byFQN.Get(fqn)
}

// AddArray interns an Array type with the given element type.
func (t *Table) AddArray(elem Index) Index {
	return t.add(Type{Kind: Array, ElementTypeI: elem})
}

// AddIntegerLiteral interns a fresh IntegerLiteral type with the given
// widens bitmask (each literal gets its own entry since two literals of
// different magnitude can satisfy different integer kinds).
func (t *Table) AddIntegerLiteral(widens IntKind) Index {
	return t.add(Type{Kind: IntegerLiteral, Widens: widens})
}

// AddMethod interns a Method or Constructor type.
func (t *Table) AddMethod(kind Kind, info *MethodInfo) Index {
	return t.add(Type{Kind: kind, Method: info, ThisClassName: info.Name})
}

// Name returns a short, human-readable name for diagnostics (spec §7
// error messages name both sides of a type mismatch).
func (t *Table) Name(i Index) string {
	typ := t.Get(i)
	switch typ.Kind {
	case Any:
		return "kotlin.Any"
	case Unit:
		return "kotlin.Unit"
	case Boolean:
		return "kotlin.Boolean"
	case Byte:
		return "kotlin.Byte"
	case Char:
		return "kotlin.Char"
	case Short:
		return "kotlin.Short"
	case Int:
		return "kotlin.Int"
	case Float:
		return "kotlin.Float"
	case Long:
		return "kotlin.Long"
	case Double:
		return "kotlin.Double"
	case String:
		return "kotlin.String"
	case Instance:
		return dotted(typ.ThisClassName)
	case Array:
		return t.Name(typ.ElementTypeI) + "[]"
	case IntegerLiteral:
		return "<integer literal>"
	case Method, Constructor:
		return typ.Method.Name
	default:
		return "<unknown>"
	}
}

func dotted(slashFQN string) string {
	out := make([]byte, len(slashFQN))
	copy(out, slashFQN)
	for i, b := range out {
		if b == '/' {
			out[i] = '.'
		}
	}
	return string(out)
}
