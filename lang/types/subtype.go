package types

// integerKindOf returns the IntKind bit for a well-known integer primitive
// kind, or 0 if k is not an integer kind.
func integerKindOf(k Kind) IntKind {
	switch k {
	case Byte:
		return IntKindByte
	case Short:
		return IntKindShort
	case Int:
		return IntKindInt
	case Long:
		return IntKindLong
	default:
		return 0
	}
}

// widensTo reports whether the narrower integer kind 'from' may be widened
// to 'to' without a cast, per the fixed widening chain Byte < Short < Int <
// Long (spec §4.6). Short and Char are not mutually convertible.
func widensTo(from, to Kind) bool {
	rank := func(k Kind) int {
		switch k {
		case Byte:
			return 0
		case Short:
			return 1
		case Int:
			return 2
		case Long:
			return 3
		default:
			return -1
		}
	}
	fr, tr := rank(from), rank(to)
	return fr >= 0 && tr >= 0 && fr <= tr
}

// IsSubtype reports whether the type at 'sub' can be used where the type at
// 'super' is expected (spec §4.6): identity, Any as the universal
// supertype, integer widening, an IntegerLiteral satisfying any integer kind
// its Widens bitmask includes, String/Instance upcast via the super-chain,
// and invariant Array element types.
func (t *Table) IsSubtype(sub, super Index) bool {
	if sub == super {
		return true
	}
	superTyp := t.Get(super)
	if superTyp.Kind == Any {
		return true
	}
	subTyp := t.Get(sub)

	if subTyp.Kind == IntegerLiteral {
		if bit := integerKindOf(superTyp.Kind); bit != 0 {
			return subTyp.Widens&bit != 0
		}
		return false
	}

	if ik := integerKindOf(subTyp.Kind); ik != 0 {
		if superIk := integerKindOf(superTyp.Kind); superIk != 0 {
			return widensTo(subTyp.Kind, superTyp.Kind)
		}
		return false
	}

	if subTyp.Kind == Array && superTyp.Kind == Array {
		return subTyp.ElementTypeI == superTyp.ElementTypeI
	}

	if subTyp.Kind == Instance && superTyp.Kind == Instance {
		for cur := sub; cur != 0; {
			curTyp := t.Get(cur)
			if cur == super {
				return true
			}
			cur = curTyp.SuperTypeI
		}
		return false
	}

	return false
}

// MostSpecific attempts to pick the most specific of two candidate argument
// types for overload resolution (spec §4.9), returning -1 if a is strictly
// more specific, +1 if b is, or 0 if neither subtypes the other (the caller
// then treats the overload as ambiguous — see DESIGN.md's note on this open
// question).
func (t *Table) MostSpecific(a, b Index) int {
	aSubB := t.IsSubtype(a, b)
	bSubA := t.IsSubtype(b, a)
	switch {
	case aSubB && !bSubA:
		return -1
	case bSubA && !aSubB:
		return 1
	default:
		return 0
	}
}
