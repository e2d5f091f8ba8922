package types

import (
	"fmt"
	"strings"
)

// Descriptor renders the JVM field/method descriptor for the type at i
// (spec §4.4): primitives map to their single-letter codes, Instance to
// "Lfqn;", Array to "[" + element descriptor, and Method/Constructor to
// "(arg...)ret".
func (t *Table) Descriptor(i Index) string {
	var b strings.Builder
	t.writeDescriptor(&b, i)
	return b.String()
}

func (t *Table) writeDescriptor(b *strings.Builder, i Index) {
	typ := t.Get(i)
	switch typ.Kind {
	case Unit:
		b.WriteByte('V')
	case Boolean:
		b.WriteByte('Z')
	case Byte:
		b.WriteByte('B')
	case Char:
		b.WriteByte('C')
	case Short:
		b.WriteByte('S')
	case Int:
		b.WriteByte('I')
	case Float:
		b.WriteByte('F')
	case Long:
		b.WriteByte('J')
	case Double:
		b.WriteByte('D')
	case String:
		b.WriteString("Ljava/lang/String;")
	case Any:
		b.WriteString("Ljava/lang/Object;")
	case Instance:
		b.WriteByte('L')
		b.WriteString(typ.ThisClassName)
		b.WriteByte(';')
	case Array:
		b.WriteByte('[')
		t.writeDescriptor(b, typ.ElementTypeI)
	case Method, Constructor:
		b.WriteByte('(')
		for _, arg := range typ.Method.ArgumentTypes {
			t.writeDescriptor(b, arg)
		}
		b.WriteByte(')')
		if typ.Kind == Constructor {
			b.WriteByte('V')
		} else {
			t.writeDescriptor(b, typ.Method.ReturnType)
		}
	case IntegerLiteral:
		// an IntegerLiteral never survives to codegen undecided; callers that
		// reach here have a resolver bug.
		panic("types: cannot emit a descriptor for an unresolved integer literal")
	default:
		panic(fmt.Sprintf("types: cannot emit a descriptor for kind %d", typ.Kind))
	}
}

// ParseFieldDescriptor decodes a single JVM field descriptor into a Type
// index, interning any Instance/Array types it creates. It is used when
// loading external .class/.jar/.jmod entries (spec §5), where the only
// representation available is the raw descriptor string.
func (t *Table) ParseFieldDescriptor(desc string) (Index, error) {
	i, rest, err := t.parseOne(desc)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("types: trailing data after field descriptor %q: %q", desc, rest)
	}
	return i, nil
}

// ParseMethodDescriptor decodes a full "(args)ret" method descriptor into a
// Method Type (without a name — callers fill MethodInfo.Name separately).
func (t *Table) ParseMethodDescriptor(desc string) (*MethodInfo, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("types: malformed method descriptor %q: missing (", desc)
	}
	rest := desc[1:]
	var args []Index
	for len(rest) > 0 && rest[0] != ')' {
		i, r, err := t.parseOne(rest)
		if err != nil {
			return nil, err
		}
		args = append(args, i)
		rest = r
	}
	if len(rest) == 0 || rest[0] != ')' {
		return nil, fmt.Errorf("types: malformed method descriptor %q: missing )", desc)
	}
	rest = rest[1:]

	var ret Index
	if rest == "V" {
		ret = t.WellKnown(Unit)
	} else {
		i, r, err := t.parseOne(rest)
		if err != nil {
			return nil, err
		}
		if r != "" {
			return nil, fmt.Errorf("types: trailing data after method descriptor %q: %q", desc, r)
		}
		ret = i
	}
	return &MethodInfo{ArgumentTypes: args, ReturnType: ret}, nil
}

// parseOne decodes a single field-descriptor-shaped type prefix of s,
// returning the interned type and the unconsumed remainder.
func (t *Table) parseOne(s string) (Index, string, error) {
	if s == "" {
		return 0, "", fmt.Errorf("types: empty descriptor")
	}
	switch s[0] {
	case 'V':
		return t.WellKnown(Unit), s[1:], nil
	case 'Z':
		return t.WellKnown(Boolean), s[1:], nil
	case 'B':
		return t.WellKnown(Byte), s[1:], nil
	case 'C':
		return t.WellKnown(Char), s[1:], nil
	case 'S':
		return t.WellKnown(Short), s[1:], nil
	case 'I':
		return t.WellKnown(Int), s[1:], nil
	case 'F':
		return t.WellKnown(Float), s[1:], nil
	case 'J':
		return t.WellKnown(Long), s[1:], nil
	case 'D':
		return t.WellKnown(Double), s[1:], nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return 0, "", fmt.Errorf("types: malformed descriptor %q: unterminated L", s)
		}
		fqn := s[1:end]
		pkg := ""
		if slash := strings.LastIndexByte(fqn, '/'); slash >= 0 {
			pkg = fqn[:slash]
		}
		return t.AddInstance(fqn, pkg), s[end+1:], nil
	case '[':
		elem, rest, err := t.parseOne(s[1:])
		if err != nil {
			return 0, "", err
		}
		return t.AddArray(elem), rest, nil
	default:
		return 0, "", fmt.Errorf("types: malformed descriptor %q: unexpected byte %q", s, s[0])
	}
}
