// Package classfile implements the JVM class-file binary format (spec
// §4.3): a constant pool, the class-file struct, a binary writer, and
// stack-map frame encoding. Naming follows the JVM specification's own
// constant-pool tag vocabulary (Utf8, Class, Fieldref, ...), the same
// vocabulary used by the classloaders studied in the example pack.
package classfile

import "github.com/dolthub/swiss"

// Tag identifies the kind of a constant pool entry (JVMS §4.4).
type Tag uint8

const (
	TagUtf8              Tag = 1
	TagInteger           Tag = 3
	TagFloat             Tag = 4
	TagLong              Tag = 5
	TagDouble            Tag = 6
	TagClass             Tag = 7
	TagString            Tag = 8
	TagFieldref          Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType       Tag = 12
	TagMethodHandle      Tag = 15
	TagMethodType        Tag = 16
	TagDynamic           Tag = 17
	TagInvokeDynamic     Tag = 18
	TagModule            Tag = 19
	TagPackage           Tag = 20
)

// Entry is one constant pool slot. Long and Double occupy two consecutive
// indices; the second is a Tombstone entry (JVMS §4.4.5's infamous quirk).
type Entry struct {
	Tag Tag

	// TagUtf8
	Utf8 string

	// TagInteger / TagFloat (reinterpreted bits) / TagLong / TagDouble
	Int32 int32
	Int64 int64

	// TagClass / TagString / TagMethodType / TagModule / TagPackage: index of
	// the referenced Utf8 (or, for Class/Module/Package, of the class-name
	// Utf8) entry.
	NameIndex uint16

	// TagFieldref / TagMethodref / TagInterfaceMethodref
	ClassIndex       uint16
	NameAndTypeIndex uint16

	// TagNameAndType
	DescriptorIndex uint16

	// TagMethodHandle
	RefKind  uint8
	RefIndex uint16

	// TagDynamic / TagInvokeDynamic
	BootstrapMethodAttrIndex uint16
}

// Tombstone marks the second slot consumed by a Long or Double entry; the
// JVM spec requires readers to skip it, never to dereference it.
type Tombstone struct{}

func (Tombstone) isSlot() {}

// slot is either an Entry or a Tombstone.
type slot struct {
	entry     Entry
	tombstone bool
}

// Pool is the constant pool: a 1-based growable array (index 0 is unused,
// matching the JVM's own 1-based indexing) plus a dedup index so that
// repeated adds of an identical constant return the same index (spec §4.3:
// "the constant pool grows monotonically; entries, once written, never move
// or renumber" — dedup happens before that point, at Add time).
type Pool struct {
	slots []slot // slots[0] unused
	dedup *swiss.Map[string, uint16]
}

// NewPool returns an empty Pool with the conventional unused slot 0.
func NewPool() *Pool {
	return &Pool{
		slots: []slot{{}},
		dedup: swiss.NewMap[string, uint16](16),
	}
}

// Len returns the number of slots including the unused slot 0, which is the
// JVM's constant_pool_count (used slots + 1).
func (p *Pool) Len() int { return len(p.slots) }

// Get returns the entry at index i. Calling Get on a tombstone index panics.
func (p *Pool) Get(i uint16) Entry {
	s := p.slots[i]
	if s.tombstone {
		panic("classfile: read of constant pool tombstone slot")
	}
	return s.entry
}

func (p *Pool) append(e Entry, wide bool) uint16 {
	i := uint16(len(p.slots))
	p.slots = append(p.slots, slot{entry: e})
	if wide {
		p.slots = append(p.slots, slot{tombstone: true})
	}
	return i
}

func (p *Pool) dedupKey(kind byte, key string) string {
	return string(kind) + key
}

func (p *Pool) internUtf8(kind byte, key string, e Entry) uint16 {
	k := p.dedupKey(kind, key)
	if i, ok := p.dedup.Get(k); ok {
		return i
	}
	i := p.append(e, false)
	p.dedup.Put(k, i)
	return i
}

// AddUtf8 interns a UTF-8 constant, returning its (possibly pre-existing)
// index.
func (p *Pool) AddUtf8(s string) uint16 {
	return p.internUtf8('u', s, Entry{Tag: TagUtf8, Utf8: s})
}

// AddClass interns a CONSTANT_Class_info for the given internal (slash-form)
// class name.
func (p *Pool) AddClass(fqn string) uint16 {
	nameIdx := p.AddUtf8(fqn)
	return p.internUtf8('c', fqn, Entry{Tag: TagClass, NameIndex: nameIdx})
}

// AddString interns a CONSTANT_String_info for a string literal.
func (p *Pool) AddString(s string) uint16 {
	utf8Idx := p.AddUtf8(s)
	return p.internUtf8('s', s, Entry{Tag: TagString, NameIndex: utf8Idx})
}

// AddInteger interns a 32-bit int/short/byte/char/boolean constant.
func (p *Pool) AddInteger(v int32) uint16 {
	key := int32Key(v)
	if i, ok := p.dedup.Get(p.dedupKey('i', key)); ok {
		return i
	}
	i := p.append(Entry{Tag: TagInteger, Int32: v}, false)
	p.dedup.Put(p.dedupKey('i', key), i)
	return i
}

// AddFloat interns a 32-bit float constant (bits stored in Int32).
func (p *Pool) AddFloat(bits int32) uint16 {
	key := int32Key(bits)
	if i, ok := p.dedup.Get(p.dedupKey('f', key)); ok {
		return i
	}
	i := p.append(Entry{Tag: TagFloat, Int32: bits}, false)
	p.dedup.Put(p.dedupKey('f', key), i)
	return i
}

// int32Key renders v as a fixed 4-byte string suitable for use as a dedup
// map key (a plain numeric-to-rune cast would collide: rune(-1) and
// rune(0xFFFFFFFF) both normalize to the same replacement character).
func int32Key(v int32) string {
	return string([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// AddLong interns a 64-bit long constant; it (and its trailing tombstone)
// always occupies two consecutive slots.
func (p *Pool) AddLong(v int64) uint16 {
	key := p.dedupKey('l', int32Key(int32(v>>32))+int32Key(int32(v)))
	if i, ok := p.dedup.Get(key); ok {
		return i
	}
	i := p.append(Entry{Tag: TagLong, Int64: v}, true)
	p.dedup.Put(key, i)
	return i
}

// AddDouble interns a 64-bit double constant (bits stored in Int64).
func (p *Pool) AddDouble(bits int64) uint16 {
	key := p.dedupKey('d', int32Key(int32(bits>>32))+int32Key(int32(bits)))
	if i, ok := p.dedup.Get(key); ok {
		return i
	}
	i := p.append(Entry{Tag: TagDouble, Int64: bits}, true)
	p.dedup.Put(key, i)
	return i
}

// AddNameAndType interns a CONSTANT_NameAndType_info.
func (p *Pool) AddNameAndType(name, descriptor string) uint16 {
	nameIdx := p.AddUtf8(name)
	descIdx := p.AddUtf8(descriptor)
	key := name + "\x00" + descriptor
	if i, ok := p.dedup.Get(p.dedupKey('n', key)); ok {
		return i
	}
	i := p.append(Entry{Tag: TagNameAndType, NameIndex: nameIdx, DescriptorIndex: descIdx}, false)
	p.dedup.Put(p.dedupKey('n', key), i)
	return i
}

// AddFieldref interns a CONSTANT_Fieldref_info.
func (p *Pool) AddFieldref(classFQN, name, descriptor string) uint16 {
	return p.addRef(TagFieldref, 'F', classFQN, name, descriptor)
}

// AddMethodref interns a CONSTANT_Methodref_info.
func (p *Pool) AddMethodref(classFQN, name, descriptor string) uint16 {
	return p.addRef(TagMethodref, 'M', classFQN, name, descriptor)
}

// AddInterfaceMethodref interns a CONSTANT_InterfaceMethodref_info.
func (p *Pool) AddInterfaceMethodref(classFQN, name, descriptor string) uint16 {
	return p.addRef(TagInterfaceMethodref, 'I', classFQN, name, descriptor)
}

func (p *Pool) addRef(tag Tag, kind byte, classFQN, name, descriptor string) uint16 {
	classIdx := p.AddClass(classFQN)
	natIdx := p.AddNameAndType(name, descriptor)
	key := classFQN + "\x00" + name + "\x00" + descriptor
	if i, ok := p.dedup.Get(p.dedupKey(kind, key)); ok {
		return i
	}
	i := p.append(Entry{Tag: tag, ClassIndex: classIdx, NameAndTypeIndex: natIdx}, false)
	p.dedup.Put(p.dedupKey(kind, key), i)
	return i
}

// Import clones a single entry (transitively, including the class/name-
// and-type/utf8 entries it references) from src into p, returning p's index
// for the equivalent entry. This is how inline-only method bodies carry
// their constant-pool references across from the source class file to the
// caller's (spec §4.3, §4.7's import_constant).
func (p *Pool) Import(src *Pool, srcIndex uint16) uint16 {
	e := src.Get(srcIndex)
	switch e.Tag {
	case TagUtf8:
		return p.AddUtf8(e.Utf8)
	case TagInteger:
		return p.AddInteger(e.Int32)
	case TagFloat:
		return p.AddFloat(e.Int32)
	case TagLong:
		return p.AddLong(e.Int64)
	case TagDouble:
		return p.AddDouble(e.Int64)
	case TagClass:
		return p.AddClass(src.Get(e.NameIndex).Utf8)
	case TagString:
		return p.AddString(src.Get(e.NameIndex).Utf8)
	case TagNameAndType:
		return p.AddNameAndType(src.Get(e.NameIndex).Utf8, src.Get(e.DescriptorIndex).Utf8)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		classFQN := src.Get(src.Get(e.ClassIndex).NameIndex).Utf8
		nat := src.Get(e.NameAndTypeIndex)
		name := src.Get(nat.NameIndex).Utf8
		desc := src.Get(nat.DescriptorIndex).Utf8
		switch e.Tag {
		case TagFieldref:
			return p.AddFieldref(classFQN, name, desc)
		case TagMethodref:
			return p.AddMethodref(classFQN, name, desc)
		default:
			return p.AddInterfaceMethodref(classFQN, name, desc)
		}
	default:
		panic("classfile: import of unsupported constant pool tag")
	}
}
