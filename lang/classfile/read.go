package classfile

import "fmt"

// Read parses a class file's on-disk bytes back into a ClassFile. It
// understands every attribute the writer emits plus the ones the archive
// loader needs from externally-supplied class files (spec §4.3):
// SourceFile, Code, StackMapTable, LineNumberTable, Exceptions,
// InnerClasses, RuntimeInvisibleAnnotations. Unknown attributes are kept
// as opaque Attribute values (skipped by their declared length), never
// rejected.
func Read(raw []byte) (*ClassFile, error) {
	r := &reader{buf: raw}
	magic := r.u32()
	if magic != Magic {
		return nil, fmt.Errorf("classfile: bad magic number %#x", magic)
	}
	cf := &ClassFile{}
	cf.MinorVersion = r.u16()
	cf.MajorVersion = r.u16()
	if r.err != nil {
		return nil, r.err
	}

	pool, err := readPool(r)
	if err != nil {
		return nil, err
	}
	cf.Pool = pool

	cf.AccessFlags = r.u16()
	cf.ThisClass = r.u16()
	cf.SuperClass = r.u16()

	ifaceCount := r.u16()
	for i := uint16(0); i < ifaceCount; i++ {
		cf.Interfaces = append(cf.Interfaces, r.u16())
	}

	fieldCount := r.u16()
	for i := uint16(0); i < fieldCount; i++ {
		f := Field{AccessFlags: r.u16(), NameIndex: r.u16(), DescriptorIndex: r.u16()}
		f.Attributes = readAttributes(r)
		cf.Fields = append(cf.Fields, f)
	}

	methodCount := r.u16()
	for i := uint16(0); i < methodCount; i++ {
		m := Method{AccessFlags: r.u16(), NameIndex: r.u16(), DescriptorIndex: r.u16()}
		m.Attributes = readAttributes(r)
		cf.Methods = append(cf.Methods, m)
	}

	cf.Attributes = readAttributes(r)

	if r.err != nil {
		return nil, r.err
	}
	return cf, nil
}

func readPool(r *reader) (*Pool, error) {
	p := NewPool()
	count := r.u16()
	for i := uint16(1); i < count; i++ {
		tag := Tag(r.u8())
		switch tag {
		case TagUtf8:
			n := r.u16()
			s := string(r.take(int(n)))
			p.append(Entry{Tag: TagUtf8, Utf8: s}, false)
		case TagInteger:
			p.append(Entry{Tag: TagInteger, Int32: int32(r.u32())}, false)
		case TagFloat:
			p.append(Entry{Tag: TagFloat, Int32: int32(r.u32())}, false)
		case TagLong:
			hi, lo := r.u32(), r.u32()
			p.append(Entry{Tag: TagLong, Int64: int64(hi)<<32 | int64(lo)}, true)
			i++ // long/double occupy two pool indices
		case TagDouble:
			hi, lo := r.u32(), r.u32()
			p.append(Entry{Tag: TagDouble, Int64: int64(hi)<<32 | int64(lo)}, true)
			i++
		case TagClass, TagMethodType, TagModule, TagPackage:
			p.append(Entry{Tag: tag, NameIndex: r.u16()}, false)
		case TagString:
			p.append(Entry{Tag: tag, NameIndex: r.u16()}, false)
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			p.append(Entry{Tag: tag, ClassIndex: r.u16(), NameAndTypeIndex: r.u16()}, false)
		case TagNameAndType:
			p.append(Entry{Tag: tag, NameIndex: r.u16(), DescriptorIndex: r.u16()}, false)
		case TagMethodHandle:
			p.append(Entry{Tag: tag, RefKind: r.u8(), RefIndex: r.u16()}, false)
		case TagDynamic, TagInvokeDynamic:
			p.append(Entry{Tag: tag, BootstrapMethodAttrIndex: r.u16(), NameAndTypeIndex: r.u16()}, false)
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at entry %d", tag, i)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func readAttributes(r *reader) []Attribute {
	count := r.u16()
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIdx := r.u16()
		length := r.u32()
		info := r.take(int(length))
		attrs = append(attrs, Attribute{NameIndex: nameIdx, Info: append([]byte(nil), info...)})
	}
	return attrs
}

// AttrName resolves an attribute's name against the pool it was read from.
func (c *ClassFile) AttrName(a Attribute) string {
	return c.Pool.Get(a.NameIndex).Utf8
}

type reader struct {
	buf []byte
	pos int
	err error
}

func (r *reader) u8() uint8 {
	if r.err != nil || r.pos+1 > len(r.buf) {
		r.fail()
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	if r.err != nil || r.pos+2 > len(r.buf) {
		r.fail()
		return 0
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil || r.pos+4 > len(r.buf) {
		r.fail()
		return 0
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 | uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v
}

func (r *reader) take(n int) []byte {
	if r.err != nil || r.pos+n > len(r.buf) {
		r.fail()
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) fail() {
	if r.err == nil {
		r.err = fmt.Errorf("classfile: unexpected end of data at offset %d", r.pos)
	}
}
