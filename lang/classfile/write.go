package classfile

import "bytes"

func putU16(buf []byte, off int, v uint16) {
	buf[off] = byte(v >> 8)
	buf[off+1] = byte(v)
}

func putU32(buf []byte, off int, v uint32) {
	buf[off] = byte(v >> 24)
	buf[off+1] = byte(v >> 16)
	buf[off+2] = byte(v >> 8)
	buf[off+3] = byte(v)
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u16(v uint16) { w.buf.WriteByte(byte(v >> 8)); w.buf.WriteByte(byte(v)) }
func (w *writer) u32(v uint32) {
	w.buf.WriteByte(byte(v >> 24))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v))
}
func (w *writer) bytes(b []byte) { w.buf.Write(b) }

// Write serializes the class file to its on-disk big-endian binary form
// (JVMS §4.1).
func (c *ClassFile) Write() []byte {
	var w writer
	w.u32(Magic)
	w.u16(c.MinorVersion)
	w.u16(c.MajorVersion)

	w.u16(uint16(c.Pool.Len()))
	for i := 1; i < c.Pool.Len(); i++ {
		if c.Pool.slots[i].tombstone {
			continue
		}
		writeEntry(&w, c.Pool.slots[i].entry)
	}

	w.u16(c.AccessFlags)
	w.u16(c.ThisClass)
	w.u16(c.SuperClass)

	w.u16(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		w.u16(i)
	}

	w.u16(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		w.u16(f.AccessFlags)
		w.u16(f.NameIndex)
		w.u16(f.DescriptorIndex)
		writeAttributes(&w, f.Attributes)
	}

	w.u16(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		w.u16(m.AccessFlags)
		w.u16(m.NameIndex)
		w.u16(m.DescriptorIndex)
		writeAttributes(&w, m.Attributes)
	}

	writeAttributes(&w, c.Attributes)

	return w.buf.Bytes()
}

func writeAttributes(w *writer, attrs []Attribute) {
	w.u16(uint16(len(attrs)))
	for _, a := range attrs {
		w.u16(a.NameIndex)
		w.u32(uint32(len(a.Info)))
		w.bytes(a.Info)
	}
}

func writeEntry(w *writer, e Entry) {
	w.u8(uint8(e.Tag))
	switch e.Tag {
	case TagUtf8:
		b := []byte(e.Utf8)
		w.u16(uint16(len(b)))
		w.bytes(b)
	case TagInteger, TagFloat:
		w.u32(uint32(e.Int32))
	case TagLong, TagDouble:
		w.u32(uint32(e.Int64 >> 32))
		w.u32(uint32(e.Int64))
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		w.u16(e.NameIndex)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		w.u16(e.ClassIndex)
		w.u16(e.NameAndTypeIndex)
	case TagNameAndType:
		w.u16(e.NameIndex)
		w.u16(e.DescriptorIndex)
	case TagMethodHandle:
		w.u8(e.RefKind)
		w.u16(e.RefIndex)
	case TagDynamic, TagInvokeDynamic:
		w.u16(e.BootstrapMethodAttrIndex)
		w.u16(e.NameAndTypeIndex)
	default:
		panic("classfile: write of unsupported constant pool tag")
	}
}

// EncodeCode serializes a Code attribute's body (JVMS §4.7.3), given the
// pool it should intern "Code", "StackMapTable" and "LineNumberTable" names
// into, plus the resolved stack-map entries (spec §4.8 — empty if the
// method has no branch targets, in which case no StackMapTable attribute is
// emitted at all).
func EncodeCode(pool *Pool, code Code) Attribute {
	var w writer
	w.u16(code.MaxStack)
	w.u16(code.MaxLocals)
	w.u32(uint32(len(code.Bytecode)))
	w.bytes(code.Bytecode)

	w.u16(uint16(len(code.Exceptions)))
	for _, h := range code.Exceptions {
		w.u16(h.StartPC)
		w.u16(h.EndPC)
		w.u16(h.HandlerPC)
		w.u16(h.CatchType)
	}

	var attrs []Attribute
	if len(code.Frames) > 0 {
		attrs = append(attrs, EncodeStackMapTable(pool, code.Frames))
	}
	if len(code.LineNumbers) > 0 {
		attrs = append(attrs, encodeLineNumberTable(pool, code.LineNumbers))
	}
	writeAttributes(&w, attrs)

	nameIdx := pool.AddUtf8("Code")
	return Attribute{NameIndex: nameIdx, Info: w.buf.Bytes()}
}

func encodeLineNumberTable(pool *Pool, entries []LineNumberEntry) Attribute {
	var w writer
	w.u16(uint16(len(entries)))
	for _, e := range entries {
		w.u16(e.StartPC)
		w.u16(e.LineNumber)
	}
	nameIdx := pool.AddUtf8("LineNumberTable")
	return Attribute{NameIndex: nameIdx, Info: w.buf.Bytes()}
}
