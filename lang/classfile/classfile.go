package classfile

const (
	Magic = 0xCAFEBABE

	// MajorVersion58 is Java 14; the compiler targets a fixed, modern class
	// file version rather than tracking the host JVM's own version.
	MajorVersion58 = 58
	MinorVersion0  = 0
)

// Access flags (JVMS §4.1, §4.5, §4.6), the subset this compiler emits.
const (
	AccPublic  uint16 = 0x0001
	AccPrivate uint16 = 0x0002
	AccStatic  uint16 = 0x0008
	AccFinal   uint16 = 0x0010
	AccSuper   uint16 = 0x0020
)

// Field is a class-file field_info (JVMS §4.5).
type Field struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Method is a class-file method_info (JVMS §4.6).
type Method struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Attribute is a generic attribute_info: a name index plus opaque, already
// serialized info bytes. Structured attributes (Code, StackMapTable, ...)
// are built into this shape by their own encoders before being attached.
type Attribute struct {
	NameIndex uint16
	Info      []byte
}

// LineNumberEntry is one entry of a LineNumberTable attribute.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// ExceptionHandler is one entry of a Code attribute's exception table. The
// compiler does not emit try/catch (no such construct in the source
// language) but the field is kept since the writer always emits the table,
// empty, as JVMS §4.7.3 requires.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// Code holds the pieces of a Code attribute (JVMS §4.7.3) before encoding;
// MaxStack/MaxLocals are the method's physical word-count envelopes (spec
// §4.6).
type Code struct {
	MaxStack   uint16
	MaxLocals  uint16
	Bytecode   []byte
	Exceptions []ExceptionHandler
	LineNumbers []LineNumberEntry
	Frames     []ResolvedFrame
}

// ClassFile is the top-level structure the writer serializes (JVMS §4.1).
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *Pool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute
}

// New returns a ClassFile ready to accumulate fields/methods, with its
// constant pool initialized and this_class/super_class already interned.
func New(thisFQN, superFQN string) *ClassFile {
	pool := NewPool()
	return &ClassFile{
		MinorVersion: MinorVersion0,
		MajorVersion: MajorVersion58,
		Pool:         pool,
		AccessFlags:  AccPublic | AccSuper | AccFinal,
		ThisClass:    pool.AddClass(thisFQN),
		SuperClass:   pool.AddClass(superFQN),
	}
}

// SetSourceFile attaches a SourceFile attribute (JVMS §4.7.10).
func (c *ClassFile) SetSourceFile(name string) {
	nameIdx := c.Pool.AddUtf8("SourceFile")
	sourceIdx := c.Pool.AddUtf8(name)
	buf := make([]byte, 2)
	putU16(buf, 0, sourceIdx)
	c.Attributes = append(c.Attributes, Attribute{NameIndex: nameIdx, Info: buf})
}
