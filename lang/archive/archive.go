// Package archive implements the three ways the compiler can load a class
// by fully-qualified name off the classpath: a directory layout, a JAR, or
// a JMOD (spec §4.5). All three funnel through Loader.ingest, which parses
// the raw class-file bytes and registers the resulting Instance type (plus
// its Method/Constructor members) into a shared types.Table.
package archive

import (
	"fmt"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// inlineOnlyDescriptor is the sentinel RuntimeInvisibleAnnotations type
// descriptor the resolver looks for when deciding whether a standard
// library method's body should be inlined at the call site rather than
// invoked (spec §4.5, §4.7).
const inlineOnlyDescriptor = "Lkotlin/internal/InlineOnly;"

// Entry is one classpath entry: a directory, a .jar, or a .jmod.
type Entry interface {
	// Load returns the raw .class bytes for fqn (slash form, no extension),
	// or ok=false if this entry has no matching class.
	Load(fqn string) (data []byte, ok bool, err error)
}

// Loader resolves fully-qualified class names against an ordered list of
// classpath entries, interning the result into Types.
type Loader struct {
	Entries []Entry
	Types   *types.Table

	// loaded tracks fqns already ingested, so re-resolving the same name
	// (e.g. while walking a super chain) is a cache hit rather than a
	// re-parse.
	loaded map[string]types.Index

	// pools keeps each ingested class's own constant pool around, keyed by
	// fully qualified name, so an @InlineOnly method's cloned Code bytes can
	// later be reinterpreted against the pool they were read from (spec
	// §4.7's import_constant).
	pools map[string]*classfile.Pool
}

// NewLoader returns a Loader backed by tbl, which must already have its
// eleven well-known primitive slots populated (types.NewTable does this).
func NewLoader(tbl *types.Table, entries ...Entry) *Loader {
	return &Loader{
		Entries: entries,
		Types:   tbl,
		loaded:  make(map[string]types.Index),
		pools:   make(map[string]*classfile.Pool),
	}
}

// SourcePool returns the constant pool of a previously ingested class, for
// resolving an @InlineOnly method's ImportedPoolSourceFQN back to the pool
// its cloned Code bytes reference.
func (l *Loader) SourcePool(fqn string) (*classfile.Pool, bool) {
	p, ok := l.pools[fqn]
	return p, ok
}

// Resolve loads and interns the class named by fqn (slash form), trying
// each classpath entry in order, the first one that has it wins (spec
// §4.6's "for each class-path entry: try the directory layout, then if the
// entry is a JAR, load it on demand").
func (l *Loader) Resolve(fqn string) (types.Index, error) {
	if i, ok := l.loaded[fqn]; ok {
		return i, nil
	}
	if i, ok := l.Types.LookupInstance(fqn); ok {
		l.loaded[fqn] = i
		return i, nil
	}

	for _, e := range l.Entries {
		data, ok, err := e.Load(fqn)
		if err != nil {
			return 0, fmt.Errorf("archive: loading %s: %w", fqn, err)
		}
		if !ok {
			continue
		}
		return l.ingest(fqn, data)
	}
	return 0, fmt.Errorf("archive: class not found on classpath: %s", fqn)
}

// ingest parses raw into a classfile.ClassFile and registers an Instance
// type plus its Method/Constructor members in Types (spec §4.5's "common
// ingest a class file and register it" finalizer shared by all three
// loaders).
func (l *Loader) ingest(fqn string, raw []byte) (types.Index, error) {
	cf, err := classfile.Read(raw)
	if err != nil {
		return 0, fmt.Errorf("archive: parsing %s: %w", fqn, err)
	}

	thisEntry := cf.Pool.Get(cf.ThisClass)
	thisFQN := cf.Pool.Get(thisEntry.NameIndex).Utf8
	pkg := ""
	if slash := strings.LastIndexByte(thisFQN, '/'); slash >= 0 {
		pkg = thisFQN[:slash]
	}

	idx := l.Types.AddInstance(thisFQN, pkg)
	l.loaded[fqn] = idx
	l.pools[thisFQN] = cf.Pool

	if cf.SuperClass != 0 {
		superEntry := cf.Pool.Get(cf.SuperClass)
		superFQN := cf.Pool.Get(superEntry.NameIndex).Utf8
		// the super class is loaded and ingested right away, not on the
		// first walk of the chain; if it cannot be loaded, SuperTypeI stays 0
		// and the chain ends at this class.
		if superFQN != thisFQN {
			superIdx, err := l.Resolve(superFQN)
			if err == nil {
				l.Types.Get(idx).SuperTypeI = superIdx
			}
		}
	}

	for _, m := range cf.Methods {
		if err := l.ingestMethod(cf, idx, thisFQN, m); err != nil {
			return 0, err
		}
	}

	return idx, nil
}

func (l *Loader) ingestMethod(cf *classfile.ClassFile, ownerIdx types.Index, ownerFQN string, m classfile.Method) error {
	name := cf.Pool.Get(m.NameIndex).Utf8
	descriptor := cf.Pool.Get(m.DescriptorIndex).Utf8

	// <clinit> is a compiler-synthesized artifact, never a callable.
	if name == "<clinit>" {
		return nil
	}

	info, err := l.Types.ParseMethodDescriptor(descriptor)
	if err != nil {
		return fmt.Errorf("archive: method %s.%s%s: %w", ownerFQN, name, descriptor, err)
	}
	info.Name = name
	info.ThisClassType = ownerIdx
	info.AccessFlags = m.AccessFlags
	info.IsStatic = m.AccessFlags&classfile.AccStatic != 0

	kind := types.Method
	if name == "<init>" {
		kind = types.Constructor
	}

	for _, a := range m.Attributes {
		if cf.AttrName(a) == "RuntimeInvisibleAnnotations" && hasInlineOnlyAnnotation(cf, a) {
			info.IsInlineOnly = true
			info.AccessFlags = (info.AccessFlags &^ classfile.AccPrivate) | classfile.AccPublic
		}
	}

	if info.IsInlineOnly {
		for _, a := range m.Attributes {
			if cf.AttrName(a) == "Code" {
				code, _ := decodeCodeBytecode(a.Info)
				info.InlineCode = append([]byte(nil), code...)
				info.ImportedPoolSourceFQN = ownerFQN
			}
		}
	}

	l.Types.AddMethod(kind, info)
	return nil
}

// decodeCodeBytecode extracts just the raw bytecode array out of a Code
// attribute's serialized info bytes (JVMS §4.7.3: max_stack, max_locals,
// code_length, code[...]).
func decodeCodeBytecode(info []byte) (code []byte, rest []byte) {
	if len(info) < 8 {
		return nil, info
	}
	length := uint32(info[4])<<24 | uint32(info[5])<<16 | uint32(info[6])<<8 | uint32(info[7])
	end := 8 + int(length)
	if end > len(info) {
		end = len(info)
	}
	return info[8:end], info[end:]
}

// hasInlineOnlyAnnotation decodes a RuntimeInvisibleAnnotations attribute
// just far enough to check whether any entry's type descriptor matches the
// InlineOnly sentinel (JVMS §4.7.16).
func hasInlineOnlyAnnotation(cf *classfile.ClassFile, attr classfile.Attribute) bool {
	info := attr.Info
	if len(info) < 2 {
		return false
	}
	numAnnotations := int(info[0])<<8 | int(info[1])
	pos := 2
	for i := 0; i < numAnnotations && pos+2 <= len(info); i++ {
		typeIdx := uint16(info[pos])<<8 | uint16(info[pos+1])
		pos += 2
		if cf.Pool.Get(typeIdx).Utf8 == inlineOnlyDescriptor {
			return true
		}
		// skip element_value_pairs: not needed for the sentinel check, and
		// InlineOnly itself carries none, so further entries (if any) start
		// immediately after — conservatively stop here since nested
		// annotations aren't used by the standard library's InlineOnly.
		numPairs := int(info[pos])<<8 | int(info[pos+1])
		pos += 2
		if numPairs != 0 {
			break
		}
	}
	return false
}
