// Package codegen lowers a typed ast.Tree into JVM bytecode, one method at
// a time (spec §4.7): it maintains a growing code byte stream, a live
// Frame, and a list of pending stack-map frame snapshots that get resolved
// once the method is complete (spec §4.8).
package codegen

import (
	"fmt"

	"github.com/gaultier/kotlinc-lite/lang/archive"
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// Generator holds everything needed to emit one class file's worth of
// methods: the shared type table, the class's constant pool, and per-
// method scratch state reset by Method.
type Generator struct {
	Types  *types.Table
	Tree   *ast.Tree
	Toks   *lexer.Tokens
	Pool   *classfile.Pool
	Loader *archive.Loader // may be nil if the compiled file never calls an @InlineOnly stdlib function

	// localSlot maps a VarDef/FunctionParam AST node index to its physical
	// local slot, valid only during the current method's generation (spec
	// §4.7: "a scope list mapping AST node indices to physical local
	// slots").
	localSlot map[int]int

	code       []byte
	frame      *Frame
	frames     []classfile.ResolvedFrame
	lines      []classfile.LineNumberEntry
	returnType types.Index

	err error
}

// New returns a Generator sharing tbl and pool across every method of one
// class file. loader may be nil if the compiled file is known not to call
// any @InlineOnly standard library function.
func New(tbl *types.Table, tree *ast.Tree, toks *lexer.Tokens, pool *classfile.Pool, loader *archive.Loader) *Generator {
	return &Generator{Types: tbl, Tree: tree, Toks: toks, Pool: pool, Loader: loader}
}

// Method generates the Code attribute for the FunctionDef at fnI.
func (g *Generator) Method(fnI int) (classfile.Code, error) {
	g.localSlot = make(map[int]int)
	g.code = nil
	g.frame = newFrame()
	g.frames = nil
	g.lines = nil
	g.err = nil

	n := g.Tree.Node(fnI)
	params := g.Tree.Node(n.Lhs)
	methodIdx := types.Index(g.Tree.Extra(n.ExtraDataI).ResolvedMethodI)
	method := g.Types.Get(methodIdx).Method
	g.returnType = method.ReturnType

	for pi, paramI := range params.Children {
		g.allocLocalFor(paramI, method.ArgumentTypes[pi])
	}

	g.genBlock(n.Rhs)

	// fall off the end of a Unit-returning function: emit an implicit
	// return.
	if method.ReturnType == g.Types.WellKnown(types.Unit) {
		g.emit1(opReturn)
	}

	if g.err != nil {
		return classfile.Code{}, g.err
	}

	return classfile.Code{
		MaxStack:    uint16(g.frame.maxStack),
		MaxLocals:   uint16(g.frame.maxLocals),
		Bytecode:    g.code,
		LineNumbers: g.lines,
		Frames:      classfile.ResolveFrames(g.frames),
	}, nil
}

func (g *Generator) fail(format string, args ...interface{}) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

func (g *Generator) pc() int { return len(g.code) }

func (g *Generator) emit1(op byte) { g.code = append(g.code, op) }

func (g *Generator) emit2(op byte, operand uint16) {
	g.code = append(g.code, op, byte(operand>>8), byte(operand))
}

func (g *Generator) emit1WithU8(op byte, operand byte) {
	g.code = append(g.code, op, operand)
}

// emitJumpConditionally writes op followed by a two-byte placeholder,
// returning the instruction's start pc for a later patchJump (spec §4.7).
func (g *Generator) emitJumpConditionally(op byte) int {
	at := g.pc()
	g.code = append(g.code, op, 0, 0)
	return at
}

func (g *Generator) emitJump() int {
	return g.emitJumpConditionally(opGoto)
}

// patchJump overwrites the two placeholder bytes at the jump instruction
// starting at 'at' with the signed 16-bit delta to targetPC, relative to
// the instruction's own start pc (JVMS §4.7.3 / spec §4.7).
func (g *Generator) patchJump(at int, targetPC int) {
	delta := int16(targetPC - at)
	g.code[at+1] = byte(delta >> 8)
	g.code[at+2] = byte(delta)
}

// recordFrame snapshots the live frame at the current pc for later stack-
// map resolution (spec §4.7, §4.8).
func (g *Generator) recordFrame() {
	locals, stack := g.frame.snapshot()
	g.frames = append(g.frames, classfile.ResolvedFrame{PC: g.pc(), Locals: locals, Stack: stack})
}

func (g *Generator) allocLocalFor(nodeI int, typeI types.Index) int {
	v, wc := verifTypeOf(g.Types, typeI)
	slot := g.frame.allocLocal(v, wc)
	g.localSlot[nodeI] = slot
	return slot
}

// verifTypeOf maps a resolver Type index to its stack-map verification-type
// tag and physical word count.
func verifTypeOf(tbl *types.Table, idx types.Index) (classfile.VerificationType, int) {
	k := tbl.Get(concretizeForCodegen(tbl, idx)).Kind
	switch k {
	case types.Long:
		return classfile.VerificationType{Tag: classfile.VerifLong}, 2
	case types.Double:
		return classfile.VerificationType{Tag: classfile.VerifDouble}, 2
	case types.Boolean, types.Byte, types.Char, types.Short, types.Int:
		return classfile.VerificationType{Tag: classfile.VerifInteger}, 1
	case types.Float:
		return classfile.VerificationType{Tag: classfile.VerifFloat}, 1
	default:
		// Instance/String/Any/Array: represented by a CONSTANT_Class pool
		// index the caller fills in (0 here; String/Any literals go through
		// ldc and never need a locals slot in this language subset).
		return classfile.VerificationType{Tag: classfile.VerifObject}, 1
	}
}

func concretizeForCodegen(tbl *types.Table, idx types.Index) types.Index {
	t := tbl.Get(idx)
	if t.Kind != types.IntegerLiteral {
		return idx
	}
	if t.Widens&types.IntKindInt != 0 {
		return tbl.WellKnown(types.Int)
	}
	return tbl.WellKnown(types.Long)
}

func isWide(tbl *types.Table, idx types.Index) bool {
	k := tbl.Get(concretizeForCodegen(tbl, idx)).Kind
	return k == types.Long || k == types.Double
}
