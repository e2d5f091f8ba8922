package codegen

import (
	"fmt"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// genCall emits a resolved call: invokestatic for a static function,
// invokevirtual for an instance member (the receiver is the root of the
// Navigation chain the resolver already validated), or an inline-only
// expansion that splices the callee's own Code bytes in place of a call
// instruction (spec §4.7, §9).
func (g *Generator) genCall(i int) {
	n := g.Tree.Node(i)
	methodIdx := types.Index(g.Tree.Extra(n.ExtraDataI).ResolvedMethodI)
	method := g.Types.Get(methodIdx).Method

	if method.IsInlineOnly {
		g.genInlineCall(n, method)
		return
	}

	if !method.IsStatic {
		rootI := g.navigationRoot(n.Lhs)
		g.genExpr(rootI)
	}

	for ai, argI := range n.Children {
		g.genExprAs(argI, method.ArgumentTypes[ai])
	}

	owner := g.Types.Get(method.ThisClassType)
	desc := g.Types.Descriptor(methodIdx)
	methodrefIdx := g.Pool.AddMethodref(owner.ThisClassName, method.Name, desc)

	if method.IsStatic {
		g.emit2(opInvokestatic, methodrefIdx)
	} else {
		g.emit2(opInvokevirtual, methodrefIdx)
		g.pop() // receiver
	}
	for range n.Children {
		g.pop()
	}

	if g.Types.Get(method.ReturnType).Kind != types.Unit {
		g.push(method.ReturnType)
	}
}

// navigationRoot walks a right-leaning Navigation chain down to its
// innermost, non-Navigation expression (the receiver).
func (g *Generator) navigationRoot(i int) int {
	cur := i
	for {
		n := g.Tree.Node(cur)
		if n.Kind != ast.Navigation {
			return cur
		}
		cur = n.Lhs
	}
}

// genInlineCall expands a call to an @InlineOnly function by splicing its
// cloned Code bytes at the call site instead of emitting a real invoke
// instruction (spec §4.5, §4.7). Arguments are stored into fresh local
// slots mirroring the callee's own parameter slots (the callee's body
// addresses its parameters by the same small indices 0..n-1, since it was
// an instance-less static function), and every constant-pool reference the
// spliced bytes make is re-imported into this method's own pool via
// Pool.Import so the indices stay valid in the new class file.
func (g *Generator) genInlineCall(n *ast.Node, method *types.MethodInfo) {
	if g.Loader == nil {
		g.fail("codegen: call to @InlineOnly %s but no classpath loader was configured", method.Name)
		return
	}
	srcPool, ok := g.Loader.SourcePool(method.ImportedPoolSourceFQN)
	if !ok {
		g.fail("codegen: no cached constant pool for %s (source of inline %s)", method.ImportedPoolSourceFQN, method.Name)
		return
	}

	argSlots := make([]int, len(n.Children))
	for ai, argI := range n.Children {
		declT := method.ArgumentTypes[ai]
		g.genExprAs(argI, declT)
		g.pop()
		v, wc := verifTypeOf(g.Types, declT)
		slot := g.frame.allocLocal(v, wc)
		argSlots[ai] = slot
		g.storeLocal(slot, isWide(g.Types, declT))
	}

	body := stripTrailingReturn(method.InlineCode)
	out, err := spliceInlineBody(body, srcPool, g.Pool, argSlots)
	if err != nil {
		g.fail("codegen: inline expansion of %s failed: %v", method.Name, err)
		return
	}
	g.code = append(g.code, out...)

	if g.Types.Get(method.ReturnType).Kind != types.Unit {
		g.push(method.ReturnType)
	}
}

// stripTrailingReturn removes a single trailing return opcode
// (ireturn/lreturn/freturn/dreturn/areturn/return), since the inlined value
// keeps living on the caller's stack instead of leaving the callee's frame.
func stripTrailingReturn(code []byte) []byte {
	if len(code) == 0 {
		return code
	}
	switch code[len(code)-1] {
	case 0xac, 0xad, 0xae, 0xaf, 0xb0, 0xb1: // i/l/f/d/a return, return
		return code[:len(code)-1]
	default:
		return code
	}
}

// inlineOpInfo describes one opcode's total instruction length and, if it
// carries a constant-pool operand, that operand's byte width (1 for ldc, 2
// for everything else that references the pool).
type inlineOpInfo struct {
	length      int
	poolOperand int // 0 = none, 1 or 2 = operand byte width
}

var inlineOpcodeTable = map[byte]inlineOpInfo{
	opAconstNull: {1, 0},
	opIconstM1:   {1, 0}, opIconst0: {1, 0}, opIconst1: {1, 0}, opIconst2: {1, 0},
	opIconst3: {1, 0}, opIconst4: {1, 0}, opIconst5: {1, 0},
	opLconst0: {1, 0}, opLconst1: {1, 0},
	opBipush: {2, 0}, opSipush: {3, 0},
	opLdc: {2, 1}, opLdcW: {3, 2}, opLdc2W: {3, 2},
	opIload: {2, 0}, opLload: {2, 0},
	opIload0: {1, 0}, opIload1: {1, 0}, opIload2: {1, 0}, opIload3: {1, 0},
	opLload0: {1, 0}, opLload1: {1, 0}, opLload2: {1, 0}, opLload3: {1, 0},
	opAload0: {1, 0},
	opIstore: {2, 0}, opLstore: {2, 0},
	opIstore0: {1, 0}, opIstore1: {1, 0}, opIstore2: {1, 0}, opIstore3: {1, 0},
	opLstore0: {1, 0}, opLstore1: {1, 0}, opLstore2: {1, 0}, opLstore3: {1, 0},
	opIadd: {1, 0}, opLadd: {1, 0}, opIsub: {1, 0}, opLsub: {1, 0},
	opImul: {1, 0}, opLmul: {1, 0}, opIdiv: {1, 0}, opLdiv: {1, 0},
	opIrem: {1, 0}, opLrem: {1, 0}, opIneg: {1, 0}, opLneg: {1, 0},
	opI2l:  {1, 0},
	opLcmp: {1, 0},
	opPop1: {1, 0}, opPop2: {1, 0}, opDup: {1, 0},
	opGetstatic:     {3, 2},
	opInvokevirtual: {3, 2}, opInvokespecial: {3, 2}, opInvokestatic: {3, 2},
	opNew: {3, 2},
}

// spliceInlineBody walks body opcode by opcode, rewriting local variable
// slots 0..n-1 (the callee's own parameters) to argSlots and reinterpreting
// every constant-pool operand through dst.Import. Control-flow instructions
// are deliberately unsupported: an @InlineOnly function compiled from a
// single-expression body never branches (spec §4.5's "single expression"
// framing), so encountering one here means the callee no longer fits that
// shape: an error is returned, and genInlineCall fails the compilation with
// it rather than guess at relocated branch targets.
func spliceInlineBody(body []byte, src, dst *classfile.Pool, argSlots []int) ([]byte, error) {
	out := make([]byte, 0, len(body))
	for pc := 0; pc < len(body); {
		op := body[pc]
		info, ok := inlineOpcodeTable[op]
		if !ok {
			return nil, fmt.Errorf("unsupported opcode 0x%02x in inline-only body", op)
		}
		if pc+info.length > len(body) {
			return nil, fmt.Errorf("truncated instruction at offset %d in inline-only body", pc)
		}
		instr := body[pc : pc+info.length]
		out = append(out, rewriteInlineInstr(op, instr, src, dst, argSlots)...)
		pc += info.length
	}
	return out, nil
}

func rewriteInlineInstr(op byte, instr []byte, src, dst *classfile.Pool, argSlots []int) []byte {
	switch {
	case isInlineLocalOp(op):
		return rewriteInlineLocalSlot(op, instr, argSlots)
	case inlineOpcodeTable[op].poolOperand == 1:
		idx := dst.Import(src, uint16(instr[1]))
		out := append([]byte(nil), instr...)
		out[1] = byte(idx)
		return out
	case inlineOpcodeTable[op].poolOperand == 2:
		srcIdx := uint16(instr[1])<<8 | uint16(instr[2])
		idx := dst.Import(src, srcIdx)
		out := append([]byte(nil), instr...)
		out[1] = byte(idx >> 8)
		out[2] = byte(idx)
		return out
	default:
		return instr
	}
}

func isInlineLocalOp(op byte) bool {
	switch op {
	case opIload, opLload, opIload0, opIload1, opIload2, opIload3,
		opLload0, opLload1, opLload2, opLload3, opAload0,
		opIstore, opLstore, opIstore0, opIstore1, opIstore2, opIstore3,
		opLstore0, opLstore1, opLstore2, opLstore3:
		return true
	default:
		return false
	}
}

// rewriteInlineLocalSlot remaps a callee-local-indexed load/store to the
// caller's argSlots, preserving the wide/narrow and fast-form/general-form
// shape of the original instruction.
func rewriteInlineLocalSlot(op byte, instr []byte, argSlots []int) []byte {
	calleeSlot, wide := inlineFastSlot(op)
	if calleeSlot < 0 {
		calleeSlot = int(instr[1])
	}
	if calleeSlot >= len(argSlots) {
		return instr
	}
	callerSlot := argSlots[calleeSlot]
	isStore := isInlineStoreOp(op)

	if callerSlot <= 3 {
		return []byte{inlineFastOpcodeFor(wide, isStore, callerSlot)}
	}
	generalOp := byte(opIload)
	switch {
	case wide && !isStore:
		generalOp = opLload
	case wide && isStore:
		generalOp = opLstore
	case !wide && isStore:
		generalOp = opIstore
	}
	return []byte{generalOp, byte(callerSlot)}
}

func inlineFastSlot(op byte) (slot int, wide bool) {
	switch op {
	case opIload0:
		return 0, false
	case opIload1:
		return 1, false
	case opIload2:
		return 2, false
	case opIload3:
		return 3, false
	case opLload0:
		return 0, true
	case opLload1:
		return 1, true
	case opLload2:
		return 2, true
	case opLload3:
		return 3, true
	case opAload0:
		return 0, false
	case opIstore0:
		return 0, false
	case opIstore1:
		return 1, false
	case opIstore2:
		return 2, false
	case opIstore3:
		return 3, false
	case opLstore0:
		return 0, true
	case opLstore1:
		return 1, true
	case opLstore2:
		return 2, true
	case opLstore3:
		return 3, true
	case opIload, opIstore:
		return -1, false
	case opLload, opLstore:
		return -1, true
	default:
		return -1, false
	}
}

func isInlineStoreOp(op byte) bool {
	switch op {
	case opIstore, opLstore, opIstore0, opIstore1, opIstore2, opIstore3,
		opLstore0, opLstore1, opLstore2, opLstore3:
		return true
	default:
		return false
	}
}

func inlineFastOpcodeFor(wide, isStore bool, slot int) byte {
	switch {
	case !wide && !isStore:
		return byte(opIload0) + byte(slot)
	case !wide && isStore:
		return byte(opIstore0) + byte(slot)
	case wide && !isStore:
		return byte(opLload0) + byte(slot)
	default:
		return byte(opLstore0) + byte(slot)
	}
}
