package codegen

import (
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/token"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// genIf lowers an if-expression (spec §4.7's documented algorithm): emit the
// condition, branch past the then-arm on false, snapshot the pre-branch
// frame so the else-arm (or the no-else fallthrough) starts from the same
// abstract state the then-arm did, and merge the two arms' frames at the
// join point.
func (g *Generator) genIf(i int) {
	n := g.Tree.Node(i)
	g.genExpr(n.Lhs)
	g.pop()
	jmpA := g.emitJumpConditionally(opIfeq)

	locals0, stack0 := g.frame.snapshot()

	te := g.Tree.Node(n.Rhs)
	g.genBlock(te.Lhs)

	if n.Flags&ast.FlagHasElse == 0 {
		// the if-expression's own type is Unit whenever there's no else
		// (resolver.typeIf), even if the then-block's tail happens to be a
		// value-producing expression: discard it so both the taken and the
		// skipped path leave the stack equally empty at the merge point.
		thenBlockT := types.Index(g.Tree.Node(te.Lhs).TypeI)
		if g.Types.Get(thenBlockT).Kind != types.Unit {
			g.emitPop(thenBlockT)
		}
		g.patchJump(jmpA, g.pc())
		g.frame.restore(locals0, stack0)
		g.recordFrame()
		return
	}

	locals1, stack1 := g.frame.snapshot()
	jmpB := g.emitJump()

	g.patchJump(jmpA, g.pc())
	g.frame.restore(locals0, stack0)
	g.recordFrame()

	g.genBlock(te.Rhs)

	g.patchJump(jmpB, g.pc())
	g.frame.restore(locals1, stack1)
	g.recordFrame()
}

// genWhile lowers a while loop (spec §4.7): the pre-loop frame is recorded
// twice, at the loop header (the backward jump target) and at the exit, since
// both are reached with an empty operand stack and identical locals.
func (g *Generator) genWhile(i int) {
	n := g.Tree.Node(i)
	pc0 := g.pc()
	locals0, stack0 := g.frame.snapshot()
	g.recordFrame()

	g.genExpr(n.Lhs)
	g.pop()
	jmpA := g.emitJumpConditionally(opIfeq)

	g.genBlockDiscardTail(n.Rhs)

	g.frame.restore(locals0, stack0)
	backJump := g.emitJump()
	g.patchJump(backJump, pc0)

	g.patchJump(jmpA, g.pc())
	g.frame.restore(locals0, stack0)
	g.recordFrame()
}

// genShortCircuit lowers && (isAnd) and || by evaluating the left operand,
// branching past the right operand when it already decides the result, and
// pushing the decided boolean on the branch actually taken.
func (g *Generator) genShortCircuit(i int, isAnd bool) {
	n := g.Tree.Node(i)
	boolT := g.Types.WellKnown(types.Boolean)

	g.genExpr(n.Lhs)
	g.pop()

	var shortCircuit int
	if isAnd {
		shortCircuit = g.emitJumpConditionally(opIfeq) // lhs false -> result false
	} else {
		shortCircuit = g.emitJumpConditionally(opIfne) // lhs true -> result true
	}

	locals0, stack0 := g.frame.snapshot()

	g.genExpr(n.Rhs)
	g.pop()
	skip := g.emitJump()

	g.patchJump(shortCircuit, g.pc())
	g.frame.restore(locals0, stack0)
	g.recordFrame()
	if isAnd {
		g.emit1(opIconst0)
	} else {
		g.emit1(opIconst1)
	}

	g.patchJump(skip, g.pc())
	g.push(boolT)
	g.recordFrame()
}

// genComparison lowers ==, !=, <, <=, >, >= between the two widened operand
// types: a single lcmp + zero-test for Long operands (spec §4.7), or a
// direct if_icmp<cond> for anything represented as a JVM int (Boolean and
// the narrower integer kinds).
func (g *Generator) genComparison(i int, op token.Kind) {
	n := g.Tree.Node(i)
	lhsT := types.Index(g.Tree.Node(n.Lhs).TypeI)
	rhsT := types.Index(g.Tree.Node(n.Rhs).TypeI)
	common := g.widenCommon(lhsT, rhsT)

	g.genExprAs(n.Lhs, common)
	g.genExprAs(n.Rhs, common)
	g.pop()
	g.pop()

	if isWide(g.Types, common) {
		g.emit1(opLcmp)
		g.emitZeroCompareResult(op)
	} else {
		g.emitIntCompareResult(op)
	}
	g.push(g.Types.WellKnown(types.Boolean))
}

// widenCommon picks the wider of two already-resolved operand types for a
// comparison, mirroring the resolver's own arithmetic widening rule so the
// two sides are always pushed as the same JVM runtime type before the
// comparison instruction.
func (g *Generator) widenCommon(a, b types.Index) types.Index {
	ca := concretizeForCodegen(g.Types, a)
	cb := concretizeForCodegen(g.Types, b)
	ra, oka := intRankCodegen(g.Types.Get(ca).Kind)
	rb, okb := intRankCodegen(g.Types.Get(cb).Kind)
	if !oka || !okb {
		return ca
	}
	if ra >= rb {
		return ca
	}
	return cb
}

func intRankCodegen(k types.Kind) (int, bool) {
	switch k {
	case types.Byte:
		return 0, true
	case types.Short:
		return 1, true
	case types.Int:
		return 2, true
	case types.Long:
		return 3, true
	default:
		return 0, false
	}
}

// emitIntCompareResult emits if_icmp<cond> directly between the two
// already-pushed ints, materializing a 0/1 boolean on each branch.
func (g *Generator) emitIntCompareResult(op token.Kind) {
	var jmpOp byte
	switch op {
	case token.EQEQ:
		jmpOp = opIfIcmpeq
	case token.NEQ:
		jmpOp = opIfIcmpne
	case token.LT:
		jmpOp = opIfIcmplt
	case token.LE:
		jmpOp = opIfIcmple
	case token.GT:
		jmpOp = opIfIcmpgt
	case token.GE:
		jmpOp = opIfIcmpge
	}
	g.emitBooleanFromJump(jmpOp)
}

// emitZeroCompareResult follows an lcmp (which leaves -1/0/1 on the stack)
// with the matching single-operand if<cond> against zero.
func (g *Generator) emitZeroCompareResult(op token.Kind) {
	var jmpOp byte
	switch op {
	case token.EQEQ:
		jmpOp = opIfeq
	case token.NEQ:
		jmpOp = opIfne
	case token.LT:
		jmpOp = opIflt
	case token.LE:
		jmpOp = opIfle
	case token.GT:
		jmpOp = opIfgt
	case token.GE:
		jmpOp = opIfge
	}
	g.emitBooleanFromJump(jmpOp)
}

// emitBooleanFromJump is the standard "branch on condition, push the two
// possible booleans, merge" pattern every relational operator lowers to.
func (g *Generator) emitBooleanFromJump(jmpOp byte) {
	jmp := g.emitJumpConditionally(jmpOp)
	g.emit1(opIconst0)
	skip := g.emitJump()
	g.recordFrame()
	g.patchJump(jmp, g.pc())
	g.emit1(opIconst1)
	// the merge point has the 0/1 result on the stack; the caller pushes it
	// for good after this returns
	g.push(g.Types.WellKnown(types.Boolean))
	g.recordFrame()
	g.pop()
	g.patchJump(skip, g.pc())
}
