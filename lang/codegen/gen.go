package codegen

import (
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// push records that the instructions just emitted left one logical value of
// type t on the operand stack, keeping the abstract Frame in lockstep with
// the bytecode so max_stack and the stack-map frames stay accurate (spec
// §4.7).
func (g *Generator) push(t types.Index) {
	v, wc := verifTypeOf(g.Types, t)
	g.frame.push(v, wc)
}

// pop mirrors a bytecode instruction that consumes the top logical value.
func (g *Generator) pop() {
	g.frame.pop()
}

// genBlock emits every statement of a List node in order. The tail
// statement, if an expression, leaves its value on the stack; every other
// statement's value (if any) is discarded (spec §4.7).
func (g *Generator) genBlock(listI int) {
	if listI == 0 {
		return
	}
	list := g.Tree.Node(listI)
	for idx, stmtI := range list.Children {
		isTail := idx == len(list.Children)-1
		g.genStatement(stmtI, isTail)
	}
}

// genBlockDiscardTail is genBlock for a statement-position block (a while
// body): even its last statement's value, if any, is discarded, since the
// block's own value is never observed.
func (g *Generator) genBlockDiscardTail(listI int) {
	if listI == 0 {
		return
	}
	list := g.Tree.Node(listI)
	for _, stmtI := range list.Children {
		g.genStatement(stmtI, false)
	}
}

// genStatement emits one statement. If keepValue is false and the statement
// is an expression, its pushed value (if any) is popped back off.
func (g *Generator) genStatement(i int, keepValue bool) {
	n := g.Tree.Node(i)
	switch n.Kind {
	case ast.None:
		return
	case ast.VarDef:
		g.genVarDef(i)
		return
	case ast.WhileLoop:
		g.genWhile(i)
		return
	}

	g.genExpr(i)
	if !keepValue && g.Types.Get(types.Index(n.TypeI)).Kind != types.Unit {
		g.emitPop(types.Index(n.TypeI))
	}
}

// emitPop discards the top value, using pop2 for the wide Long/Double kinds.
func (g *Generator) emitPop(t types.Index) {
	if isWide(g.Types, t) {
		g.emit1(opPop2)
	} else {
		g.emit1(opPop1)
	}
	g.pop()
}

func (g *Generator) genVarDef(i int) {
	n := g.Tree.Node(i)
	declared := types.Index(n.TypeI)
	slot := g.allocLocalFor(i, declared)

	if n.Rhs == 0 {
		// uninitialized declaration: reserve the slot, emit nothing (the
		// resolver already guarantees no read happens before a later
		// assignment).
		return
	}
	g.genExprAs(n.Rhs, declared)
	g.storeLocal(slot, isWide(g.Types, declared))
	g.pop()
}

// genExpr emits code for expression i, leaving its value on the stack and
// recording it in the abstract Frame.
func (g *Generator) genExpr(i int) {
	n := g.Tree.Node(i)
	switch n.Kind {
	case ast.Number:
		g.genNumber(i)
	case ast.Bool:
		g.genBool(i)
	case ast.String:
		g.genString(i)
	case ast.VarRef:
		g.genVarRef(i)
	case ast.Unary:
		g.genUnary(i)
	case ast.Binary:
		g.genBinary(i)
	case ast.Assignment:
		g.genAssignment(i)
	case ast.Call:
		g.genCall(i)
	case ast.If:
		g.genIf(i)
	case ast.Return:
		g.genReturn(i)
	case ast.List:
		g.genBlock(i)
	default:
		g.fail("codegen: unhandled expression kind %v", n.Kind)
	}
}

// genExprAs emits expr for a context expecting type want, inserting an i2l
// widening conversion when a literal or Int value flows into a Long-typed
// slot, argument, or return (spec §4.7: integer literals that concretized to
// Int at resolve time still need the runtime i2l if the destination is
// Long).
func (g *Generator) genExprAs(exprI int, want types.Index) {
	n := g.Tree.Node(exprI)
	g.genExpr(exprI)
	srcWide := isWide(g.Types, types.Index(n.TypeI))
	wantWide := isWide(g.Types, want)
	if wantWide && !srcWide {
		g.emit1(opI2l)
		g.pop()
		g.push(want)
	}
}

func (g *Generator) genNumber(i int) {
	n := g.Tree.Node(i)
	extra := g.Tree.Extra(n.ExtraDataI)
	if extra.IsLong {
		g.loadLongConstant(extra.IntValue)
	} else {
		g.loadIntConstant(extra.IntValue)
	}
	g.push(types.Index(n.TypeI))
}

func (g *Generator) genBool(i int) {
	n := g.Tree.Node(i)
	tok := g.Toks.Tokens[n.MainTokenI]
	if tok.Kind == token.TRUE {
		g.emit1(opIconst1)
	} else {
		g.emit1(opIconst0)
	}
	g.push(g.Types.WellKnown(types.Boolean))
}

func (g *Generator) genString(i int) {
	n := g.Tree.Node(i)
	extra := g.Tree.Extra(n.ExtraDataI)
	idx := g.Pool.AddString(extra.StringValue)
	g.ldc(idx)
	g.push(g.Types.WellKnown(types.String))
}

func (g *Generator) genVarRef(i int) {
	n := g.Tree.Node(i)
	declI := g.Tree.Extra(n.ExtraDataI).ResolvedDeclI
	slot, ok := g.localSlot[declI]
	if !ok {
		g.fail("codegen: unresolved local %q reached code generation", lexer.Ident(g.Toks, n.MainTokenI))
		return
	}
	declT := types.Index(g.Tree.Node(declI).TypeI)
	g.loadLocal(slot, isWide(g.Types, declT))
	g.push(declT)
}

func (g *Generator) genUnary(i int) {
	n := g.Tree.Node(i)
	op := g.Toks.Tokens[n.MainTokenI].Kind
	g.genExpr(n.Rhs)

	if op == token.BANG {
		g.pop()
		g.negateBoolean()
		g.push(g.Types.WellKnown(types.Boolean))
		return
	}

	// unary '-'
	resultT := types.Index(n.TypeI)
	g.pop()
	if isWide(g.Types, resultT) {
		g.emit1(opLneg)
	} else {
		g.emit1(opIneg)
	}
	g.push(resultT)
}

// negateBoolean flips a 0/1 int already on the stack: emits an ifeq/goto
// pair, since the JVM has no dedicated boolean-not instruction.
func (g *Generator) negateBoolean() {
	jmp := g.emitJumpConditionally(opIfeq)
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

func (g *Generator) genAssignment(i int) {
	n := g.Tree.Node(i)
	lhs := g.Tree.Node(n.Lhs)
	declI := g.Tree.Extra(lhs.ExtraDataI).ResolvedDeclI
	slot, ok := g.localSlot[declI]
	if !ok {
		g.fail("codegen: unresolved assignment target %q", lexer.Ident(g.Toks, lhs.MainTokenI))
		return
	}
	declT := types.Index(g.Tree.Node(declI).TypeI)
	g.genExprAs(n.Rhs, declT)
	g.storeLocal(slot, isWide(g.Types, declT))
	g.pop()
	// an assignment's own value is Unit (spec grammar): nothing is left on
	// the stack for the caller, matching resolver.typeAssignment.
}

func (g *Generator) genReturn(i int) {
	n := g.Tree.Node(i)
	if n.Rhs == 0 {
		g.emit1(opReturn)
		return
	}
	retT := g.returnType
	g.genExprAs(n.Rhs, retT)
	g.pop()
	if isWide(g.Types, retT) {
		g.emit1(opLreturn)
		return
	}
	if g.Types.Get(concretizeForCodegen(g.Types, retT)).Kind == types.Unit {
		g.emit1(opReturn)
		return
	}
	g.emit1(opIreturn)
}

func (g *Generator) genBinary(i int) {
	n := g.Tree.Node(i)
	op := g.Toks.Tokens[n.MainTokenI].Kind

	switch op {
	case token.AMPAMP:
		g.genShortCircuit(i, true)
		return
	case token.PIPEPIPE:
		g.genShortCircuit(i, false)
		return
	case token.EQEQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		g.genComparison(i, op)
		return
	}

	resultT := types.Index(n.TypeI)
	g.genExprAs(n.Lhs, resultT)
	g.genExprAs(n.Rhs, resultT)
	g.pop()
	g.pop()

	wide := isWide(g.Types, resultT)
	switch op {
	case token.PLUS:
		g.emit1(pick(wide, opLadd, opIadd))
	case token.MINUS:
		g.emit1(pick(wide, opLsub, opIsub))
	case token.STAR:
		g.emit1(pick(wide, opLmul, opImul))
	case token.SLASH:
		g.emit1(pick(wide, opLdiv, opIdiv))
	case token.PERCENT:
		g.emit1(pick(wide, opLrem, opIrem))
	default:
		g.fail("codegen: unhandled binary operator %v", op)
		return
	}
	g.push(resultT)
}

func pick(wide bool, wideOp, narrowOp byte) byte {
	if wide {
		return wideOp
	}
	return narrowOp
}
