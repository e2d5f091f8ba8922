package resolver

import (
	"fmt"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// typeBlock types every statement of a List node in order and returns the
// block's own value type: the type of its last statement if that statement
// was an expression, else Unit (this lets an if-expression used as the tail
// of a branch carry a real value type through to the enclosing if).
func (r *Resolver) typeBlock(listI int) types.Index {
	if listI == 0 {
		return r.Types.WellKnown(types.Unit)
	}
	list := r.Tree.Node(listI)
	result := r.Types.WellKnown(types.Unit)
	for idx, stmtI := range list.Children {
		t := r.typeStatement(stmtI)
		if idx == len(list.Children)-1 {
			result = t
		}
	}
	list.TypeI = int(result)
	return result
}

// typeStatement types one statement, returning its value type (Unit for
// pure-effect statements like var/while).
func (r *Resolver) typeStatement(i int) types.Index {
	n := r.Tree.Node(i)
	switch n.Kind {
	case ast.None:
		return r.Types.WellKnown(types.Unit) // panic-mode recovery placeholder
	case ast.VarDef:
		return r.typeVarDef(i)
	case ast.WhileLoop:
		return r.typeWhile(i)
	default:
		return r.typeExpr(i)
	}
}

func (r *Resolver) typeVarDef(i int) types.Index {
	n := r.Tree.Node(i)
	extra := r.Tree.Extra(n.ExtraDataI)
	name := lexer.Ident(r.Tokens, n.MainTokenI)

	var declared types.Index
	hasDeclared := extra.DeclaredTypeI != 0
	if hasDeclared {
		typeName := lexer.Ident(r.Tokens, r.Tree.Node(extra.DeclaredTypeI).MainTokenI)
		t, err := r.resolveTypeName(typeName)
		if err != nil {
			r.errorf(r.Tree.Node(extra.DeclaredTypeI).MainTokenI, "unresolved type: %s", typeName)
			t = r.Types.WellKnown(types.Any)
		}
		declared = t
	}

	r.scope.declare(name, int(declared), i)

	if n.Rhs != 0 {
		initType := r.typeExpr(n.Rhs)
		if !hasDeclared {
			declared = concretize(r.Types, initType)
			r.scope.vars[len(r.scope.vars)-1].typeI = int(declared)
		} else if !r.Types.IsSubtype(initType, declared) {
			r.errorf(n.MainTokenI, "type mismatch: expected %s, got %s", r.Types.Name(declared), r.Types.Name(initType))
		}
		r.scope.markInitialized(name)
	}

	n.TypeI = int(declared)
	return r.Types.WellKnown(types.Unit)
}

func (r *Resolver) typeWhile(i int) types.Index {
	n := r.Tree.Node(i)
	condType := r.typeExpr(n.Lhs)
	if condType != r.Types.WellKnown(types.Boolean) {
		r.errorf(n.MainTokenI, "while condition must be Boolean, got %s", r.Types.Name(condType))
	}
	r.scope.begin()
	r.typeBlock(n.Rhs)
	r.scope.end()
	n.TypeI = int(r.Types.WellKnown(types.Unit))
	return types.Index(n.TypeI)
}

// typeExpr types an expression node bottom-up and records the result in
// TypeI (spec §4.6 "AST typing").
func (r *Resolver) typeExpr(i int) types.Index {
	n := r.Tree.Node(i)
	var t types.Index
	switch n.Kind {
	case ast.Number:
		t = r.typeNumber(i)
	case ast.Bool:
		t = r.Types.WellKnown(types.Boolean)
	case ast.String:
		t = r.Types.WellKnown(types.String)
	case ast.VarRef:
		t = r.typeVarRef(i)
	case ast.Unary:
		t = r.typeUnary(i)
	case ast.Binary:
		t = r.typeBinary(i)
	case ast.Assignment:
		t = r.typeAssignment(i)
	case ast.Call:
		t = r.typeCall(i)
	case ast.If:
		t = r.typeIf(i)
	case ast.Return:
		t = r.typeReturn(i)
	case ast.List:
		t = r.typeBlock(i)
	default:
		t = r.Types.WellKnown(types.Any)
	}
	n.TypeI = int(t)
	return t
}

func (r *Resolver) typeNumber(i int) types.Index {
	n := r.Tree.Node(i)
	extra := r.Tree.Extra(n.ExtraDataI)
	if extra.IsLong {
		return r.Types.WellKnown(types.Long)
	}
	v := extra.IntValue
	widens := types.IntKindLong
	if v >= -128 && v <= 127 {
		widens |= types.IntKindByte | types.IntKindShort | types.IntKindInt
	} else if v >= -32768 && v <= 32767 {
		widens |= types.IntKindShort | types.IntKindInt
	} else if v >= -(1<<31) && v <= (1<<31)-1 {
		widens |= types.IntKindInt
	}
	return r.Types.AddIntegerLiteral(widens)
}

// concretize collapses an IntegerLiteral into a concrete kind (Int if it
// fits, else Long — spec §4.6's literal-typing rule) for contexts that need
// one, such as inferring a var's type from its initializer.
func concretize(tbl *types.Table, idx types.Index) types.Index {
	t := tbl.Get(idx)
	if t.Kind != types.IntegerLiteral {
		return idx
	}
	if t.Widens&types.IntKindInt != 0 {
		return tbl.WellKnown(types.Int)
	}
	return tbl.WellKnown(types.Long)
}

func (r *Resolver) typeVarRef(i int) types.Index {
	n := r.Tree.Node(i)
	name := lexer.Ident(r.Tokens, n.MainTokenI)
	v, ok, uninitialized := r.scope.lookup(name)
	if !ok {
		// not a local: leave resolution to the enclosing Call/Navigation,
		// which re-dispatches this node as a function name or fqn segment.
		n.Kind = ast.UnresolvedName
		return r.Types.WellKnown(types.Any)
	}
	n.ExtraDataI = r.Tree.AddExtra(ast.Extra{ResolvedDeclI: v.nodeI})
	if uninitialized {
		r.errorf(n.MainTokenI, "variable %q used before initialization", name)
		return r.Types.WellKnown(types.Any)
	}
	return types.Index(v.typeI)
}

func (r *Resolver) typeUnary(i int) types.Index {
	n := r.Tree.Node(i)
	rhs := r.typeExpr(n.Rhs)
	op := r.Tokens.Tokens[n.MainTokenI].Kind
	if op == token.BANG {
		if rhs != r.Types.WellKnown(types.Boolean) {
			r.errorf(n.MainTokenI, "'!' requires a Boolean operand, got %s", r.Types.Name(rhs))
		}
		return r.Types.WellKnown(types.Boolean)
	}
	// unary '-'
	return concretize(r.Types, rhs)
}

func (r *Resolver) typeBinary(i int) types.Index {
	n := r.Tree.Node(i)
	lhs := r.typeExpr(n.Lhs)
	rhs := r.typeExpr(n.Rhs)
	op := r.Tokens.Tokens[n.MainTokenI].Kind

	switch op {
	case token.AMPAMP, token.PIPEPIPE:
		boolT := r.Types.WellKnown(types.Boolean)
		if lhs != boolT || rhs != boolT {
			r.errorf(n.MainTokenI, "'&&'/'||' require Boolean operands")
		}
		return boolT
	case token.EQEQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		if !r.comparable(lhs, rhs) {
			r.errorf(n.MainTokenI, "incomparable operand types: %s and %s", r.Types.Name(lhs), r.Types.Name(rhs))
		}
		return r.Types.WellKnown(types.Boolean)
	default: // + - * / %
		result, ok := r.widenArithmetic(lhs, rhs)
		if !ok {
			r.errorf(n.MainTokenI, "incompatible operand types for arithmetic: %s and %s", r.Types.Name(lhs), r.Types.Name(rhs))
			return r.Types.WellKnown(types.Any)
		}
		return result
	}
}

// widenArithmetic resolves the result type of a binary arithmetic
// operation: both operands must be integer-compatible (concrete or
// IntegerLiteral), and the result is the wider of the two, one widening
// step at a time (spec §4.6, worked example in §8: Int + Long -> Long).
func (r *Resolver) widenArithmetic(a, b types.Index) (types.Index, bool) {
	ca := concretize(r.Types, a)
	cb := concretize(r.Types, b)
	ra, oka := intRank(r.Types.Get(ca).Kind)
	rb, okb := intRank(r.Types.Get(cb).Kind)
	if !oka || !okb {
		if ca == cb {
			return ca, true
		}
		return 0, false
	}
	if ra >= rb {
		return ca, true
	}
	return cb, true
}

func intRank(k types.Kind) (int, bool) {
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

func (r *Resolver) comparable(a, b types.Index) bool {
	_, oka := intRank(r.Types.Get(concretize(r.Types, a)).Kind)
	_, okb := intRank(r.Types.Get(concretize(r.Types, b)).Kind)
	if oka && okb {
		return true
	}
	return a == b
}

func (r *Resolver) typeAssignment(i int) types.Index {
	n := r.Tree.Node(i)
	lhsType := r.typeExpr(n.Lhs)
	rhsType := r.typeExpr(n.Rhs)
	if !r.Types.IsSubtype(rhsType, lhsType) {
		r.errorf(n.MainTokenI, "type mismatch: cannot assign %s to %s", r.Types.Name(rhsType), r.Types.Name(lhsType))
	}
	return r.Types.WellKnown(types.Unit)
}

func (r *Resolver) typeIf(i int) types.Index {
	n := r.Tree.Node(i)
	condType := r.typeExpr(n.Lhs)
	if condType != r.Types.WellKnown(types.Boolean) {
		r.errorf(n.MainTokenI, "if condition must be Boolean, got %s", r.Types.Name(condType))
	}

	te := r.Tree.Node(n.Rhs)
	r.scope.begin()
	thenType := r.typeBlock(te.Lhs)
	r.scope.end()

	if n.Flags&ast.FlagHasElse == 0 {
		return r.Types.WellKnown(types.Unit)
	}

	r.scope.begin()
	elseType := r.typeBlock(te.Rhs)
	r.scope.end()

	// each integer literal has its own table entry, so two literal arms would
	// never match each other; merge them as their concrete Int/Long types
	thenType = concretize(r.Types, thenType)
	elseType = concretize(r.Types, elseType)
	if thenType == elseType {
		return thenType
	}
	if r.Types.IsSubtype(thenType, elseType) {
		return elseType
	}
	if r.Types.IsSubtype(elseType, thenType) {
		return thenType
	}
	r.errorf(n.MainTokenI, "if branches have incompatible types: %s and %s", r.Types.Name(thenType), r.Types.Name(elseType))
	return r.Types.WellKnown(types.Any)
}

func (r *Resolver) typeReturn(i int) types.Index {
	n := r.Tree.Node(i)
	want := r.currentFunctionReturn
	if n.Rhs == 0 {
		if want != r.Types.WellKnown(types.Unit) {
			r.errorf(n.MainTokenI, "missing return value, expected %s", r.Types.Name(want))
		}
		return r.Types.WellKnown(types.Unit)
	}
	got := r.typeExpr(n.Rhs)
	if !r.Types.IsSubtype(got, want) {
		r.errorf(n.MainTokenI, "return type mismatch: expected %s, got %s", r.Types.Name(want), r.Types.Name(got))
	}
	return r.Types.WellKnown(types.Unit)
}

// typeCall resolves the callee (spec §9's flagged "member access vs fqn"
// open question — decided here: an unqualified name is an ordinary
// function call; a dotted chain whose leftmost segment is a bound local
// variable is an instance member call; otherwise the chain is a
// fully-qualified class name and the final segment a static call on it) and
// then type-checks the argument list against it.
func (r *Resolver) typeCall(i int) types.Index {
	n := r.Tree.Node(i)
	argTypes := make([]int, len(n.Children))
	for ai, a := range n.Children {
		argTypes[ai] = int(r.typeExpr(a))
	}

	callee := r.Tree.Node(n.Lhs)
	var methodIdx types.Index
	var err error
	switch callee.Kind {
	case ast.VarRef, ast.UnresolvedName:
		name := lexer.Ident(r.Tokens, callee.MainTokenI)
		if v, ok, _ := r.scope.lookup(name); ok {
			_ = v
			r.errorf(callee.MainTokenI, "%q is not callable", name)
			return r.Types.WellKnown(types.Any)
		}
		methodIdx, err = r.resolveUnqualifiedCall(callee.MainTokenI, name, argTypes)
	case ast.Navigation:
		methodIdx, err = r.resolveNavigationCall(n.Lhs, argTypes)
	default:
		r.errorf(n.MainTokenI, "expression is not callable")
		return r.Types.WellKnown(types.Any)
	}

	if err != nil {
		r.errorf(n.MainTokenI, "%s", err)
		return r.Types.WellKnown(types.Any)
	}

	method := r.Types.Get(methodIdx).Method
	n.ExtraDataI = r.Tree.AddExtra(ast.Extra{ResolvedMethodI: int(methodIdx)})
	return method.ReturnType
}

func (r *Resolver) resolveUnqualifiedCall(tokI int, name string, argTypes []int) (types.Index, error) {
	pkg := ""
	if slash := strings.LastIndexByte(r.ThisClassFQN, '/'); slash >= 0 {
		pkg = r.ThisClassFQN[:slash]
	}
	imported := importedPackages(pkg)
	cands := candidates(r.Types, name, false, imported)
	filtered := filterByArgs(r.Types, cands, argTypes)
	if len(filtered) == 0 {
		return 0, fmt.Errorf("no matching overload for %s(...); candidates considered: %s", name, describeCandidates(r.Types, cands))
	}
	winner, ambiguous := mostSpecific(r.Types, filtered)
	if len(ambiguous) > 0 {
		return 0, fmt.Errorf("ambiguous call to %s(...): %s", name, describeCandidates(r.Types, ambiguous))
	}
	return winner, nil
}

// resolveNavigationCall walks a Navigation chain rooted at chainI (the
// callee of a Call node) and decides between member access and
// fully-qualified dispatch.
func (r *Resolver) resolveNavigationCall(chainI int, argTypes []int) (types.Index, error) {
	segments, rootI := r.flattenNavigation(chainI)
	root := r.Tree.Node(rootI)

	if root.Kind == ast.VarRef {
		rootName := lexer.Ident(r.Tokens, root.MainTokenI)
		if v, ok, uninitialized := r.scope.lookup(rootName); ok {
			if uninitialized {
				return 0, fmt.Errorf("variable %q used before initialization", rootName)
			}
			return r.resolveMemberCall(types.Index(v.typeI), segments, argTypes)
		}
	}

	// not a local variable: the whole chain except the last segment is a
	// fully-qualified class name.
	if len(segments) < 1 {
		return 0, fmt.Errorf("malformed call target")
	}
	rootName := lexer.Ident(r.Tokens, root.MainTokenI)
	all := append([]string{rootName}, segments...)
	methodName := all[len(all)-1]
	classDotted := strings.Join(all[:len(all)-1], ".")

	classIdx, err := r.resolveDottedFQN(classDotted)
	if err != nil {
		return 0, fmt.Errorf("unresolved class %q in call to %s(...)", classDotted, methodName)
	}
	return r.resolveStaticCallOn(classIdx, methodName, argTypes)
}

func (r *Resolver) resolveMemberCall(receiverType types.Index, segments []string, argTypes []int) (types.Index, error) {
	if len(segments) != 1 {
		return 0, fmt.Errorf("nested member access is not supported")
	}
	name := segments[0]
	var cands []types.Index
	for cur := receiverType; cur != 0; cur = r.Types.Get(cur).SuperTypeI {
		for i := 11; i < len(r.Types.Types); i++ {
			idx := types.Index(i)
			t := r.Types.Get(idx)
			if t.Kind != types.Method || t.Method == nil || t.Method.IsStatic {
				continue
			}
			if t.Method.Name == name && t.Method.ThisClassType == cur {
				cands = append(cands, idx)
			}
		}
		if r.Types.Get(cur).Kind != types.Instance {
			break
		}
	}
	filtered := filterByArgs(r.Types, cands, argTypes)
	if len(filtered) == 0 {
		return 0, fmt.Errorf("no matching method %s on %s", name, r.Types.Name(receiverType))
	}
	winner, ambiguous := mostSpecific(r.Types, filtered)
	if len(ambiguous) > 0 {
		return 0, fmt.Errorf("ambiguous call to %s(...): %s", name, describeCandidates(r.Types, ambiguous))
	}
	return winner, nil
}

func (r *Resolver) resolveStaticCallOn(classIdx types.Index, name string, argTypes []int) (types.Index, error) {
	var cands []types.Index
	for i := 11; i < len(r.Types.Types); i++ {
		idx := types.Index(i)
		t := r.Types.Get(idx)
		if t.Kind != types.Method || t.Method == nil || !t.Method.IsStatic {
			continue
		}
		if t.Method.Name == name && t.Method.ThisClassType == classIdx {
			cands = append(cands, idx)
		}
	}
	filtered := filterByArgs(r.Types, cands, argTypes)
	if len(filtered) == 0 {
		return 0, fmt.Errorf("no matching static overload for %s.%s(...)", r.Types.Name(classIdx), name)
	}
	winner, ambiguous := mostSpecific(r.Types, filtered)
	if len(ambiguous) > 0 {
		return 0, fmt.Errorf("ambiguous call to %s(...): %s", name, describeCandidates(r.Types, ambiguous))
	}
	return winner, nil
}

// flattenNavigation walks a right-leaning Navigation chain and returns its
// member-name segments in left-to-right order (excluding the innermost
// root expression) plus the root node's index.
func (r *Resolver) flattenNavigation(i int) (segments []string, rootI int) {
	var names []string
	cur := i
	for {
		n := r.Tree.Node(cur)
		if n.Kind != ast.Navigation {
			reverse(names)
			return names, cur
		}
		names = append(names, lexer.Ident(r.Tokens, n.MainTokenI))
		cur = n.Lhs
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
