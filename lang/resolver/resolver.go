// Package resolver performs scope-based name binding and bottom-up type
// checking over an ast.Tree, resolving every node's TypeI and every call's
// target method, in two passes: a pre-pass that registers top-level
// function signatures (so forward references between functions just work),
// followed by a per-function body typing pass (spec §4.6).
package resolver

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/archive"
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// Resolver holds everything needed to type a single compiled file against a
// (possibly shared, across files) Types table and classpath Loader.
type Resolver struct {
	Types   *types.Table
	Loader  *archive.Loader
	Tree    *ast.Tree
	Tokens  *lexer.Tokens

	filename string
	errors   scanner.ErrorList
	scope    *scope

	// ThisClassFQN is the synthesized top-level class (e.g. "MainKt") that
	// owns every top-level function and property in this file.
	ThisClassFQN string
	thisClassIdx types.Index

	currentFunctionReturn types.Index
}

// New returns a Resolver for one file. thisClassFQN is the name of the
// synthesized holder class for this file's top-level declarations (spec
// §4.7's entry-point synthesis uses the same class).
func New(tbl *types.Table, loader *archive.Loader, tree *ast.Tree, toks *lexer.Tokens, filename, thisClassFQN string) *Resolver {
	return &Resolver{
		Types:        tbl,
		Loader:       loader,
		Tree:         tree,
		Tokens:       toks,
		filename:     filename,
		scope:        newScope(),
		ThisClassFQN: thisClassFQN,
	}
}

// Resolve runs both passes and returns the accumulated diagnostics, if any
// (spec §4.6, §7: never partial-abort, accumulate and render).
func (r *Resolver) Resolve() error {
	pkg := ""
	if slash := strings.LastIndexByte(r.ThisClassFQN, '/'); slash >= 0 {
		pkg = r.ThisClassFQN[:slash]
	}
	r.thisClassIdx = r.Types.AddInstance(r.ThisClassFQN, pkg)
	r.Types.Get(r.thisClassIdx).SuperTypeI = r.Types.WellKnown(types.Any)

	r.prePass()
	for _, i := range r.Tree.TopLevel {
		n := r.Tree.Node(i)
		if n.Kind == ast.FunctionDef {
			r.resolveFunctionBody(i)
		}
	}

	r.errors.Sort()
	return r.errors.Err()
}

func (r *Resolver) errorf(tokI int, format string, args ...interface{}) {
	pos := lexer.Position(r.Tokens, tokI)
	r.errors.Add(gotoken.Position{Filename: r.filename, Line: pos.Line, Column: pos.Col},
		fmt.Sprintf(format, args...))
}

// prePass registers every top-level function's signature before any body is
// typed, so mutually- and forward-recursive calls resolve (spec §4.6: "the
// resolver's pre-pass completes before any body is typed").
func (r *Resolver) prePass() {
	for _, i := range r.Tree.TopLevel {
		n := r.Tree.Node(i)
		switch n.Kind {
		case ast.FunctionDef:
			r.prePassFunction(i)
		case ast.VarDef:
			r.prePassTopLevelProperty(i)
		}
	}
}

func (r *Resolver) prePassFunction(i int) {
	n := r.Tree.Node(i)
	name := lexer.Ident(r.Tokens, n.MainTokenI)

	params := r.Tree.Node(n.Lhs)
	argTypes := make([]types.Index, len(params.Children))
	for pi, paramI := range params.Children {
		p := r.Tree.Node(paramI)
		typeName := lexer.Ident(r.Tokens, r.Tree.Node(p.Lhs).MainTokenI)
		t, err := r.resolveTypeName(typeName)
		if err != nil {
			r.errorf(p.MainTokenI, "unresolved parameter type: %s", typeName)
			t = r.Types.WellKnown(types.Any)
		}
		argTypes[pi] = t
	}

	extra := r.Tree.Extra(n.ExtraDataI)
	retType := r.Types.WellKnown(types.Unit)
	if extra.ReturnTypeI != 0 {
		typeName := lexer.Ident(r.Tokens, r.Tree.Node(extra.ReturnTypeI).MainTokenI)
		t, err := r.resolveTypeName(typeName)
		if err != nil {
			r.errorf(r.Tree.Node(extra.ReturnTypeI).MainTokenI, "unresolved return type: %s", typeName)
			t = r.Types.WellKnown(types.Any)
		}
		retType = t
	}

	methodIdx := r.Types.AddMethod(types.Method, &types.MethodInfo{
		Name:          name,
		ArgumentTypes: argTypes,
		ReturnType:    retType,
		ThisClassType: r.thisClassIdx,
		IsStatic:      true,
		AccessFlags:   0x0001 | 0x0008, // public static
	})
	extra.ResolvedMethodI = int(methodIdx)
	n.ExtraDataI = r.Tree.AddExtra(*extra)
	n.TypeI = int(methodIdx)
}

func (r *Resolver) prePassTopLevelProperty(i int) {
	n := r.Tree.Node(i)
	extra := r.Tree.Extra(n.ExtraDataI)
	if extra.DeclaredTypeI != 0 {
		typeName := lexer.Ident(r.Tokens, r.Tree.Node(extra.DeclaredTypeI).MainTokenI)
		if t, err := r.resolveTypeName(typeName); err == nil {
			n.TypeI = int(t)
		}
	}
}

// resolveFunctionBody types one function's parameter scope and block body.
func (r *Resolver) resolveFunctionBody(fnI int) {
	n := r.Tree.Node(fnI)
	methodIdx := types.Index(r.Tree.Extra(n.ExtraDataI).ResolvedMethodI)
	method := r.Types.Get(methodIdx).Method

	prevReturn := r.currentFunctionReturn
	r.currentFunctionReturn = method.ReturnType
	defer func() { r.currentFunctionReturn = prevReturn }()

	r.scope.begin()
	defer r.scope.end()

	params := r.Tree.Node(n.Lhs)
	for pi, paramI := range params.Children {
		p := r.Tree.Node(paramI)
		name := lexer.Ident(r.Tokens, p.MainTokenI)
		p.TypeI = int(method.ArgumentTypes[pi])
		r.scope.declare(name, int(method.ArgumentTypes[pi]), paramI)
		r.scope.markInitialized(name)
	}

	r.typeBlock(n.Rhs)
}
