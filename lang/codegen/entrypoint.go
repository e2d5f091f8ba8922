package codegen

import (
	"fmt"

	"github.com/gaultier/kotlinc-lite/lang/archive"
	"github.com/gaultier/kotlinc-lite/lang/ast"
	"github.com/gaultier/kotlinc-lite/lang/classfile"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// mainSignature is the descriptor the JVM launcher requires of an
// entry-point method.
const mainSignature = "([Ljava/lang/String;)V"

// GenerateFile lowers every top-level function of one source file into a
// single class file named thisClassFQN (spec §4.7's synthesized file-level
// holder class), emitting a JVM-visible main([Ljava/lang/String;)V
// trampoline if the file declares a parameterless "main" and no method
// already has the launcher signature.
func GenerateFile(tbl *types.Table, tree *ast.Tree, toks *lexer.Tokens, loader *archive.Loader, thisClassFQN, sourceFileName string) (*classfile.ClassFile, error) {
	cf := classfile.New(thisClassFQN, "java/lang/Object")
	cf.SetSourceFile(sourceFileName)

	g := New(tbl, tree, toks, cf.Pool, loader)

	var bareMainFnI int
	hasLauncherMain := false

	for _, fnI := range tree.TopLevel {
		n := tree.Node(fnI)
		if n.Kind != ast.FunctionDef {
			continue
		}
		methodIdx := types.Index(tree.Extra(n.ExtraDataI).ResolvedMethodI)
		method := tbl.Get(methodIdx).Method

		code, err := g.Method(fnI)
		if err != nil {
			return nil, fmt.Errorf("codegen: %s: %w", method.Name, err)
		}

		desc := tbl.Descriptor(methodIdx)
		m := classfile.Method{
			AccessFlags:     method.AccessFlags,
			NameIndex:       cf.Pool.AddUtf8(method.Name),
			DescriptorIndex: cf.Pool.AddUtf8(desc),
			Attributes:      []classfile.Attribute{classfile.EncodeCode(cf.Pool, code)},
		}
		cf.Methods = append(cf.Methods, m)

		if method.Name == "main" {
			if desc == mainSignature {
				hasLauncherMain = true
			} else if desc == "()V" {
				bareMainFnI = fnI
			}
		}
	}

	if !hasLauncherMain && bareMainFnI != 0 {
		cf.Methods = append(cf.Methods, synthesizeMainTrampoline(cf, thisClassFQN))
	}

	return cf, nil
}

// synthesizeMainTrampoline emits a real main([Ljava/lang/String;)V that
// simply calls the user's parameterless main() (spec §4.7's entry-point
// synthesis step).
func synthesizeMainTrampoline(cf *classfile.ClassFile, thisClassFQN string) classfile.Method {
	methodrefIdx := cf.Pool.AddMethodref(thisClassFQN, "main", "()V")

	var w codeWriter
	w.emit2(opInvokestatic, methodrefIdx)
	w.emit1(opReturn)

	code := classfile.Code{
		MaxStack:  0,
		MaxLocals: 1, // the String[] args parameter, unused
		Bytecode:  w.bytes,
	}

	return classfile.Method{
		AccessFlags:     classfile.AccPublic | classfile.AccStatic,
		NameIndex:       cf.Pool.AddUtf8("main"),
		DescriptorIndex: cf.Pool.AddUtf8(mainSignature),
		Attributes:      []classfile.Attribute{classfile.EncodeCode(cf.Pool, code)},
	}
}

// codeWriter is a tiny standalone byte emitter for the trampoline, which
// needs none of Generator's frame-tracking machinery.
type codeWriter struct{ bytes []byte }

func (w *codeWriter) emit1(op byte) { w.bytes = append(w.bytes, op) }

func (w *codeWriter) emit2(op byte, operand uint16) {
	w.bytes = append(w.bytes, op, byte(operand>>8), byte(operand))
}
