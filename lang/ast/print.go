package ast

import (
	"fmt"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/token"
)

// Print renders the tree back to source text. It exists primarily to support
// the round-trip property in spec §8 ("parse(lex(S)) pretty-printed re-lexes
// and re-parses to an equivalent AST") and as a debugging aid; it does not
// need to reproduce the original formatting, only valid, equivalent source.
func Print(t *Tree, toks *lexer.Tokens) string {
	var b strings.Builder
	for _, i := range t.TopLevel {
		printNode(&b, t, toks, i, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("    ")
	}
}

func printNode(b *strings.Builder, t *Tree, toks *lexer.Tokens, i int, depth int) {
	if i == 0 {
		return
	}
	n := t.Node(i)
	switch n.Kind {
	case Number:
		ex := t.Extra(n.ExtraDataI)
		fmt.Fprintf(b, "%d", ex.IntValue)
		if ex.IsLong {
			b.WriteByte('L')
		}
	case Bool:
		if n.ExtraDataI != 0 && t.Extra(n.ExtraDataI).IntValue != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case String:
		fmt.Fprintf(b, "%q", t.Extra(n.ExtraDataI).StringValue)
	case VarRef, UnresolvedName, ClassRef:
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
	case Navigation:
		printNode(b, t, toks, n.Lhs, depth)
		b.WriteByte('.')
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
	case Unary:
		b.WriteString(unaryOpString(toks.Tokens[n.MainTokenI].Kind))
		printNode(b, t, toks, n.Rhs, depth)
	case Binary:
		printNode(b, t, toks, n.Lhs, depth)
		fmt.Fprintf(b, " %s ", toks.Tokens[n.MainTokenI].Kind)
		printNode(b, t, toks, n.Rhs, depth)
	case Assignment:
		printNode(b, t, toks, n.Lhs, depth)
		b.WriteString(" = ")
		printNode(b, t, toks, n.Rhs, depth)
	case Call:
		printNode(b, t, toks, n.Lhs, depth)
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			printNode(b, t, toks, c, depth)
		}
		b.WriteByte(')')
	case VarDef:
		b.WriteString("var ")
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
		ex := t.Extra(n.ExtraDataI)
		if ex.DeclaredTypeI != 0 {
			b.WriteString(": ")
			printNode(b, t, toks, ex.DeclaredTypeI, depth)
		}
		if n.Rhs != 0 {
			b.WriteString(" = ")
			printNode(b, t, toks, n.Rhs, depth)
		}
	case Type:
		if n.Lhs != 0 {
			printNode(b, t, toks, n.Lhs, depth)
			b.WriteByte('.')
		}
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
	case FunctionParam:
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
		b.WriteString(": ")
		printNode(b, t, toks, n.Lhs, depth)
	case Return:
		b.WriteString("return")
		if n.Rhs != 0 {
			b.WriteByte(' ')
			printNode(b, t, toks, n.Rhs, depth)
		}
	case If:
		b.WriteString("if (")
		printNode(b, t, toks, n.Lhs, depth)
		b.WriteString(") ")
		te := t.Node(n.Rhs)
		printBlock(b, t, toks, te.Lhs, depth)
		if n.Flags&FlagHasElse != 0 {
			b.WriteString(" else ")
			printBlock(b, t, toks, te.Rhs, depth)
		}
	case WhileLoop:
		b.WriteString("while (")
		printNode(b, t, toks, n.Lhs, depth)
		b.WriteString(") ")
		printBlock(b, t, toks, n.Rhs, depth)
	case FunctionDef:
		b.WriteString("fun ")
		b.WriteString(lexer.Ident(toks, n.MainTokenI))
		b.WriteByte('(')
		params := t.Node(n.Lhs)
		for i, p := range params.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			printNode(b, t, toks, p, depth)
		}
		b.WriteByte(')')
		ex := t.Extra(n.ExtraDataI)
		if ex.ReturnTypeI != 0 {
			b.WriteString(": ")
			printNode(b, t, toks, ex.ReturnTypeI, depth)
		}
		b.WriteByte(' ')
		printBlock(b, t, toks, n.Rhs, depth)
	case List:
		printBlock(b, t, toks, i, depth)
	default:
		fmt.Fprintf(b, "/* unhandled node kind %d */", n.Kind)
	}
}

func printBlock(b *strings.Builder, t *Tree, toks *lexer.Tokens, i int, depth int) {
	b.WriteString("{\n")
	if i != 0 {
		n := t.Node(i)
		for _, s := range n.Children {
			indent(b, depth+1)
			printNode(b, t, toks, s, depth+1)
			b.WriteByte('\n')
		}
	}
	indent(b, depth)
	b.WriteByte('}')
}

func unaryOpString(k token.Kind) string {
	switch k {
	case token.MINUS:
		return "-"
	case token.BANG:
		return "!"
	default:
		return "?"
	}
}
