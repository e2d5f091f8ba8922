package codegen

import "github.com/gaultier/kotlinc-lite/lang/classfile"

// slotVal is one logical stack or local entry. Long/Double entries have
// WordCount 2 but still occupy exactly one logical slot here; physical slot
// addressing (for locals) is derived separately by summing WordCounts (spec
// §4.7: "Long/Double push two words logically but occupy one logical entry
// with word_count == 2; physical counts are used for slot addressing,
// logical counts for abstract manipulation").
type slotVal struct {
	verif     classfile.VerificationType
	wordCount int
}

// Frame is the code generator's abstract evaluation state: the operand
// stack and local variable array, tracked logically (spec §4.7).
type Frame struct {
	stack  []slotVal
	locals []slotVal

	maxStack  int // physical word count envelope
	maxLocals int // physical word count envelope
}

func newFrame() *Frame {
	return &Frame{}
}

func (f *Frame) push(v classfile.VerificationType, wordCount int) {
	f.stack = append(f.stack, slotVal{verif: v, wordCount: wordCount})
	words := 0
	for _, s := range f.stack {
		words += s.wordCount
	}
	if words > f.maxStack {
		f.maxStack = words
	}
}

func (f *Frame) pop() slotVal {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

// allocLocal appends a new local slot (e.g. a function parameter or a var
// declaration) and returns its physical slot index.
func (f *Frame) allocLocal(v classfile.VerificationType, wordCount int) int {
	physical := f.physicalLocalCount()
	f.locals = append(f.locals, slotVal{verif: v, wordCount: wordCount})
	if physical+wordCount > f.maxLocals {
		f.maxLocals = physical + wordCount
	}
	return physical
}

func (f *Frame) physicalLocalCount() int {
	n := 0
	for _, l := range f.locals {
		n += l.wordCount
	}
	return n
}

// snapshot deep-clones the current stack/locals for a pending stack-map
// frame entry (spec §4.7: "a list of pending stack-map frames, each paired
// with a pc and a deep-cloned frame snapshot").
func (f *Frame) snapshot() (locals, stack []classfile.VerificationType) {
	locals = make([]classfile.VerificationType, len(f.locals))
	for i, l := range f.locals {
		locals[i] = l.verif
	}
	stack = make([]classfile.VerificationType, len(f.stack))
	for i, s := range f.stack {
		stack[i] = s.verif
	}
	return locals, stack
}

// restore replaces the live stack/locals with a previously captured
// snapshot (used when lowering if/while to reset the live frame before
// emitting an alternate branch, spec §4.7 step 5 and the short-circuit
// note).
func (f *Frame) restore(locals, stack []classfile.VerificationType) {
	f.locals = f.locals[:0]
	for _, l := range locals {
		wc := 1
		if l.Tag == classfile.VerifLong || l.Tag == classfile.VerifDouble {
			wc = 2
		}
		f.locals = append(f.locals, slotVal{verif: l, wordCount: wc})
	}
	f.stack = f.stack[:0]
	for _, s := range stack {
		wc := 1
		if s.Tag == classfile.VerifLong || s.Tag == classfile.VerifDouble {
			wc = 2
		}
		f.stack = append(f.stack, slotVal{verif: s, wordCount: wc})
	}
}
