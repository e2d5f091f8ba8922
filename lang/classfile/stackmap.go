package classfile

import "golang.org/x/exp/slices"

// VerificationType is one verification_type_info entry (JVMS §4.7.4).
type VerificationType struct {
	Tag byte // Top=0 Integer=1 Float=2 Double=3 Long=4 Null=5 UninitializedThis=6 Object=7 Uninitialized=8

	// Object: constant pool index of the class. Uninitialized: the bytecode
	// offset of the 'new' instruction.
	PoolIndexOrOffset uint16
}

const (
	VerifTop               byte = 0
	VerifInteger           byte = 1
	VerifFloat             byte = 2
	VerifDouble            byte = 3
	VerifLong              byte = 4
	VerifNull              byte = 5
	VerifUninitializedThis byte = 6
	VerifObject            byte = 7
	VerifUninitialized     byte = 8
)

// ResolvedFrame is a stack-map frame after resolution (spec §4.8): PC has
// been turned into OffsetDelta relative to the previous frame, and Kind
// picked to be the smallest encoding that fits.
type ResolvedFrame struct {
	PC          int
	OffsetDelta uint16

	// Locals/Stack are the FULL local and operand-stack verification-type
	// lists at this point; the encoder derives same/chop/append from the
	// delta against the previous frame's Locals.
	Locals []VerificationType
	Stack  []VerificationType
}

// ResolveFrames sorts snapshots by pc, removes pc collisions (keeping the
// last snapshot recorded at a given pc — a later branch's merge always
// subsumes an earlier, narrower one, and spec §8 requires offset_delta
// values to be non-negative after this step), and computes each frame's
// offset_delta relative to the previous one (or to -1 for the first frame,
// per JVMS §4.7.4).
func ResolveFrames(snapshots []ResolvedFrame) []ResolvedFrame {
	if len(snapshots) == 0 {
		return nil
	}
	sorted := make([]ResolvedFrame, len(snapshots))
	copy(sorted, snapshots)
	slices.SortStableFunc(sorted, func(a, b ResolvedFrame) int { return a.PC - b.PC })

	deduped := sorted[:0:0]
	for _, f := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].PC == f.PC {
			deduped[len(deduped)-1] = f // tombstone the earlier entry at this pc
			continue
		}
		deduped = append(deduped, f)
	}

	prevPC := -1
	for i := range deduped {
		deduped[i].OffsetDelta = uint16(deduped[i].PC - prevPC - 1)
		prevPC = deduped[i].PC
	}
	return deduped
}

// EncodeStackMapTable builds the StackMapTable attribute from a list of
// already-resolved frames (see ResolveFrames), choosing the smallest
// encoding kind per entry per the ranges in spec §4.3/§4.8: same (0..63),
// same-locals-1-stack-item (64..127), chop (248..250), same-extended (251),
// append (252..254), full (255).
func EncodeStackMapTable(pool *Pool, frames []ResolvedFrame) Attribute {
	var w writer
	w.u16(uint16(len(frames)))

	var prevLocals []VerificationType
	for _, f := range frames {
		writeFrame(&w, pool, prevLocals, f)
		prevLocals = f.Locals
	}

	nameIdx := pool.AddUtf8("StackMapTable")
	return Attribute{NameIndex: nameIdx, Info: w.buf.Bytes()}
}

func writeFrame(w *writer, pool *Pool, prevLocals []VerificationType, f ResolvedFrame) {
	localsDelta := len(f.Locals) - len(prevLocals)

	switch {
	case localsDelta == 0 && len(f.Stack) == 0 && f.OffsetDelta <= 63:
		w.u8(uint8(f.OffsetDelta))

	case localsDelta == 0 && len(f.Stack) == 1 && f.OffsetDelta <= 63:
		w.u8(64 + uint8(f.OffsetDelta))
		writeVerifType(w, pool, f.Stack[0])

	case localsDelta == 0 && len(f.Stack) == 1:
		w.u8(247)
		w.u16(f.OffsetDelta)
		writeVerifType(w, pool, f.Stack[0])

	case localsDelta < 0 && localsDelta >= -3 && len(f.Stack) == 0:
		w.u8(uint8(251 + localsDelta))
		w.u16(f.OffsetDelta)

	case localsDelta == 0 && len(f.Stack) == 0:
		w.u8(251)
		w.u16(f.OffsetDelta)

	case localsDelta > 0 && localsDelta <= 3 && len(f.Stack) == 0:
		w.u8(uint8(251 + localsDelta))
		w.u16(f.OffsetDelta)
		for _, l := range f.Locals[len(f.Locals)-localsDelta:] {
			writeVerifType(w, pool, l)
		}

	default:
		w.u8(255)
		w.u16(f.OffsetDelta)
		w.u16(uint16(len(f.Locals)))
		for _, l := range f.Locals {
			writeVerifType(w, pool, l)
		}
		w.u16(uint16(len(f.Stack)))
		for _, s := range f.Stack {
			writeVerifType(w, pool, s)
		}
	}
}

func writeVerifType(w *writer, pool *Pool, v VerificationType) {
	w.u8(v.Tag)
	switch v.Tag {
	case VerifObject, VerifUninitialized:
		w.u16(v.PoolIndexOrOffset)
	}
}
