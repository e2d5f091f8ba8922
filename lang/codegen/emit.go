package codegen

// loadLocal emits the correct load opcode for a physical local slot,
// preferring the compact *_0..*_3 forms where the slot allows it (JVMS
// §6.5's dedicated short forms, used by every real compiler).
func (g *Generator) loadLocal(slot int, wide bool) {
	if wide {
		switch slot {
		case 0:
			g.emit1(opLload0)
		case 1:
			g.emit1(opLload1)
		case 2:
			g.emit1(opLload2)
		case 3:
			g.emit1(opLload3)
		default:
			g.emit1WithU8(opLload, byte(slot))
		}
		return
	}
	switch slot {
	case 0:
		g.emit1(opIload0)
	case 1:
		g.emit1(opIload1)
	case 2:
		g.emit1(opIload2)
	case 3:
		g.emit1(opIload3)
	default:
		g.emit1WithU8(opIload, byte(slot))
	}
}

func (g *Generator) storeLocal(slot int, wide bool) {
	if wide {
		switch slot {
		case 0:
			g.emit1(opLstore0)
		case 1:
			g.emit1(opLstore1)
		case 2:
			g.emit1(opLstore2)
		case 3:
			g.emit1(opLstore3)
		default:
			g.emit1WithU8(opLstore, byte(slot))
		}
		return
	}
	switch slot {
	case 0:
		g.emit1(opIstore0)
	case 1:
		g.emit1(opIstore1)
	case 2:
		g.emit1(opIstore2)
	case 3:
		g.emit1(opIstore3)
	default:
		g.emit1WithU8(opIstore, byte(slot))
	}
}

// loadIntConstant picks the smallest encoding for a known-at-compile-time
// int value: iconst_m1..5, bipush, sipush, or a pool-backed ldc (spec
// §4.7's literal lowering).
func (g *Generator) loadIntConstant(v int64) {
	switch v {
	case -1:
		g.emit1(opIconstM1)
		return
	case 0:
		g.emit1(opIconst0)
		return
	case 1:
		g.emit1(opIconst1)
		return
	case 2:
		g.emit1(opIconst2)
		return
	case 3:
		g.emit1(opIconst3)
		return
	case 4:
		g.emit1(opIconst4)
		return
	case 5:
		g.emit1(opIconst5)
		return
	}
	switch {
	case v >= -128 && v <= 127:
		g.emit1WithU8(opBipush, byte(v))
	case v >= -32768 && v <= 32767:
		g.emit2(opSipush, uint16(v))
	default:
		idx := g.Pool.AddInteger(int32(v))
		g.ldc(idx)
	}
}

func (g *Generator) loadLongConstant(v int64) {
	if v == 0 {
		g.emit1(opLconst0)
		return
	}
	if v == 1 {
		g.emit1(opLconst1)
		return
	}
	idx := g.Pool.AddLong(v)
	g.emit2(opLdc2W, idx)
}

// ldc emits the narrow or wide form depending on whether idx fits a byte.
func (g *Generator) ldc(idx uint16) {
	if idx <= 0xff {
		g.emit1WithU8(opLdc, byte(idx))
		return
	}
	g.emit2(opLdcW, idx)
}
