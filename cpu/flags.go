package cpu

// widthMask returns the (mask, sign-bit) pair for an 8-bit or 16-bit result.
func widthMask(width int) (mask, msb uint32) {
	if width == 8 {
		return 0xFF, 0x80
	}
	return 0xFFFF, 0x8000
}

func signExtend(v uint32, width int) int32 {
	if width == 8 {
		return int32(int8(byte(v)))
	}
	return int32(int16(uint16(v)))
}

// arith computes a+b or a-b at the given width, sets ZF/SF/CF/OF on state
// per spec.md section 3 invariant 4 plus the OF rule this rewrite adds for
// ADD/SUB/CMP/INC/DEC (see SPEC_FULL.md section 4.2), and returns the
// truncated result.
func arith(s *State, width int, a, b uint32, add bool) uint32 {
	mask, msb := widthMask(width)
	a &= mask
	b &= mask

	var raw int64
	if add {
		raw = int64(a) + int64(b)
	} else {
		raw = int64(a) - int64(b)
	}
	result := uint32(raw) & mask

	s.Flags.ZF = result == 0
	s.Flags.SF = result&msb != 0
	s.Flags.CF = raw > int64(mask) || raw < 0

	sa, sb, sr := signExtend(a, width), signExtend(b, width), signExtend(result, width)
	if add {
		s.Flags.OF = (sa >= 0) == (sb >= 0) && (sr >= 0) != (sa >= 0)
	} else {
		s.Flags.OF = (sa >= 0) != (sb >= 0) && (sr >= 0) != (sa >= 0)
	}

	return result
}

// logic computes a bitwise op's flags. CF is always false here: a
// bitwise combination of two width-masked operands can never exceed the
// width, so the general CF formula (result > width_max || result < 0) never
// fires. This matches the note in spec.md section 4.2. OF is left unchanged.
func logic(s *State, width int, result uint32) uint32 {
	mask, msb := widthMask(width)
	result &= mask
	s.Flags.ZF = result == 0
	s.Flags.SF = result&msb != 0
	s.Flags.CF = false
	return result
}
