package cpu

import (
	"fmt"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

// decoded holds every operand field any instruction shape might populate.
// Not every field is meaningful for a given shape; the execute switch below
// only reads the ones its shape produced.
type decoded struct {
	op   isa.Opcode
	dest isa.RegID
	src  isa.RegID
	idx  isa.RegID
	imm  uint16
	addr uint16
	disp int16
}

func decodeOperands(c *cursor, op isa.Opcode, shape isa.Shape) (decoded, error) {
	d := decoded{op: op}
	var b byte
	var err error

	switch shape {
	case isa.ShapeNone:
	case isa.ShapeRegReg:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.dest, d.src = isa.RegID(b>>4), isa.RegID(b&0x0F)
	case isa.ShapeRegImm:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.dest = isa.RegID(b)
		if d.imm, err = c.fetchWord(); err != nil {
			return d, err
		}
	case isa.ShapeRegAddr:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.dest = isa.RegID(b)
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
	case isa.ShapeRegIndex:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.dest = isa.RegID(b)
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.idx = isa.RegID(b)
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
	case isa.ShapeAddrImm8:
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.imm = uint16(b)
	case isa.ShapeIndexImm8:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.idx = isa.RegID(b)
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.imm = uint16(b)
	case isa.ShapeReg:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.dest = isa.RegID(b)
	case isa.ShapeAddr:
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
	case isa.ShapeIndex:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.idx = isa.RegID(b)
		if d.addr, err = c.fetchWord(); err != nil {
			return d, err
		}
	case isa.ShapeRel16:
		var w uint16
		if w, err = c.fetchWord(); err != nil {
			return d, err
		}
		d.disp = int16(w)
	case isa.ShapeRel8:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.disp = int16(int8(b))
	case isa.ShapeImm8:
		if b, err = c.fetchByte(); err != nil {
			return d, err
		}
		d.imm = uint16(b)
	default:
		return d, fmt.Errorf("cpu: unhandled shape %d", shape)
	}

	return d, nil
}

// effectiveAddr computes base + regs[idx], the indexed addressing mode
// from spec.md section 4.1 ("LABEL[REG]").
func (s *State) effectiveAddr(base uint16, idx isa.RegID) uint16 {
	return base + s.ReadReg(idx)
}

// readMem reads a width-bit (8 or 16) value at addr.
func (s *State) readMem(addr uint16, width int) (uint16, error) {
	if width == 8 {
		return uint16(s.Memory[addr]), nil
	}
	if addr == 0xFFFF {
		return 0, ErrMemoryOutOfBounds
	}
	return uint16(s.Memory[addr]) | uint16(s.Memory[addr+1])<<8, nil
}

// writeMem writes a width-bit (8 or 16) value at addr.
func (s *State) writeMem(addr uint16, value uint16, width int) error {
	if width == 8 {
		s.Memory[addr] = byte(value)
		return nil
	}
	if addr == 0xFFFF {
		return ErrMemoryOutOfBounds
	}
	s.Memory[addr] = byte(value)
	s.Memory[addr+1] = byte(value >> 8)
	return nil
}

// Step decodes and executes exactly one instruction starting at
// state.Registers.IP, per the contract in spec.md section 6. On success it
// returns any output produced by an INT 21h sub-function and whether HLT
// was reached. On a fault it returns a non-nil error (one of the sentinels
// in errors.go) and leaves state.Error set to a human-readable message, per
// spec.md section 7.
func Step(state *State) (output string, halted bool, err error) {
	c := newCursor(state, state.Registers.IP)

	opByte, err := c.fetchByte()
	if err != nil {
		return fault(state, err)
	}
	op := isa.Opcode(opByte)

	shape, known := isa.ShapeOf(op)
	if !known {
		if state.CompatMode {
			if err := c.commit(); err != nil {
				return fault(state, err)
			}
			return "", false, nil
		}
		return fault(state, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, opByte))
	}

	d, err := decodeOperands(c, op, shape)
	if err != nil {
		return fault(state, err)
	}
	if err := c.commit(); err != nil {
		return fault(state, err)
	}

	output, halted, err = execute(state, d)
	if err != nil {
		return fault(state, err)
	}
	return output, halted, nil
}

func fault(state *State, err error) (string, bool, error) {
	state.Error = err.Error()
	return "", false, err
}

func execute(s *State, d decoded) (output string, halted bool, err error) {
	switch d.op {
	case isa.OpNop:
		// no effect

	case isa.OpHlt:
		halted = true

	case isa.OpRet:
		// reserved: stack manipulation is not implemented by this core

	case isa.OpMovRegReg:
		s.WriteReg(d.dest, s.ReadReg(d.src))
	case isa.OpMovRegImm:
		if d.dest.Is8Bit() {
			s.WriteReg(d.dest, d.imm&0xFF)
		} else {
			s.WriteReg(d.dest, d.imm)
		}
	case isa.OpMovRegAddr:
		width := regWidth(d.dest)
		v, err := s.readMem(d.addr, width)
		if err != nil {
			return "", false, err
		}
		s.WriteReg(d.dest, v)
	case isa.OpMovAddrReg:
		width := regWidth(d.dest)
		if err := s.writeMem(d.addr, s.ReadReg(d.dest), width); err != nil {
			return "", false, err
		}
	case isa.OpMovRegIndex:
		width := regWidth(d.dest)
		eff := s.effectiveAddr(d.addr, d.idx)
		v, err := s.readMem(eff, width)
		if err != nil {
			return "", false, err
		}
		s.WriteReg(d.dest, v)
	case isa.OpMovIndexReg:
		width := regWidth(d.dest)
		eff := s.effectiveAddr(d.addr, d.idx)
		if err := s.writeMem(eff, s.ReadReg(d.dest), width); err != nil {
			return "", false, err
		}
	case isa.OpMovAddrImm8:
		if err := s.writeMem(d.addr, d.imm, 8); err != nil {
			return "", false, err
		}
	case isa.OpMovIndexImm8:
		eff := s.effectiveAddr(d.addr, d.idx)
		if err := s.writeMem(eff, d.imm, 8); err != nil {
			return "", false, err
		}

	case isa.OpAddRegReg:
		return "", false, execTwoOpReg(s, d, true, true)
	case isa.OpAddRegImm:
		return "", false, execRegImm(s, d, true, true)
	case isa.OpAddRegAddr:
		return "", false, execRegAddr(s, d, true, true)
	case isa.OpAddRegIndex:
		return "", false, execRegIndex(s, d, true, true)

	case isa.OpSubRegReg:
		return "", false, execTwoOpReg(s, d, false, true)
	case isa.OpSubRegImm:
		return "", false, execRegImm(s, d, false, true)
	case isa.OpSubRegAddr:
		return "", false, execRegAddr(s, d, false, true)
	case isa.OpSubRegIndex:
		return "", false, execRegIndex(s, d, false, true)

	case isa.OpCmpRegReg:
		return "", false, execCompareReg(s, d)
	case isa.OpCmpRegImm:
		return "", false, execCompareImm(s, d)
	case isa.OpCmpRegAddr:
		return "", false, execCompareAddr(s, d)
	case isa.OpCmpRegIndex:
		return "", false, execCompareIndex(s, d)

	case isa.OpAndRegReg:
		return "", false, execLogicReg(s, d, bitAnd)
	case isa.OpAndRegImm:
		return "", false, execLogicImm(s, d, bitAnd)
	case isa.OpAndRegAddr:
		return "", false, execLogicAddr(s, d, bitAnd)
	case isa.OpAndRegIndex:
		return "", false, execLogicIndex(s, d, bitAnd)

	case isa.OpOrRegReg:
		return "", false, execLogicReg(s, d, bitOr)
	case isa.OpOrRegImm:
		return "", false, execLogicImm(s, d, bitOr)
	case isa.OpOrRegAddr:
		return "", false, execLogicAddr(s, d, bitOr)
	case isa.OpOrRegIndex:
		return "", false, execLogicIndex(s, d, bitOr)

	case isa.OpXorRegReg:
		return "", false, execLogicReg(s, d, bitXor)
	case isa.OpXorRegImm:
		return "", false, execLogicImm(s, d, bitXor)
	case isa.OpXorRegAddr:
		return "", false, execLogicAddr(s, d, bitXor)
	case isa.OpXorRegIndex:
		return "", false, execLogicIndex(s, d, bitXor)

	case isa.OpNotReg:
		width := regWidth(d.dest)
		mask, _ := widthMask(width)
		s.WriteReg(d.dest, uint16(^uint32(s.ReadReg(d.dest))&mask))
	case isa.OpNotAddr:
		v, err := s.readMem(d.addr, 8)
		if err != nil {
			return "", false, err
		}
		return "", false, s.writeMem(d.addr, uint16(^byte(v)), 8)
	case isa.OpNotIndex:
		eff := s.effectiveAddr(d.addr, d.idx)
		v, err := s.readMem(eff, 8)
		if err != nil {
			return "", false, err
		}
		return "", false, s.writeMem(eff, uint16(^byte(v)), 8)

	case isa.OpIncReg:
		width := regWidth(d.dest)
		s.WriteReg(d.dest, uint16(arith(s, width, uint32(s.ReadReg(d.dest)), 1, true)))
	case isa.OpDecReg:
		width := regWidth(d.dest)
		s.WriteReg(d.dest, uint16(arith(s, width, uint32(s.ReadReg(d.dest)), 1, false)))
	case isa.OpIncAddr:
		return "", false, execMemInc(s, d.addr, true)
	case isa.OpDecAddr:
		return "", false, execMemInc(s, d.addr, false)
	case isa.OpIncIndex:
		return "", false, execMemInc(s, s.effectiveAddr(d.addr, d.idx), true)
	case isa.OpDecIndex:
		return "", false, execMemInc(s, s.effectiveAddr(d.addr, d.idx), false)

	case isa.OpMulReg:
		return "", false, execMul(s, d.dest)
	case isa.OpDivReg:
		return "", false, execDiv(s, d.dest)
	case isa.OpMulAddr:
		return "", false, execMulMem(s, d.addr)
	case isa.OpDivAddr:
		return "", false, execDivMem(s, d.addr)
	case isa.OpMulIndex:
		return "", false, execMulMem(s, s.effectiveAddr(d.addr, d.idx))
	case isa.OpDivIndex:
		return "", false, execDivMem(s, s.effectiveAddr(d.addr, d.idx))

	case isa.OpJmpRel16:
		s.Registers.IP = uint16(int32(s.Registers.IP) + int32(d.disp))

	case isa.OpLoopRel8:
		s.Registers.CX = s.Registers.CX - 1
		if s.Registers.CX != 0 {
			s.Registers.IP = uint16(int32(s.Registers.IP) + int32(d.disp))
		}

	case isa.OpIntImm8:
		return execInterrupt(s, byte(d.imm))

	default:
		if cond, ok := isa.CondForOpcode(d.op); ok {
			if evalCond(s, cond) {
				s.Registers.IP = uint16(int32(s.Registers.IP) + int32(d.disp))
			}
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(d.op))
	}

	return "", halted, nil
}

func regWidth(r isa.RegID) int {
	if r.Is8Bit() {
		return 8
	}
	return 16
}

func execInterrupt(s *State, n byte) (string, bool, error) {
	if n != 0x21 {
		return "", false, nil
	}
	out, err := int21(s)
	if err != nil {
		return "", false, err
	}
	return out, false, nil
}

func evalCond(s *State, cond isa.Cond) bool {
	switch cond {
	case isa.CondE:
		return s.Flags.ZF
	case isa.CondNE:
		return !s.Flags.ZF
	case isa.CondL:
		return s.Flags.SF != s.Flags.OF
	case isa.CondLE:
		return s.Flags.ZF || s.Flags.SF != s.Flags.OF
	case isa.CondG:
		return !s.Flags.ZF && s.Flags.SF == s.Flags.OF
	case isa.CondGE:
		return s.Flags.SF == s.Flags.OF
	case isa.CondB:
		return s.Flags.CF
	case isa.CondBE:
		return s.Flags.CF || s.Flags.ZF
	case isa.CondA:
		return !s.Flags.CF && !s.Flags.ZF
	case isa.CondAE:
		return !s.Flags.CF
	default:
		return false
	}
}
