package asm

import (
	"fmt"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

// twoOpFamily bundles the four opcodes a reg-destination two-operand
// mnemonic (ADD/SUB/AND/OR/XOR/CMP) picks from depending on its second
// operand's shape.
type twoOpFamily struct {
	regReg, regImm, regAddr, regIndex isa.Opcode
}

var twoOpFamilies = map[string]twoOpFamily{
	"ADD": {isa.OpAddRegReg, isa.OpAddRegImm, isa.OpAddRegAddr, isa.OpAddRegIndex},
	"SUB": {isa.OpSubRegReg, isa.OpSubRegImm, isa.OpSubRegAddr, isa.OpSubRegIndex},
	"AND": {isa.OpAndRegReg, isa.OpAndRegImm, isa.OpAndRegAddr, isa.OpAndRegIndex},
	"OR":  {isa.OpOrRegReg, isa.OpOrRegImm, isa.OpOrRegAddr, isa.OpOrRegIndex},
	"XOR": {isa.OpXorRegReg, isa.OpXorRegImm, isa.OpXorRegAddr, isa.OpXorRegIndex},
	"CMP": {isa.OpCmpRegReg, isa.OpCmpRegImm, isa.OpCmpRegAddr, isa.OpCmpRegIndex},
}

// singleOpFamily bundles the three opcodes a single-operand mnemonic
// (INC/DEC/MUL/DIV/NOT) picks from depending on whether its operand is a
// plain register, a direct memory cell, or an indexed memory cell.
type singleOpFamily struct {
	reg, addr, index isa.Opcode
}

var singleOpFamilies = map[string]singleOpFamily{
	"INC": {isa.OpIncReg, isa.OpIncAddr, isa.OpIncIndex},
	"DEC": {isa.OpDecReg, isa.OpDecAddr, isa.OpDecIndex},
	"MUL": {isa.OpMulReg, isa.OpMulAddr, isa.OpMulIndex},
	"DIV": {isa.OpDivReg, isa.OpDivAddr, isa.OpDivIndex},
	"NOT": {isa.OpNotReg, isa.OpNotAddr, isa.OpNotIndex},
}

func put16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// encodeInstruction turns one mnemonic and its raw (unsplit) operand string
// into bytes, per the byte layouts in spec.md section 4 and the opcode
// assignments resolved in SPEC_FULL.md section 4.2. offset is the address
// the instruction will be loaded at, needed for "$" and for the relative
// jump families. During pass 1 (allowUnresolved), forward-referenced labels
// resolve to 0 rather than erroring, since their real value isn't known
// until pass 1 finishes walking the source.
func encodeInstruction(mnemonic, rawOperands string, st *SymbolTable, offset uint16, allowUnresolved bool) ([]byte, error) {
	rawOps := splitOperands(rawOperands)
	ops := make([]operand, len(rawOps))
	for i, raw := range rawOps {
		o, err := classifyOperand(raw)
		if err != nil {
			return nil, err
		}
		ops[i] = o
	}

	resolve := func(expr string) (uint16, error) {
		return resolveValue(st, offset, allowUnresolved, expr)
	}

	switch mnemonic {
	case "NOP":
		return []byte{byte(isa.OpNop)}, nil
	case "HLT":
		return []byte{byte(isa.OpHlt)}, nil
	case "RET":
		return []byte{byte(isa.OpRet)}, nil

	case "MOV":
		return encodeMov(ops, resolve)

	case "INT":
		if len(ops) != 1 || ops[0].kind != operandImm {
			return nil, fmt.Errorf("INT requires a single immediate operand")
		}
		v, err := resolve(ops[0].expr)
		if err != nil {
			return nil, err
		}
		return []byte{byte(isa.OpIntImm8), byte(v)}, nil

	case "JMP":
		return encodeRel16(isa.OpJmpRel16, ops, offset, resolve)
	case "LOOP":
		return encodeRel8(isa.OpLoopRel8, ops, offset, resolve, allowUnresolved)
	}

	if cond, ok := isa.LookupCond(mnemonic); ok {
		return encodeRel8(isa.OpcodeForCond(cond), ops, offset, resolve, allowUnresolved)
	}
	if fam, ok := twoOpFamilies[mnemonic]; ok {
		return encodeTwoOp(mnemonic, fam, ops, resolve)
	}
	if fam, ok := singleOpFamilies[mnemonic]; ok {
		return encodeSingleOp(mnemonic, fam, ops, resolve)
	}

	return nil, fmt.Errorf("unknown mnemonic: %s", mnemonic)
}

func encodeMov(ops []operand, resolve func(string) (uint16, error)) ([]byte, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("MOV requires two operands")
	}
	dst, src := ops[0], ops[1]

	switch dst.kind {
	case operandReg:
		switch src.kind {
		case operandReg:
			return []byte{byte(isa.OpMovRegReg), byte(dst.reg)<<4 | byte(src.reg)}, nil
		case operandImm:
			v, err := resolve(src.expr)
			if err != nil {
				return nil, err
			}
			return append([]byte{byte(isa.OpMovRegImm), byte(dst.reg)}, put16(v)...), nil
		case operandMem:
			addr, err := resolve(src.expr)
			if err != nil {
				return nil, err
			}
			return append([]byte{byte(isa.OpMovRegAddr), byte(dst.reg)}, put16(addr)...), nil
		case operandIndex:
			base, err := resolve(src.expr)
			if err != nil {
				return nil, err
			}
			return append([]byte{byte(isa.OpMovRegIndex), byte(dst.reg), byte(src.idxReg)}, put16(base)...), nil
		}

	case operandMem:
		addr, err := resolve(dst.expr)
		if err != nil {
			return nil, err
		}
		switch src.kind {
		case operandReg:
			return append([]byte{byte(isa.OpMovAddrReg), byte(src.reg)}, put16(addr)...), nil
		case operandImm:
			imm, err := resolve(src.expr)
			if err != nil {
				return nil, err
			}
			return append(put16AfterOp(isa.OpMovAddrImm8, addr), byte(imm)), nil
		default:
			return nil, fmt.Errorf("Memory to Memory transfer not allowed. Use a register as intermediate.")
		}

	case operandIndex:
		base, err := resolve(dst.expr)
		if err != nil {
			return nil, err
		}
		switch src.kind {
		case operandReg:
			return []byte{byte(isa.OpMovIndexReg), byte(src.reg), byte(dst.idxReg), byte(base), byte(base >> 8)}, nil
		case operandImm:
			imm, err := resolve(src.expr)
			if err != nil {
				return nil, err
			}
			return []byte{byte(isa.OpMovIndexImm8), byte(dst.idxReg), byte(base), byte(base >> 8), byte(imm)}, nil
		default:
			return nil, fmt.Errorf("Memory to Memory transfer not allowed. Use a register as intermediate.")
		}
	}

	return nil, fmt.Errorf("invalid operand to MOV")
}

func put16AfterOp(op isa.Opcode, addr uint16) []byte {
	return []byte{byte(op), byte(addr), byte(addr >> 8)}
}

func encodeTwoOp(mnemonic string, fam twoOpFamily, ops []operand, resolve func(string) (uint16, error)) ([]byte, error) {
	if len(ops) != 2 || ops[0].kind != operandReg {
		return nil, fmt.Errorf("invalid operand to %s: destination must be a register", mnemonic)
	}
	dst, src := ops[0].reg, ops[1]
	switch src.kind {
	case operandReg:
		return []byte{byte(fam.regReg), byte(dst)<<4 | byte(src.reg)}, nil
	case operandImm:
		v, err := resolve(src.expr)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(fam.regImm), byte(dst)}, put16(v)...), nil
	case operandMem:
		addr, err := resolve(src.expr)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(fam.regAddr), byte(dst)}, put16(addr)...), nil
	case operandIndex:
		base, err := resolve(src.expr)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(fam.regIndex), byte(dst), byte(src.idxReg)}, put16(base)...), nil
	}
	return nil, fmt.Errorf("invalid operand to %s", mnemonic)
}

func encodeSingleOp(mnemonic string, fam singleOpFamily, ops []operand, resolve func(string) (uint16, error)) ([]byte, error) {
	if len(ops) != 1 {
		return nil, fmt.Errorf("%s requires a single operand", mnemonic)
	}
	switch ops[0].kind {
	case operandReg:
		return []byte{byte(fam.reg), byte(ops[0].reg)}, nil
	case operandMem:
		addr, err := resolve(ops[0].expr)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(fam.addr)}, put16(addr)...), nil
	case operandIndex:
		base, err := resolve(ops[0].expr)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(fam.index), byte(ops[0].idxReg)}, put16(base)...), nil
	}
	return nil, fmt.Errorf("invalid operand to %s: immediate not allowed", mnemonic)
}

func encodeRel16(op isa.Opcode, ops []operand, offset uint16, resolve func(string) (uint16, error)) ([]byte, error) {
	if len(ops) != 1 || ops[0].kind != operandImm {
		return nil, fmt.Errorf("JMP requires a single label or number operand")
	}
	target, err := resolve(ops[0].expr)
	if err != nil {
		return nil, err
	}
	disp := int32(target) - int32(offset) - 3
	return append([]byte{byte(op)}, put16(uint16(int16(disp)))...), nil
}

// encodeRel8 encodes a Jcc/LOOP instruction. The 8-bit range check is
// skipped in allow-unresolved mode: a forward-referenced label resolves to
// a placeholder 0 there, which would otherwise spuriously trip the range
// check before the real target is known. Pass 2 re-validates with the
// resolved value.
func encodeRel8(op isa.Opcode, ops []operand, offset uint16, resolve func(string) (uint16, error), allowUnresolved bool) ([]byte, error) {
	if len(ops) != 1 || ops[0].kind != operandImm {
		return nil, fmt.Errorf("expected a single label or number operand")
	}
	target, err := resolve(ops[0].expr)
	if err != nil {
		return nil, err
	}
	disp := int32(target) - int32(offset) - 2
	if !allowUnresolved && (disp < -128 || disp > 127) {
		return nil, fmt.Errorf("relative branch target out of 8-bit range")
	}
	return []byte{byte(op), byte(int8(disp))}, nil
}
