package asm

import (
	"fmt"
	"sort"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

// Listing renders a sourcemap-aware disassembly of a compiled image: one
// line per sourcemap entry (each instruction and each DB/DW directive), in
// address order, annotated with the originating source line. A DB/DW entry
// is decoded from its first byte like an instruction. It exists for the
// debug REPL's "program" command and for asmvm compile --listing.
func Listing(res Result, source []string) []string {
	offsets := make([]uint16, 0, len(res.Sourcemap))
	for off := range res.Sourcemap {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	lines := make([]string, 0, len(offsets))
	for _, off := range offsets {
		lineIdx := res.Sourcemap[off]
		text := ""
		if int(lineIdx) < len(source) {
			text = source[lineIdx]
		}
		mnemonic, bytesUsed := disassembleOne(res.Image[:], off)
		lines = append(lines, fmt.Sprintf("%04X  %-28s ; line %d: %s", off, mnemonic, lineIdx+1, text))
		_ = bytesUsed
	}
	return lines
}

// disassembleOne decodes a single instruction at off, returning its
// mnemonic-plus-operand text and the number of bytes it occupies. Opcodes
// with no registered mnemonic (e.g. a stray data byte the sourcemap still
// points at) render as a raw DB.
func disassembleOne(image []byte, off uint16) (string, int) {
	op := isa.Opcode(image[off])
	shape, ok := isa.ShapeOf(op)
	if !ok {
		return fmt.Sprintf("DB %02Xh", op), 1
	}
	name, _ := isa.MnemonicFor(op)
	at := func(i int) byte { return image[int(off)+i] }
	word := func(i int) uint16 { return uint16(at(i)) | uint16(at(i+1))<<8 }

	switch shape {
	case isa.ShapeNone:
		return name, 1
	case isa.ShapeRegReg:
		b := at(1)
		return fmt.Sprintf("%s %s, %s", name, isa.RegID(b>>4).String(), isa.RegID(b&0xF).String()), 2
	case isa.ShapeRegImm:
		return fmt.Sprintf("%s %s, %04Xh", name, isa.RegID(at(1)).String(), word(2)), 4
	case isa.ShapeRegAddr:
		if op == isa.OpMovAddrReg {
			return fmt.Sprintf("%s [%04Xh], %s", name, word(2), isa.RegID(at(1)).String()), 4
		}
		return fmt.Sprintf("%s %s, [%04Xh]", name, isa.RegID(at(1)).String(), word(2)), 4
	case isa.ShapeRegIndex:
		if op == isa.OpMovIndexReg {
			return fmt.Sprintf("%s %04Xh[%s], %s", name, word(3), isa.RegID(at(2)).String(), isa.RegID(at(1)).String()), 5
		}
		return fmt.Sprintf("%s %s, %04Xh[%s]", name, isa.RegID(at(1)).String(), word(3), isa.RegID(at(2)).String()), 5
	case isa.ShapeAddrImm8:
		return fmt.Sprintf("%s [%04Xh], %02Xh", name, word(1), at(3)), 4
	case isa.ShapeIndexImm8:
		return fmt.Sprintf("%s %04Xh[%s], %02Xh", name, word(2), isa.RegID(at(1)).String(), at(4)), 5
	case isa.ShapeReg:
		return fmt.Sprintf("%s %s", name, isa.RegID(at(1)).String()), 2
	case isa.ShapeAddr:
		return fmt.Sprintf("%s [%04Xh]", name, word(1)), 3
	case isa.ShapeIndex:
		return fmt.Sprintf("%s %04Xh[%s]", name, word(2), isa.RegID(at(1)).String()), 4
	case isa.ShapeRel16:
		disp := int16(word(1))
		return fmt.Sprintf("%s %04Xh", name, uint16(int32(off)+3+int32(disp))), 3
	case isa.ShapeRel8:
		disp := int8(at(1))
		return fmt.Sprintf("%s %04Xh", name, uint16(int32(off)+2+int32(disp))), 2
	case isa.ShapeImm8:
		return fmt.Sprintf("%s %02Xh", name, at(1)), 2
	}
	return name, 1
}
