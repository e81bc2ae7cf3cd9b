package asm

import (
	"fmt"
	"strings"
)

const defaultOrigin = 0x100
const imageSize = 65536

// Result is the assembler's public contract: a full 64 KiB image, the fixed
// entry address, any per-line errors, and a sourcemap from emitted offset
// back to 0-based source line index for step-debugging.
type Result struct {
	Image     [imageSize]byte
	Entry     uint16
	Errors    []string
	Sourcemap map[uint16]uint32
}

// Compile runs the two-pass assembler described in spec.md section 4: pass 1
// resolves the symbol table against a walk that allows forward references;
// pass 2 re-walks with the completed table, emitting bytes and sourcemap
// entries. Compile never panics or aborts on a bad line — it records a
// "Line N: ..." error and keeps assembling.
func Compile(source string) Result {
	lines := strings.Split(source, "\n")
	st := newSymbolTable()

	pass1(lines, st)

	res := Result{Entry: defaultOrigin, Sourcemap: make(map[uint16]uint32)}
	pass2(lines, st, &res)
	return res
}

func pass1(lines []string, st *SymbolTable) {
	offset := uint16(defaultOrigin)
	for _, raw := range lines {
		sl := lexLine(raw)
		if sl.label != "" {
			st.Define(sl.label, SymbolAddress, offset)
		}
		if sl.mnemonic == "" {
			continue
		}

		switch sl.mnemonic {
		case "ORG":
			if v, ok, err := parseNumber(strings.TrimSpace(sl.operands)); err == nil && ok {
				offset = v
			}
			continue
		case "EQU":
			v, err := equValue(sl.operands, st, true)
			if err == nil && sl.label != "" {
				st.Define(sl.label, SymbolConst, v)
			}
			continue
		case "DB", "DW":
			data, err := encodeData(sl.mnemonic, sl.operands, st, true)
			if err == nil {
				offset += uint16(len(data))
			}
			continue
		}

		encoded, err := encodeInstruction(sl.mnemonic, sl.operands, st, offset, true)
		if err != nil {
			continue // pass 1 never records errors; pass 2 re-derives them
		}
		offset += uint16(len(encoded))
	}
}

func pass2(lines []string, st *SymbolTable, res *Result) {
	offset := uint16(defaultOrigin)
	for i, raw := range lines {
		lineNo := i + 1
		sl := lexLine(raw)
		if sl.mnemonic == "" {
			continue
		}

		switch sl.mnemonic {
		case "ORG":
			v, ok, err := parseNumber(strings.TrimSpace(sl.operands))
			if err != nil || !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: invalid ORG operand", lineNo))
				continue
			}
			offset = v
			continue

		case "EQU":
			// Symbol values were already finalized in pass 1; re-evaluating
			// here only surfaces a genuinely-undefined operand as an error.
			if _, err := equValue(sl.operands, st, false); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %s", lineNo, err))
			}
			continue

		case "DB", "DW":
			data, err := encodeData(sl.mnemonic, sl.operands, st, false)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %s", lineNo, err))
				continue
			}
			if len(data) > 0 {
				res.Sourcemap[offset] = uint32(i)
			}
			writeImage(res, offset, data)
			offset += uint16(len(data))
			continue
		}

		encoded, err := encodeInstruction(sl.mnemonic, sl.operands, st, offset, false)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %s", lineNo, err))
			continue
		}
		res.Sourcemap[offset] = uint32(i)
		writeImage(res, offset, encoded)
		offset += uint16(len(encoded))
	}
}

func writeImage(res *Result, offset uint16, data []byte) {
	for i, b := range data {
		pos := int(offset) + i
		if pos >= imageSize {
			return
		}
		res.Image[pos] = b
	}
}
