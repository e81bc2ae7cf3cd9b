package asm

import (
	"fmt"
	"strings"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

type operandKind int

const (
	operandReg operandKind = iota
	operandImm
	operandMem
	operandIndex
)

type operand struct {
	kind   operandKind
	reg    isa.RegID // operandReg
	expr   string     // operandImm, operandMem (base expr), operandIndex (base expr)
	idxReg isa.RegID  // operandIndex
}

// classifyOperand parses one comma-separated operand token per spec.md
// section 3's operand grammar: a bare register name, an indexed form
// LABEL[REG], a direct-memory form [expr], or a plain immediate (number or
// label).
func classifyOperand(raw string) (operand, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return operand{}, fmt.Errorf("empty operand")
	}
	if reg, ok := isa.LookupRegister(raw); ok {
		return operand{kind: operandReg, reg: reg}, nil
	}
	if strings.HasSuffix(raw, "]") {
		open := strings.LastIndex(raw, "[")
		if open < 0 {
			return operand{}, fmt.Errorf("unmatched ']' in operand: %s", raw)
		}
		inner := strings.TrimSpace(raw[open+1 : len(raw)-1])
		prefix := strings.TrimSpace(raw[:open])
		if prefix == "" {
			return operand{kind: operandMem, expr: inner}, nil
		}
		idxReg, ok := isa.LookupRegister(inner)
		if !ok {
			return operand{}, fmt.Errorf("invalid index register: %s", inner)
		}
		return operand{kind: operandIndex, expr: prefix, idxReg: idxReg}, nil
	}
	return operand{kind: operandImm, expr: raw}, nil
}

// resolveValue evaluates an operand's expression against the symbol table.
// The "$" token resolves to the offset of the instruction currently being
// encoded, per spec.md section 3's current-location operator. During pass 1,
// an undefined symbol resolves to 0 rather than failing, since later labels
// are routinely forward references.
func resolveValue(st *SymbolTable, offset uint16, allowUnresolved bool, expr string) (uint16, error) {
	if expr == "$" {
		return offset, nil
	}
	if v, ok, err := parseNumber(expr); err != nil {
		return 0, err
	} else if ok {
		return v, nil
	}
	if v, _, ok := st.Lookup(expr); ok {
		return v, nil
	}
	if allowUnresolved {
		return 0, nil
	}
	return 0, fmt.Errorf("undefined symbol: %s", expr)
}
