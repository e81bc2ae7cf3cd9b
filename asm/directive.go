package asm

import "fmt"

// encodeData implements DB and DW: a comma-separated list of numbers, labels,
// or (for DB only) string literals delimited by '"' or '\'', per spec.md
// section 3.
func encodeData(mnemonic, rawOperands string, st *SymbolTable, allowUnresolved bool) ([]byte, error) {
	var out []byte
	for _, raw := range splitOperands(rawOperands) {
		if mnemonic == "DB" && len(raw) >= 2 && isQuotedString(raw) {
			out = append(out, []byte(raw[1:len(raw)-1])...)
			continue
		}
		v, err := resolveValue(st, 0, allowUnresolved, raw)
		if err != nil {
			return nil, err
		}
		if mnemonic == "DB" {
			out = append(out, byte(v))
		} else {
			out = append(out, put16(v)...)
		}
	}
	return out, nil
}

// isQuotedString reports whether raw is fully wrapped in a matching pair of
// '"' or '\'' delimiters.
func isQuotedString(raw string) bool {
	first := raw[0]
	return (first == '"' || first == '\'') && raw[len(raw)-1] == first
}

// equValue resolves the single operand of an EQU directive to its constant
// value. In pass 1 (allowUnresolved) an operand that is not yet defined
// resolves to 0 and the constant keeps that value; pass 2 only reports an
// operand that is never defined.
func equValue(rawOperands string, st *SymbolTable, allowUnresolved bool) (uint16, error) {
	ops := splitOperands(rawOperands)
	if len(ops) != 1 {
		return 0, fmt.Errorf("EQU requires exactly one operand")
	}
	return resolveValue(st, 0, allowUnresolved, ops[0])
}
