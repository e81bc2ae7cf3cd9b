package isa

// shapeTable maps every fixed opcode (everything except the Jcc family,
// which always uses ShapeRel8) to its operand shape.
var shapeTable = map[Opcode]Shape{
	OpNop: ShapeNone,
	OpHlt: ShapeNone,
	OpRet: ShapeNone,

	OpMovRegReg:    ShapeRegReg,
	OpMovRegImm:    ShapeRegImm,
	OpMovRegIndex:  ShapeRegIndex,
	OpMovIndexReg:  ShapeRegIndex,
	OpMovRegAddr:   ShapeRegAddr,
	OpMovAddrReg:   ShapeRegAddr,
	OpMovAddrImm8:  ShapeAddrImm8,
	OpMovIndexImm8: ShapeIndexImm8,

	OpAddRegReg:   ShapeRegReg,
	OpAddRegImm:   ShapeRegImm,
	OpAddRegAddr:  ShapeRegAddr,
	OpAddRegIndex: ShapeRegIndex,

	OpAndRegReg:   ShapeRegReg,
	OpAndRegImm:   ShapeRegImm,
	OpAndRegAddr:  ShapeRegAddr,
	OpAndRegIndex: ShapeRegIndex,

	OpOrRegReg:   ShapeRegReg,
	OpOrRegImm:   ShapeRegImm,
	OpOrRegAddr:  ShapeRegAddr,
	OpOrRegIndex: ShapeRegIndex,

	OpSubRegReg:   ShapeRegReg,
	OpSubRegImm:   ShapeRegImm,
	OpSubRegAddr:  ShapeRegAddr,
	OpSubRegIndex: ShapeRegIndex,

	OpXorRegReg:   ShapeRegReg,
	OpXorRegImm:   ShapeRegImm,
	OpXorRegAddr:  ShapeRegAddr,
	OpXorRegIndex: ShapeRegIndex,

	OpCmpRegReg:   ShapeRegReg,
	OpCmpRegImm:   ShapeRegImm,
	OpCmpRegAddr:  ShapeRegAddr,
	OpCmpRegIndex: ShapeRegIndex,

	OpIncReg: ShapeReg,
	OpDecReg: ShapeReg,
	OpMulReg: ShapeReg,
	OpDivReg: ShapeReg,
	OpNotReg: ShapeReg,

	OpIncAddr:  ShapeAddr,
	OpIncIndex: ShapeIndex,
	OpDecAddr:  ShapeAddr,
	OpDecIndex: ShapeIndex,
	OpNotAddr:  ShapeAddr,
	OpNotIndex: ShapeIndex,
	OpMulAddr:  ShapeAddr,
	OpMulIndex: ShapeIndex,
	OpDivAddr:  ShapeAddr,
	OpDivIndex: ShapeIndex,

	OpJmpRel16: ShapeRel16,
	OpLoopRel8: ShapeRel8,
	OpIntImm8:  ShapeImm8,
}

// ShapeOf returns the operand shape for any opcode (conditional jumps
// always yield ShapeRel8), and whether the opcode is recognized at all.
func ShapeOf(op Opcode) (Shape, bool) {
	if _, isCond := CondForOpcode(op); isCond {
		return ShapeRel8, true
	}
	s, ok := shapeTable[op]
	return s, ok
}

// EncodedLen returns the total byte length (opcode included) of the
// instruction at op, or 0 if op is not a recognized opcode.
func EncodedLen(op Opcode) int {
	s, ok := ShapeOf(op)
	if !ok {
		return 0
	}
	return s.Len()
}
