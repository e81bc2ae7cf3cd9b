package cpu

import (
	"testing"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

// place writes bytes starting at 0x100 and returns a freshly loaded state.
func place(bytes ...byte) *State {
	s := NewState()
	var image [MemSize]byte
	copy(image[0x100:], bytes)
	Load(s, image, 0x100)
	return s
}

func step(t *testing.T, s *State) {
	t.Helper()
	_, _, err := Step(s)
	if err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
}

func TestAddSetsOverflowFlag(t *testing.T) {
	// MOV AL, 7Fh ; ADD AL, 1  -> 7F+1 overflows into negative for signed 8-bit
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AL), 0x7F, 0x00,
		byte(isa.OpAddRegImm), byte(isa.AL), 0x01, 0x00,
	)
	step(t, s)
	step(t, s)
	if !s.Flags.OF {
		t.Error("OF should be set: 0x7F + 1 overflows an 8-bit signed value")
	}
	if !s.Flags.SF {
		t.Error("SF should be set: result 0x80 has the sign bit set")
	}
	if s.Flags.ZF {
		t.Error("ZF should be clear")
	}
}

func TestCmpDoesNotModifyDestination(t *testing.T) {
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AX), 0x05, 0x00,
		byte(isa.OpCmpRegImm), byte(isa.AX), 0x05, 0x00,
	)
	step(t, s)
	step(t, s)
	if s.ReadReg(isa.AX) != 5 {
		t.Errorf("AX = %d after CMP, want unchanged 5", s.ReadReg(isa.AX))
	}
	if !s.Flags.ZF {
		t.Error("ZF should be set: CMP AX, 5 where AX == 5")
	}
}

func TestBitwiseOpsNeverSetCarry(t *testing.T) {
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AX), 0xFF, 0xFF,
		byte(isa.OpAndRegImm), byte(isa.AX), 0xFF, 0xFF,
	)
	step(t, s)
	step(t, s)
	if s.Flags.CF {
		t.Error("CF should always be false after a bitwise op")
	}
}

func TestMul8BitSetsSignFlagFromFullWidthProduct(t *testing.T) {
	// AL=0xFF, r=0xFF -> product 0xFE01, which lives entirely in AX for the
	// 8-bit MUL form. Bit 15 of that product is set, so SF must be set too
	// -- a regression that checks bit 31 instead would always read SF=false
	// here.
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AL), 0xFF, 0x00,
		byte(isa.OpMovRegImm), byte(isa.BL), 0xFF, 0x00,
		byte(isa.OpMulReg), byte(isa.BL),
	)
	step(t, s)
	step(t, s)
	step(t, s)
	if s.Registers.AX != 0xFE01 {
		t.Fatalf("AX = %04X, want FE01", s.Registers.AX)
	}
	if !s.Flags.SF {
		t.Error("SF should be set: product 0xFE01 has bit 15 set")
	}
	if !s.Flags.CF {
		t.Error("CF should be set: product doesn't fit in AL alone")
	}
}

func TestMul16BitSetsSignFlagFromFullWidthProduct(t *testing.T) {
	// AX=0x8000, r=1 -> product 0x00008000, bit 31 clear but bit 15 of the
	// low half set; the 16-bit form's sign bit lives at bit 31 of the full
	// DX:AX product, so SF must be clear here even though AX's own top bit
	// is set.
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AX), 0x00, 0x80,
		byte(isa.OpMovRegImm), byte(isa.BX), 0x01, 0x00,
		byte(isa.OpMulReg), byte(isa.BX),
	)
	step(t, s)
	step(t, s)
	step(t, s)
	if s.Flags.SF {
		t.Error("SF should be clear: the 32-bit product 0x00008000 has bit 31 clear")
	}
}

func TestDecWrapsAndSetsSignFlag(t *testing.T) {
	s := place(
		byte(isa.OpMovRegImm), byte(isa.CL), 0x00, 0x00,
		byte(isa.OpDecReg), byte(isa.CL),
	)
	step(t, s)
	step(t, s)
	if s.ReadReg(isa.CL) != 0xFF {
		t.Errorf("CL = %02X after DEC from 0, want FF (wraps)", s.ReadReg(isa.CL))
	}
	if !s.Flags.SF {
		t.Error("SF should be set: 0xFF has the high bit set")
	}
}
