package cpu

import (
	"errors"
	"testing"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

// The four "Boundary behaviors" scenarios from spec.md section 8 that the
// table-driven opcode tests don't otherwise exercise: a 16-bit memory access
// that reaches the top of the address space, DIV overflow (as distinct from
// divide-by-zero), LOOP decrementing CX from zero, and the CompatMode
// fault-vs-NOP split on an unrecognized opcode.

func TestMemoryAccess16BitFaultsAtTopOfMemory(t *testing.T) {
	// MOV AX, [0xFFFF]: a 16-bit read straddling the last byte of memory
	// must fault rather than silently wrap to address 0.
	s := place(byte(isa.OpMovRegAddr), byte(isa.AX), 0xFF, 0xFF)
	_, _, err := Step(s)
	if !errors.Is(err, ErrMemoryOutOfBounds) {
		t.Fatalf("err = %v, want ErrMemoryOutOfBounds", err)
	}
}

func TestDivideOverflowFaults(t *testing.T) {
	// 16-bit DIV: DX:AX = 0xFFFFFFFF, divisor 1 -> quotient overflows 0xFFFF.
	s := place(
		byte(isa.OpMovRegImm), byte(isa.DX), 0xFF, 0xFF,
		byte(isa.OpMovRegImm), byte(isa.AX), 0xFF, 0xFF,
		byte(isa.OpMovRegImm), byte(isa.BX), 0x01, 0x00,
		byte(isa.OpDivReg), byte(isa.BX),
	)
	step(t, s)
	step(t, s)
	step(t, s)
	_, _, err := Step(s)
	if !errors.Is(err, ErrDivideOverflow) {
		t.Fatalf("err = %v, want ErrDivideOverflow", err)
	}
}

func TestDivideOverflow8Bit(t *testing.T) {
	// 8-bit DIV: AX = 0xFFFF, divisor 1 -> quotient overflows 0xFF.
	s := place(
		byte(isa.OpMovRegImm), byte(isa.AX), 0xFF, 0xFF,
		byte(isa.OpMovRegImm), byte(isa.BL), 0x01, 0x00,
		byte(isa.OpDivReg), byte(isa.BL),
	)
	step(t, s)
	step(t, s)
	_, _, err := Step(s)
	if !errors.Is(err, ErrDivideOverflow) {
		t.Fatalf("err = %v, want ErrDivideOverflow", err)
	}
}

func TestLoopWrapsCXWhenZero(t *testing.T) {
	// MOV CX, 0 ; LOOP <itself>: CX underflows to 0xFFFF, which is nonzero,
	// so the branch is taken.
	s := place(
		byte(isa.OpMovRegImm), byte(isa.CX), 0x00, 0x00,
		byte(isa.OpLoopRel8), 0xFE, // disp -2
	)
	step(t, s)
	step(t, s)
	if s.Registers.CX != 0xFFFF {
		t.Errorf("CX = %04X after LOOP from 0, want FFFF (wraps, not clamps)", s.Registers.CX)
	}
	if s.Registers.IP != 0x104 {
		t.Errorf("IP = %04X, want 0104 (branch taken back to the LOOP instruction)", s.Registers.IP)
	}
}

func TestUnknownOpcodeFaultsByDefault(t *testing.T) {
	s := place(0xFF)
	_, _, err := Step(s)
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("err = %v, want ErrUnknownOpcode", err)
	}
	if s.Error == "" {
		t.Error("State.Error should be populated on an unknown-opcode fault")
	}
}

func TestCompatModeTreatsUnknownOpcodeAsNop(t *testing.T) {
	s := place(0xFF, byte(isa.OpHlt))
	s.CompatMode = true
	_, halted, err := Step(s)
	if err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if halted {
		t.Error("the unknown opcode itself should not halt")
	}
	if s.Registers.IP != 0x101 {
		t.Errorf("IP = %04X after the NOP'd unknown opcode, want 0101", s.Registers.IP)
	}
	_, halted, err = Step(s)
	if err != nil || !halted {
		t.Fatalf("expected the following HLT to halt cleanly, got halted=%v err=%v", halted, err)
	}
}
