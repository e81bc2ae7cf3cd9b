package cpu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shaharkabesa/assembly-emulator/asm"
	"github.com/shaharkabesa/assembly-emulator/cpu"
	"github.com/shaharkabesa/assembly-emulator/isa"
)

// runToHalt assembles src, loads it, and steps until halt or fault.
func runToHalt(t *testing.T, src string) (*cpu.State, string, error) {
	t.Helper()
	res := asm.Compile(src)
	if len(res.Errors) != 0 {
		t.Fatalf("compile(%q): unexpected errors: %v", src, res.Errors)
	}
	s := cpu.NewState()
	cpu.Load(s, res.Image, res.Entry)

	var out strings.Builder
	for i := 0; i < 10000; i++ {
		output, halted, err := cpu.Step(s)
		out.WriteString(output)
		if err != nil {
			return s, out.String(), err
		}
		if halted {
			return s, out.String(), nil
		}
	}
	t.Fatal("program did not halt within 10000 steps")
	return nil, "", nil
}

func TestHelloWorldString(t *testing.T) {
	src := "ORG 100h\nMOV AH, 09h\nMOV DX, msg\nINT 21h\nHLT\nmsg: DB \"Hi$\"\n"
	_, out, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if out != "Hi" {
		t.Errorf("output = %q, want \"Hi\"", out)
	}
}

func TestInt21PrintChar(t *testing.T) {
	// AH=02h prints the character in DL, not AL: set them to different
	// values so a regression that reads the wrong half is caught.
	src := "MOV AH,02h\nMOV AL,58h\nMOV DL,41h\nINT 21h\nHLT\n"
	_, out, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if out != "A" {
		t.Errorf("output = %q, want \"A\" (from DL, not AL)", out)
	}
}

func TestCmpAndSignedJump(t *testing.T) {
	src := "MOV AX,10\nMOV BX,20\nCMP AX,BX\nJL less\nHLT\nless: MOV CX,1\nHLT\n"
	s, _, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if s.Registers.CX != 1 {
		t.Errorf("CX = %d, want 1", s.Registers.CX)
	}
	if s.Flags.ZF {
		t.Error("ZF should be clear")
	}
	if !s.Flags.SF {
		t.Error("SF should be set")
	}
	if !s.Flags.CF {
		t.Error("CF should be set (10 - 20 borrows)")
	}
}

func TestLoopCountdown(t *testing.T) {
	src := "MOV CX,3\nMOV AX,0\ntop: INC AX\nLOOP top\nHLT\n"
	s, _, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if s.Registers.AX != 3 {
		t.Errorf("AX = %d, want 3", s.Registers.AX)
	}
	if s.Registers.CX != 0 {
		t.Errorf("CX = %d, want 0", s.Registers.CX)
	}
}

func TestMul16Bit(t *testing.T) {
	src := "MOV AX,0x1000\nMOV BX,0x0010\nMUL BX\nHLT\n"
	s, _, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if s.Registers.AX != 0x0000 {
		t.Errorf("AX = %04X, want 0000", s.Registers.AX)
	}
	if s.Registers.DX != 0x0001 {
		t.Errorf("DX = %04X, want 0001", s.Registers.DX)
	}
}

func TestIndexedLoad(t *testing.T) {
	src := "MOV SI,2\nMOV AL, data[SI]\nHLT\ndata: DB 11h, 22h, 33h, 44h\n"
	s, _, err := runToHalt(t, src)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := s.ReadReg(isa.AL); got != 0x33 {
		t.Errorf("AL = %02X, want 33", got)
	}
	if s.Registers.AX&0xFF00 != 0 {
		t.Errorf("AH should be untouched by MOV AL, ...: AX = %04X", s.Registers.AX)
	}
}

func TestDivideByZeroFault(t *testing.T) {
	src := "MOV AX,10\nMOV BL,0\nDIV BL\nHLT\n"
	res := asm.Compile(src)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected compile errors: %v", res.Errors)
	}
	s := cpu.NewState()
	cpu.Load(s, res.Image, res.Entry)

	var err error
	for i := 0; i < 10; i++ {
		var halted bool
		_, halted, err = cpu.Step(s)
		if err != nil || halted {
			break
		}
	}
	if !errors.Is(err, cpu.ErrDivideByZero) {
		t.Fatalf("err = %v, want ErrDivideByZero", err)
	}
	if s.Error == "" {
		t.Error("State.Error should be populated on fault")
	}
	// IP must point past the DIV instruction: two 4-byte MOV-immediates
	// (0x100-0x107) followed by a 2-byte ShapeReg DIV at 0x108-0x109.
	if s.Registers.IP != 0x10A {
		t.Errorf("IP = %04X after fault, want 010A (past the DIV instruction)", s.Registers.IP)
	}
}

func TestRoundTripDeterminism(t *testing.T) {
	src := "MOV AX,1\nMOV BX,2\nADD AX,BX\nHLT\n"
	a := asm.Compile(src)
	b := asm.Compile(src)
	if a.Image != b.Image {
		t.Error("compile is not deterministic: images differ across calls")
	}
	if len(a.Sourcemap) != len(b.Sourcemap) {
		t.Error("compile is not deterministic: sourcemap sizes differ")
	}
}

func TestForwardAndBackwardLabelsAgree(t *testing.T) {
	forward := "JMP skip\nHLT\nskip: MOV AX,9\nHLT\n"
	s, _, err := runToHalt(t, forward)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if s.Registers.AX != 9 {
		t.Errorf("AX = %d, want 9 (forward reference)", s.Registers.AX)
	}

	backward := "MOV CX,2\ntop: MOV AX,9\nLOOP top\nHLT\n"
	s, _, err = runToHalt(t, backward)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if s.Registers.AX != 9 {
		t.Errorf("AX = %d, want 9 (backward reference)", s.Registers.AX)
	}
}
