package cpu

import (
	"testing"

	"github.com/shaharkabesa/assembly-emulator/isa"
)

func TestRegisterAliasing(t *testing.T) {
	s := NewState()
	s.WriteReg(isa.AX, 0x1234)
	if got := s.ReadReg(isa.AH); got != 0x12 {
		t.Errorf("AH = %02X, want 12", got)
	}
	if got := s.ReadReg(isa.AL); got != 0x34 {
		t.Errorf("AL = %02X, want 34", got)
	}

	// Writing AL must preserve AH.
	s.WriteReg(isa.AL, 0xFF)
	if got := s.ReadReg(isa.AX); got != 0x12FF {
		t.Errorf("AX after writing AL = %04X, want 12FF", got)
	}

	// Writing AH must preserve AL.
	s.WriteReg(isa.AH, 0xAB)
	if got := s.ReadReg(isa.AX); got != 0xABFF {
		t.Errorf("AX after writing AH = %04X, want ABFF", got)
	}
}

func TestWriteRegTruncatesToWidth(t *testing.T) {
	s := NewState()
	s.WriteReg(isa.CL, 0x1FF)
	if got := s.ReadReg(isa.CL); got != 0xFF {
		t.Errorf("CL = %02X, want FF (truncated)", got)
	}
}

func TestNewStateInitialValues(t *testing.T) {
	s := NewState()
	if s.Registers.SP != 0xFFFE {
		t.Errorf("SP = %04X, want FFFE", s.Registers.SP)
	}
	if s.Registers.IP != 0x100 {
		t.Errorf("IP = %04X, want 0100", s.Registers.IP)
	}
	if s.Status != StatusIdle {
		t.Errorf("Status = %v, want idle", s.Status)
	}
}

func TestLoadResetsStatusAndError(t *testing.T) {
	s := NewState()
	s.Status = StatusError
	s.Error = "boom"
	var image [MemSize]byte
	image[0x200] = byte(isa.OpHlt)
	Load(s, image, 0x200)
	if s.Status != StatusIdle {
		t.Errorf("Status after Load = %v, want idle", s.Status)
	}
	if s.Error != "" {
		t.Errorf("Error after Load = %q, want empty", s.Error)
	}
	if s.Registers.IP != 0x200 {
		t.Errorf("IP after Load = %04X, want 0200", s.Registers.IP)
	}
}
