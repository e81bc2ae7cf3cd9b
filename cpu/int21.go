package cpu

// int21 dispatches INT 0x21 by the value of AH, per spec.md section 4.2.
// It is the only source of the hosted output side-channel: AH=0x02 emits a
// single character, AH=0x09 emits a $-terminated string. Every other AH
// value is a documented no-op rather than a fault.
func int21(s *State) (output string, err error) {
	ah := byte(s.Registers.AX >> 8)
	switch ah {
	case 0x02:
		dl := byte(s.Registers.DX)
		return string(rune(dl)), nil
	case 0x09:
		addr := s.Registers.DX
		var out []byte
		for {
			b := s.Memory[addr]
			if b == 0x24 { // '$'
				break
			}
			out = append(out, b)
			if addr == 0xFFFF {
				// Reading past the top of memory looking for the
				// terminator is a fault, not a wraparound.
				return "", ErrMemoryOutOfBounds
			}
			addr++
		}
		return string(out), nil
	default:
		return "", nil
	}
}
