package cpu

// cursor walks the instruction stream starting at IP. It tracks position as
// a 32-bit value so that an instruction whose last operand byte would sit
// at address 65536 is caught as ErrIPOutOfBounds instead of silently
// wrapping back to address 0, the way a plain uint16 counter would.
type cursor struct {
	state *State
	pos   uint32
}

func newCursor(state *State, ip uint16) *cursor {
	return &cursor{state: state, pos: uint32(ip)}
}

func (c *cursor) fetchByte() (byte, error) {
	if c.pos >= MemSize {
		return 0, ErrIPOutOfBounds
	}
	b := c.state.Memory[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) fetchWord() (uint16, error) {
	lo, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// commit validates that the cursor stopped at a representable address
// (strictly less than MemSize, per the IP invariant in spec.md section 3)
// and, if so, writes it back to state.Registers.IP.
func (c *cursor) commit() error {
	if c.pos >= MemSize {
		return ErrIPOutOfBounds
	}
	c.state.Registers.IP = uint16(c.pos)
	return nil
}
