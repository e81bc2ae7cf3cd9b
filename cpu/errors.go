package cpu

import "errors"

// Fault sentinels, one per category in spec.md section 6. Following the
// teacher's style of package-level sentinel errors (errSegmentationFault,
// errDivisionByZero, ...), Step returns these directly, except that
// ErrUnknownOpcode is wrapped with fmt.Errorf("%w: 0x%02X", ...) to name the
// offending byte; callers should compare with errors.Is against these
// values rather than against formatted text.
var (
	ErrIPOutOfBounds     = errors.New("instruction pointer out of bounds")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
	ErrDivideByZero      = errors.New("divide by zero")
	ErrDivideOverflow    = errors.New("divide overflow")
	ErrUnknownOpcode     = errors.New("unknown opcode")
)
