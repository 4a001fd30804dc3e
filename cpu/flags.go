package cpu

// Status register bit positions. The layout is xCZxxxON.
const (
	FlagNegative uint8 = 0x01 // Negative
	FlagOverflow uint8 = 0x02 // Overflow
	FlagZero     uint8 = 0x20 // Zero
	FlagCarry    uint8 = 0x40 // Carry (draw collision)
)

// Carry returns the carry flag bit.
func (cpu *Cpu) Carry() bool {
	return cpu.Flag&FlagCarry != 0
}

// Zero returns the zero flag bit.
func (cpu *Cpu) Zero() bool {
	return cpu.Flag&FlagZero != 0
}

// Overflow returns the overflow flag bit.
func (cpu *Cpu) Overflow() bool {
	return cpu.Flag&FlagOverflow != 0
}

// Negative returns the negative flag bit.
func (cpu *Cpu) Negative() bool {
	return cpu.Flag&FlagNegative != 0
}
