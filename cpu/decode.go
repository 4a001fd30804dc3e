package cpu

// InstructionSize is the fixed width of an instruction slot in bytes.
// Opcodes that need fewer operand bytes simply ignore the extra fields.
const InstructionSize = 4

// Params are the operand fields decoded from a 4-byte instruction slot.
// The decoder is total: every field is extracted on every fetch, and a
// handler reads only the fields its opcode defines.
type Params struct {
	Op uint8 // Opcode byte (byte 0).

	X uint8 // Register index, low nibble of byte 1.
	Y uint8 // Register index, high nibble of byte 1.
	N uint8 // Small immediate, low nibble of byte 2.
	Z uint8 // Register index, same nibble as N.

	LL   uint8  // Byte 2.
	HH   uint8  // Byte 3.
	HHLL uint16 // Little-endian 16-bit immediate from LL/HH.
	VTSR uint16 // Sound envelope word, same bits as HHLL.
	AD   uint8  // Address-mode byte, raw byte 1.

	HFlip uint8 // Horizontal flip bits, byte 3 >> 1.
	VFlip uint8 // Vertical flip bit, byte 3 & 1.
}

// Decode extracts the operand fields from the 4-byte slot at address.
// It fails only when the slot extends past the top of memory.
func (cpu *Cpu) Decode(address uint16) (params Params, err error) {
	if int(address)+InstructionSize > MemorySize {
		err = ErrMemoryRange{Addr: int(address), Write: false}
		return
	}

	op := cpu.mem[address]
	reg := cpu.mem[address+1]
	ll := cpu.mem[address+2]
	hh := cpu.mem[address+3]

	params = Params{
		Op:    op,
		X:     reg & 0x0f,
		Y:     reg >> 4,
		N:     ll & 0x0f,
		Z:     ll & 0x0f,
		LL:    ll,
		HH:    hh,
		HHLL:  (uint16(hh) << 8) | uint16(ll),
		VTSR:  (uint16(hh) << 8) | uint16(ll),
		AD:    reg,
		HFlip: hh >> 1,
		VFlip: hh & 1,
	}

	return
}
