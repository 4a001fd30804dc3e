package cpu

import (
	"fmt"
	"strings"
)

// Opcode bytes of the implemented instruction set. The high nibble groups
// operations: 0x = misc/video/audio, 1x = jumps, 2x = loads, 3x = stores.
const (
	OpNop    = 0x00 // No operation.
	OpCls    = 0x01 // Clear both framebuffers.
	OpVblnk  = 0x02 // Wait for the vertical blanking interval.
	OpBgc    = 0x03 // Set background color index.
	OpSpr    = 0x04 // Set sprite dimensions.
	OpDrwImm = 0x05 // Draw sprite from an immediate address.
	OpDrwReg = 0x06 // Draw sprite from an address word at r[z].
	OpRnd    = 0x07 // Random value in [0, hhll].
	OpFlip   = 0x08 // Set screen mirroring.
	OpSnd0   = 0x09 // Stop audio.
	OpSnd1   = 0x0a // 500 Hz tone.
	OpSnd2   = 0x0b // 1000 Hz tone.
	OpSnd3   = 0x0c // 1500 Hz tone.
	OpSnp    = 0x0d // Tone from a frequency word in memory.
	OpSng    = 0x0e // Configure tone envelope.
	OpJmp    = 0x10 // Unconditional absolute jump.
	OpLdiReg = 0x20 // r[x] = hhll.
	OpLdiSp  = 0x21 // sp = hhll.
	OpLdmImm = 0x22 // r[x] = word at hhll.
	OpLdmReg = 0x23 // r[x] = word at r[y].
	OpMov    = 0x24 // Same load as OpLdmReg (kept as the hardware behaves).
	OpStmImm = 0x30 // word at hhll = r[x].
	OpStmReg = 0x31 // word at r[y] = r[x].
)

// ExecFunc mutates machine state for one decoded instruction and reports
// how the program counter moves. Fatal errors must be returned before any
// state is mutated, keeping the failing step atomic.
type ExecFunc func(cpu *Cpu, params Params) (Outcome, error)

// Instruction binds a human-readable mnemonic template to its handler.
// The template exists for tracing only and carries no execution semantics.
type Instruction struct {
	Mnemonic string
	Execute  ExecFunc
}

// instructionSet maps each opcode byte to its instruction. A nil entry is
// an unimplemented opcode; dispatching one is a fatal decode error, never
// a silent no-op. Handlers take the CPU explicitly, so the table is built
// once and shared by every engine instance.
var instructionSet = [256]*Instruction{
	OpNop:    {"NOP", execNop},
	OpCls:    {"CLS", execCls},
	OpVblnk:  {"VBLNK", execVblnk},
	OpBgc:    {"BGC N", execBgc},
	OpSpr:    {"SPR HHLL", execSpr},
	OpDrwImm: {"DRW RX, RY, HHLL", execDrwImm},
	OpDrwReg: {"DRW RX, RY, RZ", execDrwReg},
	OpRnd:    {"RND RX, HHLL", execRnd},
	OpFlip:   {"FLIP 0, 0", execFlip},
	OpSnd0:   {"SND0", execSnd0},
	OpSnd1:   {"SND1 HHLL", execSnd1},
	OpSnd2:   {"SND2 HHLL", execSnd2},
	OpSnd3:   {"SND3 HHLL", execSnd3},
	OpSnp:    {"SNP RX, HHLL", execSnp},
	OpSng:    {"SNG AD, VTSR", execSng},
	OpJmp:    {"JMP HHLL", execJmp},
	OpLdiReg: {"LDI RX, HHLL", execLdiReg},
	OpLdiSp:  {"LDI SP, HHLL", execLdiSp},
	OpLdmImm: {"LDM RX, HHLL", execLdmImm},
	OpLdmReg: {"LDM RX, RY", execLdmReg},
	OpMov:    {"MOV RX, RY", execLdmReg},
	OpStmImm: {"STM RX, HHLL", execStmImm},
	OpStmReg: {"STM RX, RY", execStmReg},
}

// Lookup returns the instruction for an opcode byte, or nil when the
// opcode is not implemented.
func Lookup(op uint8) *Instruction {
	return instructionSet[op]
}

// Describe substitutes the decoded operand fields into the mnemonic
// template, producing the trace form of the instruction.
func (ins *Instruction) Describe(params Params) string {
	m := ins.Mnemonic
	m = strings.ReplaceAll(m, " 0, 0", fmt.Sprintf(" %d, %d", params.HFlip, params.VFlip))
	m = strings.ReplaceAll(m, "RX", fmt.Sprintf("r%x", params.X))
	m = strings.ReplaceAll(m, "RY", fmt.Sprintf("r%x", params.Y))
	m = strings.ReplaceAll(m, "RZ", fmt.Sprintf("r%x", params.Z))
	m = strings.ReplaceAll(m, "HHLL", fmt.Sprintf("%#x", params.HHLL))
	m = strings.ReplaceAll(m, "VTSR", fmt.Sprintf("%#x", params.VTSR))
	m = strings.ReplaceAll(m, "AD", fmt.Sprintf("%#x", params.AD))
	m = strings.ReplaceAll(m, " N", fmt.Sprintf(" %#x", params.N))

	return strings.ToLower(m)
}
