package cpu

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/ezrec/chip16/io"
)

// Graphics is the display unit interface consumed by the CPU.
type Graphics io.Graphics

// Sound is the audio unit interface consumed by the CPU.
type Sound io.Sound

// Memory map constants.
const (
	MemorySize   = 0x10000 // Byte-addressable memory, 0x0000-0xFFFF.
	RamRomStart  = 0x0000  // Programs load and start here.
	StackStart   = 0xFDF0  // Initial stack pointer.
	IoPortsStart = 0xFFF0  // Memory-mapped IO ports.
)

// Timing constants. The core never reads these itself; the host loop
// uses them to decide how many steps to run per frame.
const (
	CyclesPerSecond      = 1000000 // 1 MHz
	CyclesPerInstruction = 1
)

// Cpu is the Chip16 instruction core: registers, memory, and the
// fetch-decode-dispatch-advance cycle. The graphics and sound units are
// handed in at construction and owned by the Cpu for its lifetime.
// A single caller drives Step; the Cpu performs no synchronization.
type Cpu struct {
	Verbose bool // Set to enable per-step instruction tracing.

	Gpu Graphics // Display unit.
	Spu Sound    // Audio unit.

	Pc     uint16     // Program counter.
	Sp     uint16     // Stack pointer.
	R      [16]uint16 // General-purpose registers r0-rf.
	Flag   uint8      // Status register, layout xCZxxxON.
	Cycles int        // Steps executed since reset.

	Rand *rand.Rand // Source for the RND opcode; replace to make tests deterministic.

	mem     [MemorySize]byte
	touched [MemorySize / 64]uint64 // Cells written since reset, diagnostics only.
	rmask   uint16                  // Registers written since reset, diagnostics only.
}

// NewCpu creates a CPU attached to the given graphics and sound units.
func NewCpu(gpu Graphics, spu Sound) (cpu *Cpu) {
	cpu = &Cpu{
		Gpu:  gpu,
		Spu:  spu,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	cpu.Reset()

	return
}

// Reset returns every machine register and memory cell to its power-on
// value. The attached units and the random source are kept.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = RamRomStart
	cpu.Sp = StackStart
	clear(cpu.R[:])
	cpu.Flag = 0
	cpu.Cycles = 0
	clear(cpu.mem[:])
	clear(cpu.touched[:])
	cpu.rmask = 0
}

// Outcome is the result of executing one instruction: either a sequential
// advance of the program counter, or a jump to an explicit target.
type Outcome struct {
	Advance uint16 // Bytes the program counter moves when Jump is unset.
	Jump    bool   // The handler chose the next program counter itself.
	Target  uint16 // Jump target, meaningful when Jump is set.
}

// Step executes the instruction at the program counter: decode, dispatch,
// execute, apply the outcome, and advance the cycle counter. A failing
// step is atomic: no register, flag, or memory cell changes, the program
// counter stays at the failing instruction, and the cycle counter does
// not advance.
func (cpu *Cpu) Step() (out Outcome, err error) {
	params, err := cpu.Decode(cpu.Pc)
	if err != nil {
		return
	}

	ins := instructionSet[params.Op]
	if ins == nil {
		err = ErrBadOpcode{Addr: cpu.Pc, Op: params.Op}
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, ins.Describe(params))
	}

	out, err = ins.Execute(cpu, params)
	if err != nil {
		return
	}

	if out.Jump {
		cpu.Pc = out.Target
	} else {
		cpu.Pc += out.Advance
	}
	cpu.Cycles += CyclesPerInstruction

	return
}

// ToSigned16 returns the 16-bit two's-complement interpretation of an
// unsigned machine word. Go's int16 conversion is exactly that
// reinterpretation; internal storage stays unsigned.
func ToSigned16(value uint16) int16 {
	return int16(value)
}

// RegisterPC returns the signed view of the program counter.
func (cpu *Cpu) RegisterPC() int16 {
	return ToSigned16(cpu.Pc)
}

// RegisterSP returns the signed view of the stack pointer.
func (cpu *Cpu) RegisterSP() int16 {
	return ToSigned16(cpu.Sp)
}

// Register returns the signed view of a general-purpose register.
func (cpu *Cpu) Register(index int) int16 {
	return ToSigned16(cpu.R[index&0x0f])
}

// WriteWord stores a 16-bit value: low byte at address, high byte at
// address+1. Writing the word at the very top of memory fails; addresses
// do not wrap.
func (cpu *Cpu) WriteWord(address uint16, value uint16) (err error) {
	if int(address)+1 >= MemorySize {
		err = ErrMemoryRange{Addr: int(address), Write: true}
		return
	}

	cpu.setByte(address, uint8(value&0xff))
	cpu.setByte(address+1, uint8(value>>8))

	return
}

// ReadWord returns the signed view of the little-endian word at address.
// Reading the word at the very top of memory fails; addresses do not wrap.
func (cpu *Cpu) ReadWord(address uint16) (value int16, err error) {
	word, err := cpu.word(address)
	if err != nil {
		return
	}
	value = ToSigned16(word)

	return
}

// word is the unsigned word read used by instruction handlers.
func (cpu *Cpu) word(address uint16) (value uint16, err error) {
	if int(address)+1 >= MemorySize {
		err = ErrMemoryRange{Addr: int(address), Write: false}
		return
	}

	value = (uint16(cpu.mem[address+1]) << 8) | uint16(cpu.mem[address])

	return
}

// PeekByte returns the raw byte at address. Used by the graphics unit to
// fetch sprite data, and by diagnostics; never fails and never marks the
// cell as touched.
func (cpu *Cpu) PeekByte(address uint16) uint8 {
	return cpu.mem[address]
}

// LoadMemory copies a program or data image into memory starting at
// address. Fails when the image would run past the top of memory.
func (cpu *Cpu) LoadMemory(address uint16, data []byte) (err error) {
	if int(address)+len(data) > MemorySize {
		err = ErrMemoryRange{Addr: int(address) + len(data) - 1, Write: true}
		return
	}

	for n, b := range data {
		cpu.setByte(address+uint16(n), b)
	}

	return
}

func (cpu *Cpu) setByte(address uint16, value uint8) {
	cpu.mem[address] = value
	cpu.touched[address/64] |= 1 << (address % 64)
}

func (cpu *Cpu) setRegister(index uint8, value uint16) {
	cpu.R[index&0x0f] = value
	cpu.rmask |= 1 << (index & 0x0f)
}

// String returns the current CPU state as a string. Only registers
// written since reset are listed.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("   pc: 0x%04x\n", cpu.Pc)
	text += fmt.Sprintf("   sp: 0x%04x\n", cpu.Sp)
	text += fmt.Sprintf(" flag: %08b\n", cpu.Flag)
	for n := range cpu.R {
		if cpu.rmask&(1<<n) == 0 {
			continue
		}
		text += fmt.Sprintf("   r%x: 0x%04x\n", n, cpu.R[n])
	}
	text += fmt.Sprintf("cycle: %v\n", cpu.Cycles)

	return
}

// MemoryString returns a dump of every memory cell written since reset.
// Cells never written read as zero for arithmetic but are omitted here.
func (cpu *Cpu) MemoryString() string {
	var sb strings.Builder
	for addr := 0; addr < MemorySize; addr++ {
		if cpu.touched[addr/64]&(1<<(addr%64)) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "[0x%04x]=0x%02x\n", addr, cpu.mem[addr])
	}

	return sb.String()
}
