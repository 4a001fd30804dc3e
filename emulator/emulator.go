// Package emulator wires the Chip16 CPU to its graphics and sound units
// and drives the per-frame timing loop around them.
package emulator

import (
	"github.com/ezrec/chip16/cpu"
	"github.com/ezrec/chip16/io"
)

// Frame timing. The CPU runs at 1 MHz with one cycle per instruction;
// the display completes 60 frames per second.
const (
	FramesPerSecond = 60
	CyclesPerFrame  = cpu.CyclesPerSecond / FramesPerSecond / cpu.CyclesPerInstruction
)

// Emulator state. CPU + GPU + SPU + ROM.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Currently loaded program listing, if assembled locally.

	Gpu io.Gpu // Graphics unit simulation.
	Spu io.Spu // Sound unit simulation.
	Rom io.Rom // ROM image loaded at reset.
}

// NewEmulator creates a new emulator with its units wired together.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{}
	emu.Cpu = cpu.NewCpu(&emu.Gpu, &emu.Spu)
	emu.Gpu.Fetch = emu.Cpu.PeekByte

	return
}

// Reset resets the CPU and units, loads the ROM payload at address zero,
// and starts the program counter at the ROM's start address.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Gpu.Reset()
	emu.Spu.Reset()

	if len(emu.Rom.Data) > 0 {
		err = emu.Cpu.LoadMemory(cpu.RamRomStart, emu.Rom.Data)
		if err != nil {
			return
		}
		emu.Cpu.Pc = emu.Rom.Start
	}

	return
}

// LineNo returns the source line of the instruction at the program
// counter, or 0 when no listing is attached.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Tick executes a single CPU step. Errors are annotated with the source
// line when a listing is attached.
func (emu *Emulator) Tick() (err error) {
	lineno := emu.LineNo()
	_, err = emu.Cpu.Step()
	if err != nil && lineno != 0 {
		err = &ErrRuntime{LineNo: lineno, Err: err}
	}

	return
}

// RunFrame steps the CPU for one frame's worth of cycles and then raises
// the vblank latch. A program blocked on VBLNK burns the rest of the
// frame in zero-advance steps and proceeds early in the next frame.
func (emu *Emulator) RunFrame() (err error) {
	for range CyclesPerFrame {
		err = emu.Tick()
		if err != nil {
			return
		}
	}
	emu.Gpu.EndFrame()

	return
}

// Run executes the given number of frames.
func (emu *Emulator) Run(frames int) (err error) {
	for range frames {
		err = emu.RunFrame()
		if err != nil {
			return
		}
	}

	return
}
