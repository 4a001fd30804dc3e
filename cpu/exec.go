package cpu

import (
	"github.com/ezrec/chip16/io"
)

// sequential is the default outcome: fall through to the next slot.
var sequential = Outcome{Advance: InstructionSize}

func execNop(cpu *Cpu, params Params) (Outcome, error) {
	return sequential, nil
}

func execCls(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Gpu.ClearForeground()
	cpu.Gpu.ClearBackground()
	return sequential, nil
}

// execVblnk busy-polls the blanking interval: until the graphics unit
// reports vblank, the step makes no forward progress and the same
// instruction executes again on the next step.
func execVblnk(cpu *Cpu, params Params) (Outcome, error) {
	if cpu.Gpu.VerticalBlank() {
		return sequential, nil
	}
	return Outcome{Advance: 0}, nil
}

func execBgc(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Gpu.SetBackgroundColor(params.N)
	return sequential, nil
}

func execSpr(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Gpu.SetSpriteSize(params.LL, params.HH)
	return sequential, nil
}

func execDrwImm(cpu *Cpu, params Params) (Outcome, error) {
	cpu.drawSprite(params.HHLL, params.X, params.Y)
	return sequential, nil
}

// execDrwReg draws from the sprite-data address stored as a word at r[z].
func execDrwReg(cpu *Cpu, params Params) (Outcome, error) {
	address, err := cpu.word(cpu.R[params.Z])
	if err != nil {
		return Outcome{}, err
	}
	cpu.drawSprite(address, params.X, params.Y)
	return sequential, nil
}

// drawSprite issues the draw and folds the collision result into the
// carry bit. A collision sets the bit; the bit is never cleared here.
func (cpu *Cpu) drawSprite(address uint16, x, y uint8) {
	collided := cpu.Gpu.DrawSprite(address, ToSigned16(cpu.R[x]), ToSigned16(cpu.R[y]))
	if collided {
		cpu.Flag |= FlagCarry
	}
}

func execRnd(cpu *Cpu, params Params) (Outcome, error) {
	cpu.setRegister(params.X, uint16(cpu.Rand.Intn(int(params.HHLL)+1)))
	return sequential, nil
}

func execFlip(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Gpu.SetFlip(params.HFlip == 1, params.VFlip == 1)
	return sequential, nil
}

func execSnd0(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Spu.Stop()
	return sequential, nil
}

func execSnd1(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Spu.PlayFixed(io.Tone500Hz, params.HHLL)
	return sequential, nil
}

func execSnd2(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Spu.PlayFixed(io.Tone1000Hz, params.HHLL)
	return sequential, nil
}

func execSnd3(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Spu.PlayFixed(io.Tone1500Hz, params.HHLL)
	return sequential, nil
}

// execSnp plays the frequency word stored at the address in r[x].
func execSnp(cpu *Cpu, params Params) (Outcome, error) {
	sample, err := cpu.word(cpu.R[params.X])
	if err != nil {
		return Outcome{}, err
	}
	cpu.Spu.PlaySample(sample, params.HHLL)
	return sequential, nil
}

func execSng(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Spu.Configure(params.AD, params.VTSR)
	return sequential, nil
}

// execJmp sets the program counter directly; the default advance is
// suppressed for this step.
func execJmp(cpu *Cpu, params Params) (Outcome, error) {
	return Outcome{Jump: true, Target: params.HHLL}, nil
}

func execLdiReg(cpu *Cpu, params Params) (Outcome, error) {
	cpu.setRegister(params.X, params.HHLL)
	return sequential, nil
}

func execLdiSp(cpu *Cpu, params Params) (Outcome, error) {
	cpu.Sp = params.HHLL
	return sequential, nil
}

func execLdmImm(cpu *Cpu, params Params) (Outcome, error) {
	value, err := cpu.word(params.HHLL)
	if err != nil {
		return Outcome{}, err
	}
	cpu.setRegister(params.X, value)
	return sequential, nil
}

// execLdmReg loads the word at the address in r[y]. Opcode 0x24 shares
// this handler: the hardware performs the same memory load for both.
func execLdmReg(cpu *Cpu, params Params) (Outcome, error) {
	value, err := cpu.word(cpu.R[params.Y])
	if err != nil {
		return Outcome{}, err
	}
	cpu.setRegister(params.X, value)
	return sequential, nil
}

func execStmImm(cpu *Cpu, params Params) (Outcome, error) {
	err := cpu.WriteWord(params.HHLL, cpu.R[params.X])
	if err != nil {
		return Outcome{}, err
	}
	return sequential, nil
}

func execStmReg(cpu *Cpu, params Params) (Outcome, error) {
	err := cpu.WriteWord(cpu.R[params.Y], cpu.R[params.X])
	if err != nil {
		return Outcome{}, err
	}
	return sequential, nil
}
