package cpu

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip16/io"
)

// testCpu creates a CPU wired to fresh unit simulations, with the sprite
// fetch hook attached the way the emulator attaches it.
func testCpu() (c *Cpu, gpu *io.Gpu, spu *io.Spu) {
	gpu = &io.Gpu{}
	spu = &io.Spu{}
	c = NewCpu(gpu, spu)
	gpu.Fetch = c.PeekByte
	return
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	assert.Equal(uint16(RamRomStart), c.Pc)
	assert.Equal(uint16(StackStart), c.Sp)
	assert.Equal(uint8(0), c.Flag)
	assert.Equal(0, c.Cycles)

	c.Pc = 0x1234
	c.Sp = 0x8000
	c.Flag = FlagCarry
	c.Cycles = 99
	assert.NoError(c.WriteWord(0x2000, 0xbeef))
	c.R[3] = 0x00ab

	c.Reset()

	assert.Equal(uint16(RamRomStart), c.Pc)
	assert.Equal(uint16(StackStart), c.Sp)
	assert.Equal(uint8(0), c.Flag)
	assert.Equal(0, c.Cycles)
	assert.Equal(uint16(0), c.R[3])

	value, err := c.ReadWord(0x2000)
	assert.NoError(err)
	assert.Equal(int16(0), value)
	assert.Equal("", c.MemoryString())
}

func TestToSigned16(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int16(0), ToSigned16(0))
	assert.Equal(int16(1), ToSigned16(1))
	assert.Equal(int16(32767), ToSigned16(0x7fff))
	assert.Equal(int16(-32768), ToSigned16(0x8000))
	assert.Equal(int16(-1), ToSigned16(0xffff))

	// Round trip: every signed view re-encodes to the same word.
	for v := 0; v < 0x10000; v++ {
		s := ToSigned16(uint16(v))
		assert.Equal(uint16(v), uint16(s))
	}
}

func TestWordRoundTrip(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	table := [](struct {
		addr  uint16
		value uint16
	}){
		{0x0000, 0x0000},
		{0x0002, 0x00ab},
		{0x2000, 0x1234},
		{0xfdf0, 0x8000},
		{0xfffe, 0xffff},
	}

	for _, entry := range table {
		assert.NoError(c.WriteWord(entry.addr, entry.value))

		// Little-endian: low byte first.
		assert.Equal(uint8(entry.value&0xff), c.PeekByte(entry.addr))
		assert.Equal(uint8(entry.value>>8), c.PeekByte(entry.addr+1))

		value, err := c.ReadWord(entry.addr)
		assert.NoError(err)
		assert.Equal(ToSigned16(entry.value), value)
	}
}

func TestWordRange(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	err := c.WriteWord(0xffff, 0x1234)
	assert.Error(err)
	var em ErrMemoryRange
	assert.ErrorAs(err, &em)
	assert.True(em.Write)
	assert.Equal(0xffff, em.Addr)

	_, err = c.ReadWord(0xffff)
	assert.Error(err)
	assert.ErrorAs(err, &em)
	assert.False(em.Write)
	assert.Equal(0xffff, em.Addr)

	err = c.LoadMemory(0xfffe, []byte{1, 2, 3})
	assert.ErrorAs(err, &em)
	assert.True(em.Write)
	assert.Equal(0x10000, em.Addr)
}

func TestStepNop(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	out, err := c.Step()
	assert.NoError(err)
	assert.False(out.Jump)
	assert.Equal(uint16(InstructionSize), out.Advance)

	assert.Equal(uint16(4), c.Pc)
	assert.Equal(1, c.Cycles)
	assert.Equal(uint8(0), c.Flag)
	assert.Equal([16]uint16{}, c.R)
	assert.Equal("", c.MemoryString())
}

func TestStepJmp(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{OpJmp, 0x00, 0x34, 0x12}))

	out, err := c.Step()
	assert.NoError(err)
	assert.True(out.Jump)
	assert.Equal(uint16(0x1234), out.Target)
	assert.Equal(uint16(0x1234), c.Pc)
	assert.Equal(1, c.Cycles)
}

func TestDispatchFailure(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{0xff, 0x00, 0x00, 0x00}))

	_, err := c.Step()
	assert.Error(err)

	var eo ErrBadOpcode
	assert.ErrorAs(err, &eo)
	assert.Equal(uint16(0), eo.Addr)
	assert.Equal(uint8(0xff), eo.Op)

	// The failing step is atomic.
	assert.Equal(uint16(0), c.Pc)
	assert.Equal(0, c.Cycles)
}

func TestDecodePastTopOfMemory(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	c.Pc = 0xfffd

	_, err := c.Step()
	var em ErrMemoryRange
	assert.ErrorAs(err, &em)
	// The error names the address the fetch was attempted from.
	assert.Equal(0xfffd, em.Addr)
	assert.Equal(uint16(0xfffd), c.Pc)
	assert.Equal(0, c.Cycles)
}

func TestLoadStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{
		OpLdiReg, 0x00, 0xab, 0x00, // ldi r0, 0x00ab
		OpStmImm, 0x00, 0x00, 0x20, // stm r0, 0x2000
		OpLdmImm, 0x01, 0x00, 0x20, // ldm r1, 0x2000
	}))

	for range 3 {
		_, err := c.Step()
		assert.NoError(err)
	}

	assert.Equal(uint16(0x00ab), c.R[0])
	assert.Equal(uint16(0x00ab), c.R[1])
	assert.Equal(int16(0x00ab), c.Register(1))
	assert.Equal(uint16(12), c.Pc)
	assert.Equal(3, c.Cycles)
}

func TestLoadStoreByRegister(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{
		OpLdiReg, 0x00, 0xef, 0xbe, // ldi r0, 0xbeef
		OpLdiReg, 0x01, 0x00, 0x30, // ldi r1, 0x3000
		OpStmReg, 0x10, 0x00, 0x00, // stm r0, r1
		OpLdmReg, 0x12, 0x00, 0x00, // ldm r2, r1
		OpMov, 0x13, 0x00, 0x00, // mov r3, r1
	}))

	for range 5 {
		_, err := c.Step()
		assert.NoError(err)
	}

	assert.Equal(uint16(0xbeef), c.R[2])
	// MOV performs the same memory load as LDM by register.
	assert.Equal(uint16(0xbeef), c.R[3])

	value, err := c.ReadWord(0x3000)
	assert.NoError(err)
	assert.Equal(ToSigned16(0xbeef), value)
}

func TestLdiSp(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{OpLdiSp, 0x00, 0x00, 0xa0}))

	_, err := c.Step()
	assert.NoError(err)
	assert.Equal(uint16(0xa000), c.Sp)
	assert.Equal(int16(-0x6000), c.RegisterSP())
}

func TestVblnkBusyPoll(t *testing.T) {
	assert := assert.New(t)

	c, gpu, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{OpVblnk, 0x00, 0x00, 0x00}))

	// Not blanking: no forward progress, but the step still counts.
	for range 3 {
		out, err := c.Step()
		assert.NoError(err)
		assert.Equal(uint16(0), out.Advance)
		assert.Equal(uint16(0), c.Pc)
	}
	assert.Equal(3, c.Cycles)

	gpu.EndFrame()

	out, err := c.Step()
	assert.NoError(err)
	assert.Equal(uint16(InstructionSize), out.Advance)
	assert.Equal(uint16(4), c.Pc)
	assert.Equal(4, c.Cycles)
}

func TestRnd(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	c.Rand = rand.New(rand.NewSource(1))

	// rnd r0, 0x0000 can only produce zero.
	assert.NoError(c.LoadMemory(0, []byte{OpRnd, 0x00, 0x00, 0x00}))
	_, err := c.Step()
	assert.NoError(err)
	assert.Equal(uint16(0), c.R[0])

	// rnd r1, 0x0005 stays within [0, 5].
	for range 100 {
		c.Pc = 4
		assert.NoError(c.LoadMemory(4, []byte{OpRnd, 0x01, 0x05, 0x00}))
		_, err = c.Step()
		assert.NoError(err)
		assert.LessOrEqual(c.R[1], uint16(5))
	}
}

func TestDrawCollisionCarry(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	// One 2x1-pixel sprite at 0x3000.
	assert.NoError(c.LoadMemory(0x3000, []byte{0xff}))
	assert.NoError(c.LoadMemory(0, []byte{
		OpSpr, 0x00, 0x01, 0x01, // spr 0x0101 (1 byte wide, 1 row)
		OpDrwImm, 0x10, 0x00, 0x30, // drw r0, r1, 0x3000
		OpDrwImm, 0x10, 0x00, 0x30, // drw r0, r1, 0x3000
	}))

	for range 2 {
		_, err := c.Step()
		assert.NoError(err)
	}
	assert.False(c.Carry())

	_, err := c.Step()
	assert.NoError(err)
	assert.True(c.Carry())
}

func TestDrawByRegisterAddress(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()

	// The word at r[z] holds the sprite data address.
	assert.NoError(c.WriteWord(0x4000, 0x3000))
	assert.NoError(c.LoadMemory(0x3000, []byte{0xf0}))
	assert.NoError(c.LoadMemory(0, []byte{
		OpSpr, 0x00, 0x01, 0x01, // spr 0x0101
		OpLdiReg, 0x02, 0x00, 0x40, // ldi r2, 0x4000
		OpDrwReg, 0x10, 0x02, 0x00, // drw r0, r1, r2
		OpDrwReg, 0x10, 0x02, 0x00, // drw r0, r1, r2
	}))

	for range 3 {
		_, err := c.Step()
		assert.NoError(err)
	}
	assert.False(c.Carry())

	_, err := c.Step()
	assert.NoError(err)
	assert.True(c.Carry())
}

func TestSoundOpcodes(t *testing.T) {
	assert := assert.New(t)

	c, _, spu := testCpu()

	assert.NoError(c.WriteWord(0x5000, 440))
	assert.NoError(c.LoadMemory(0, []byte{
		OpSnd1, 0x00, 0x10, 0x00, // snd1 0x0010
		OpSnd2, 0x00, 0x20, 0x00, // snd2 0x0020
		OpSnd3, 0x00, 0x30, 0x00, // snd3 0x0030
		OpLdiReg, 0x04, 0x00, 0x50, // ldi r4, 0x5000
		OpSnp, 0x04, 0x40, 0x00, // snp r4, 0x0040
		OpSng, 0xa3, 0xcd, 0xab, // sng 0xa3, 0xabcd
		OpSnd0, 0x00, 0x00, 0x00, // snd0
	}))

	step := func() {
		_, err := c.Step()
		assert.NoError(err)
	}

	step()
	assert.True(spu.Playing)
	assert.Equal(uint16(500), spu.Frequency)
	assert.Equal(uint16(0x10), spu.Duration)

	step()
	assert.Equal(uint16(1000), spu.Frequency)

	step()
	assert.Equal(uint16(1500), spu.Frequency)

	step()
	step()
	assert.Equal(uint16(440), spu.Frequency)
	assert.Equal(uint16(0x40), spu.Duration)

	step()
	assert.Equal(uint8(0xa), spu.Envelope.Attack)
	assert.Equal(uint8(0x3), spu.Envelope.Decay)
	assert.Equal(uint8(0xa), spu.Envelope.Volume)
	assert.Equal(uint8(0xb), spu.Envelope.Type)
	assert.Equal(uint8(0xc), spu.Envelope.Sustain)
	assert.Equal(uint8(0xd), spu.Envelope.Release)

	step()
	assert.False(spu.Playing)
}

func TestVideoSetupOpcodes(t *testing.T) {
	assert := assert.New(t)

	c, gpu, _ := testCpu()

	assert.NoError(c.LoadMemory(0, []byte{
		OpBgc, 0x00, 0x07, 0x00, // bgc 7
		OpSpr, 0x00, 0x02, 0x04, // spr 0x0402
		OpFlip, 0x00, 0x00, 0x03, // flip 1, 1
		OpCls, 0x00, 0x00, 0x00, // cls
	}))

	for range 4 {
		_, err := c.Step()
		assert.NoError(err)
	}

	assert.Equal(uint8(7), gpu.Background)
	assert.Equal(uint8(2), gpu.SpriteWidth)
	assert.Equal(uint8(4), gpu.SpriteHeight)
	assert.True(gpu.HFlip)
	assert.True(gpu.VFlip)
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	c, _, _ := testCpu()
	assert.NoError(c.LoadMemory(0, []byte{OpLdiReg, 0x03, 0xab, 0x00}))
	_, err := c.Step()
	assert.NoError(err)

	text := c.String()
	assert.Contains(text, "pc: 0x0004")
	assert.Contains(text, "sp: 0xfdf0")
	assert.Contains(text, "r3: 0x00ab")
	assert.NotContains(text, "r4:")

	dump := c.MemoryString()
	assert.Contains(dump, "[0x0000]=0x20")
	assert.Contains(dump, "[0x0002]=0xab")
}

func TestVerboseTrace(t *testing.T) {
	assert := assert.New(t)

	// Tracing must not disturb execution.
	c, _, _ := testCpu()
	c.Verbose = true
	assert.NoError(c.LoadMemory(0, []byte{OpLdiReg, 0x00, 0x01, 0x00}))

	_, err := c.Step()
	assert.NoError(err)
	assert.Equal(uint16(1), c.R[0])
}

func TestErrBadOpcodeIs(t *testing.T) {
	assert := assert.New(t)

	err := ErrBadOpcode{Addr: 0x10, Op: 0xfe}
	assert.True(errors.Is(err, ErrBadOpcode{}))
	assert.True(strings.Contains(err.Error(), "0xfe"))
	assert.True(strings.Contains(err.Error(), "0x0010"))
}
