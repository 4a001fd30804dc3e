package io

// ToneClass selects one of the fixed tone generators.
type ToneClass int

const (
	Tone500Hz  ToneClass = iota // 500 Hz
	Tone1000Hz                  // 1000 Hz
	Tone1500Hz                  // 1500 Hz
)

// Frequency returns the tone class frequency in Hz.
func (tc ToneClass) Frequency() uint16 {
	switch tc {
	case Tone500Hz:
		return 500
	case Tone1000Hz:
		return 1000
	case Tone1500Hz:
		return 1500
	}
	return 0
}

// Envelope is the tone shape decoded from the AD and VTSR fields.
type Envelope struct {
	Attack  uint8
	Decay   uint8
	Sustain uint8
	Release uint8
	Volume  uint8
	Type    uint8 // Waveform selector.
}

var _ Sound = (*Spu)(nil)

// Spu simulates the sound unit. It records the requested tone and
// envelope; it does not synthesize samples.
type Spu struct {
	Playing   bool
	Frequency uint16 // Hz of the current tone.
	Duration  uint16 // Remaining duration in ticks.
	Envelope  Envelope
}

// Reset returns the unit to its power-on state.
func (spu *Spu) Reset() {
	*spu = Spu{}
}

// Stop silences audio output.
func (spu *Spu) Stop() {
	spu.Playing = false
	spu.Frequency = 0
	spu.Duration = 0
}

// PlayFixed plays one of the fixed tone classes for duration ticks.
func (spu *Spu) PlayFixed(class ToneClass, duration uint16) {
	spu.Playing = true
	spu.Frequency = class.Frequency()
	spu.Duration = duration
}

// PlaySample plays a frequency word read from machine memory.
func (spu *Spu) PlaySample(sample uint16, duration uint16) {
	spu.Playing = true
	spu.Frequency = sample
	spu.Duration = duration
}

// Configure sets the tone envelope. The AD byte packs attack and decay;
// the VTSR word packs volume, waveform type, sustain, and release, one
// nibble each from high to low.
func (spu *Spu) Configure(attackDecay uint8, volumeTypeSustainRelease uint16) {
	spu.Envelope = Envelope{
		Attack:  attackDecay >> 4,
		Decay:   attackDecay & 0x0f,
		Volume:  uint8(volumeTypeSustainRelease>>12) & 0x0f,
		Type:    uint8(volumeTypeSustainRelease>>8) & 0x0f,
		Sustain: uint8(volumeTypeSustainRelease>>4) & 0x0f,
		Release: uint8(volumeTypeSustainRelease) & 0x0f,
	}
}
