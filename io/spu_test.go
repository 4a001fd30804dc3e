package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToneClass(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(500), Tone500Hz.Frequency())
	assert.Equal(uint16(1000), Tone1000Hz.Frequency())
	assert.Equal(uint16(1500), Tone1500Hz.Frequency())
	assert.Equal(uint16(0), ToneClass(99).Frequency())
}

func TestSpuPlay(t *testing.T) {
	assert := assert.New(t)

	spu := &Spu{}
	spu.Reset()
	assert.False(spu.Playing)

	spu.PlayFixed(Tone1000Hz, 60)
	assert.True(spu.Playing)
	assert.Equal(uint16(1000), spu.Frequency)
	assert.Equal(uint16(60), spu.Duration)

	spu.PlaySample(440, 120)
	assert.True(spu.Playing)
	assert.Equal(uint16(440), spu.Frequency)
	assert.Equal(uint16(120), spu.Duration)

	spu.Stop()
	assert.False(spu.Playing)
	assert.Equal(uint16(0), spu.Frequency)
	assert.Equal(uint16(0), spu.Duration)
}

func TestSpuConfigure(t *testing.T) {
	assert := assert.New(t)

	spu := &Spu{}
	spu.Configure(0xa3, 0xf1c8)

	assert.Equal(Envelope{
		Attack:  0xa,
		Decay:   0x3,
		Volume:  0xf,
		Type:    0x1,
		Sustain: 0xc,
		Release: 0x8,
	}, spu.Envelope)

	// Reset drops the envelope along with the playing tone.
	spu.PlayFixed(Tone500Hz, 1)
	spu.Reset()
	assert.Equal(Envelope{}, spu.Envelope)
	assert.False(spu.Playing)
}
