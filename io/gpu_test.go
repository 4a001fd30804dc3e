package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testGpu returns a unit fetching sprite data from a 64KiB test image.
func testGpu(data map[uint16]uint8) *Gpu {
	gpu := &Gpu{
		Fetch: func(address uint16) uint8 {
			return data[address]
		},
	}
	gpu.Reset()
	return gpu
}

func TestGpuReset(t *testing.T) {
	assert := assert.New(t)

	gpu := testGpu(nil)
	gpu.SetBackgroundColor(0x13)
	gpu.SetSpriteSize(2, 2)
	gpu.SetFlip(true, true)
	gpu.EndFrame()

	// SetBackgroundColor keeps only the palette nibble.
	assert.Equal(uint8(0x03), gpu.Background)

	gpu.Reset()
	assert.Equal(uint8(0), gpu.Background)
	assert.Equal(uint8(0), gpu.SpriteWidth)
	assert.Equal(uint8(0), gpu.SpriteHeight)
	assert.False(gpu.HFlip)
	assert.False(gpu.VFlip)
	assert.Equal(0, gpu.Frame)
	assert.False(gpu.VerticalBlank())
}

func TestGpuVerticalBlank(t *testing.T) {
	assert := assert.New(t)

	gpu := testGpu(nil)
	assert.False(gpu.VerticalBlank())

	gpu.EndFrame()
	assert.Equal(1, gpu.Frame)

	// The latch reads once per completed frame.
	assert.True(gpu.VerticalBlank())
	assert.False(gpu.VerticalBlank())

	gpu.EndFrame()
	gpu.EndFrame()
	assert.Equal(3, gpu.Frame)
	assert.True(gpu.VerticalBlank())
	assert.False(gpu.VerticalBlank())
}

func TestGpuDrawSprite(t *testing.T) {
	assert := assert.New(t)

	// 4x2 pixel sprite, two bytes per row, pixel 3 of row 0 and
	// pixel 0 of row 1 transparent.
	gpu := testGpu(map[uint16]uint8{
		0x100: 0x12, 0x101: 0x30,
		0x102: 0x04, 0x103: 0x56,
	})
	gpu.SetSpriteSize(2, 2)

	collision := gpu.DrawSprite(0x100, 10, 20)
	assert.False(collision)

	assert.Equal(uint8(1), gpu.Pixel(10, 20))
	assert.Equal(uint8(2), gpu.Pixel(11, 20))
	assert.Equal(uint8(3), gpu.Pixel(12, 20))
	assert.Equal(uint8(0), gpu.Pixel(13, 20))
	assert.Equal(uint8(0), gpu.Pixel(10, 21))
	assert.Equal(uint8(4), gpu.Pixel(11, 21))
	assert.Equal(uint8(5), gpu.Pixel(12, 21))
	assert.Equal(uint8(6), gpu.Pixel(13, 21))

	// Nonzero over nonzero collides; transparent pixels never do.
	collision = gpu.DrawSprite(0x100, 10, 20)
	assert.True(collision)

	collision = gpu.DrawSprite(0x100, 100, 100)
	assert.False(collision)

	gpu.ClearForeground()
	assert.Equal(uint8(0), gpu.Pixel(10, 20))
}

func TestGpuDrawFlip(t *testing.T) {
	assert := assert.New(t)

	gpu := testGpu(map[uint16]uint8{
		0x200: 0x12, 0x201: 0x34,
	})
	gpu.SetSpriteSize(2, 2)
	gpu.SetFlip(true, true)

	gpu.DrawSprite(0x200, 0, 0)

	// The first data row lands on the last screen row, mirrored. The
	// second data row is unfetched and stays transparent.
	assert.Equal(uint8(4), gpu.Pixel(0, 1))
	assert.Equal(uint8(3), gpu.Pixel(1, 1))
	assert.Equal(uint8(2), gpu.Pixel(2, 1))
	assert.Equal(uint8(1), gpu.Pixel(3, 1))
	assert.Equal(uint8(0), gpu.Pixel(0, 0))
}

func TestGpuDrawClipped(t *testing.T) {
	assert := assert.New(t)

	gpu := testGpu(map[uint16]uint8{
		0x300: 0x12,
	})
	gpu.SetSpriteSize(1, 1)

	collision := gpu.DrawSprite(0x300, -1, 0)
	assert.False(collision)
	assert.Equal(uint8(2), gpu.Pixel(0, 0))

	collision = gpu.DrawSprite(0x300, ScreenWidth-1, ScreenHeight-1)
	assert.False(collision)
	assert.Equal(uint8(1), gpu.Pixel(ScreenWidth-1, ScreenHeight-1))

	// Fully offscreen draws are a no-op.
	collision = gpu.DrawSprite(0x300, -100, -100)
	assert.False(collision)
}

func TestGpuNoFetch(t *testing.T) {
	assert := assert.New(t)

	gpu := &Gpu{}
	gpu.SetSpriteSize(2, 2)
	assert.False(gpu.DrawSprite(0x100, 0, 0))
}
