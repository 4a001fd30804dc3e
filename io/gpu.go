package io

// Screen dimensions in pixels. Pixels are 4-bit palette indexes, index 0
// is transparent for sprites.
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

var _ Graphics = (*Gpu)(nil)

// Gpu simulates the graphics unit: a foreground sprite layer, a
// background layer, sprite draw state, and the per-frame vblank latch.
// Sprite data is fetched through the Fetch hook, so the Gpu never owns
// machine memory.
type Gpu struct {
	Fetch func(address uint16) uint8 // Sprite data source, wired by the host.

	Background   uint8 // Background palette index.
	SpriteWidth  uint8 // Sprite width in bytes, two pixels per byte.
	SpriteHeight uint8 // Sprite height in rows.
	HFlip        bool  // Mirror sprite draws horizontally.
	VFlip        bool  // Mirror sprite draws vertically.

	Frame int // Frames completed since reset.

	fg     [ScreenHeight][ScreenWidth]uint8
	bg     [ScreenHeight][ScreenWidth]uint8
	vblank bool
}

// Reset returns the unit to its power-on state.
func (gpu *Gpu) Reset() {
	gpu.Background = 0
	gpu.SpriteWidth = 0
	gpu.SpriteHeight = 0
	gpu.HFlip = false
	gpu.VFlip = false
	gpu.Frame = 0
	gpu.vblank = false
	gpu.ClearForeground()
	gpu.ClearBackground()
}

// ClearForeground clears the sprite layer.
func (gpu *Gpu) ClearForeground() {
	for y := range gpu.fg {
		clear(gpu.fg[y][:])
	}
}

// ClearBackground clears the background layer.
func (gpu *Gpu) ClearBackground() {
	for y := range gpu.bg {
		clear(gpu.bg[y][:])
	}
}

// SetBackgroundColor selects the background palette index.
func (gpu *Gpu) SetBackgroundColor(index uint8) {
	gpu.Background = index & 0x0f
}

// SetSpriteSize sets the dimensions used by subsequent draws.
func (gpu *Gpu) SetSpriteSize(width, height uint8) {
	gpu.SpriteWidth = width
	gpu.SpriteHeight = height
}

// SetFlip sets the mirroring applied to subsequent draws.
func (gpu *Gpu) SetFlip(horizontal, vertical bool) {
	gpu.HFlip = horizontal
	gpu.VFlip = vertical
}

// VerticalBlank reports and consumes the vblank latch, so a blocked
// VBLNK releases exactly once per completed frame.
func (gpu *Gpu) VerticalBlank() (blanking bool) {
	blanking = gpu.vblank
	gpu.vblank = false
	return
}

// EndFrame marks the end of the visible frame and raises the vblank
// latch. The host loop calls this once per frame.
func (gpu *Gpu) EndFrame() {
	gpu.vblank = true
	gpu.Frame++
}

// DrawSprite draws SpriteWidth*SpriteHeight bytes of 4-bit pixel data
// from address to (x, y) on the sprite layer. Zero pixels are
// transparent; drawing a nonzero pixel over a nonzero pixel reports a
// collision. Pixels outside the screen are clipped. Sprite data
// addresses wrap around the top of memory, as the unit only ever sees
// 16-bit addresses.
func (gpu *Gpu) DrawSprite(address uint16, x, y int16) (collision bool) {
	if gpu.Fetch == nil {
		return
	}

	width := int(gpu.SpriteWidth)
	height := int(gpu.SpriteHeight)

	for row := 0; row < height; row++ {
		for b := 0; b < width; b++ {
			data := gpu.Fetch(address + uint16(row*width+b))
			gpu.plot(x, y, row, b*2, data>>4, &collision)
			gpu.plot(x, y, row, b*2+1, data&0x0f, &collision)
		}
	}

	return
}

// plot writes a single sprite pixel, applying mirroring and clipping.
func (gpu *Gpu) plot(x, y int16, row, col int, color uint8, collision *bool) {
	if color == 0 {
		return
	}

	if gpu.HFlip {
		col = int(gpu.SpriteWidth)*2 - 1 - col
	}
	if gpu.VFlip {
		row = int(gpu.SpriteHeight) - 1 - row
	}

	px := int(x) + col
	py := int(y) + row
	if px < 0 || px >= ScreenWidth || py < 0 || py >= ScreenHeight {
		return
	}

	if gpu.fg[py][px] != 0 {
		*collision = true
	}
	gpu.fg[py][px] = color
}

// Pixel returns the sprite-layer pixel at (x, y), for inspection.
func (gpu *Gpu) Pixel(x, y int) uint8 {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return 0
	}
	return gpu.fg[y][x]
}
