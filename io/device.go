// Package io models the units the Chip16 core talks to: the graphics
// unit (framebuffer, sprites, vblank), the sound unit (tone generation
// state), and the ROM image container. The simulations stop at observable
// state; nothing here renders pixels to a host surface or produces audio
// samples.
package io

// Graphics is the interface the CPU drives for every video opcode.
type Graphics interface {
	// ClearForeground clears the sprite layer.
	ClearForeground()
	// ClearBackground clears the background layer.
	ClearBackground()
	// VerticalBlank reports whether the frame is inside its blanking
	// interval. The CPU busy-polls this for VBLNK.
	VerticalBlank() bool
	// SetBackgroundColor selects the background palette index.
	SetBackgroundColor(index uint8)
	// SetSpriteSize sets the sprite dimensions: width in bytes (two
	// pixels per byte) and height in rows.
	SetSpriteSize(width, height uint8)
	// DrawSprite draws the sprite data at address to (x, y) and reports
	// whether any drawn pixel covered an already-set pixel.
	DrawSprite(address uint16, x, y int16) (collision bool)
	// SetFlip sets the mirroring applied to subsequent sprite draws.
	SetFlip(horizontal, vertical bool)
}

// Sound is the interface the CPU drives for every audio opcode.
type Sound interface {
	// Stop silences audio output.
	Stop()
	// PlayFixed plays one of the fixed tone classes for duration ticks.
	PlayFixed(class ToneClass, duration uint16)
	// PlaySample plays a frequency word read from machine memory.
	PlaySample(sample uint16, duration uint16)
	// Configure sets the tone envelope from the AD and VTSR fields.
	Configure(attackDecay uint8, volumeTypeSustainRelease uint16)
}
