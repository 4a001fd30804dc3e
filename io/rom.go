package io

import (
	"encoding/binary"
	"hash/crc32"
)

// CH16 image header layout.
const (
	RomMagic      = "CH16"
	RomHeaderSize = 16

	romOffMagic   = 0
	romOffVersion = 5
	romOffSize    = 6
	romOffStart   = 10
	romOffCrc     = 12
)

// MaxRomSize is the largest payload that fits the address space.
const MaxRomSize = 0x10000

// Rom is a program image: the payload bytes to load at address zero plus
// the start address the program counter boots from.
type Rom struct {
	Version uint8  // Header spec version.
	Start   uint16 // Initial program counter.
	Data    []byte // Payload, loaded at address 0x0000.
}

// Decode parses a ROM image. Images carrying the CH16 header have their
// declared size and CRC-32 verified; anything else is taken as a raw
// payload starting at address zero.
func (rom *Rom) Decode(image []byte) (err error) {
	if len(image) < RomHeaderSize || string(image[romOffMagic:romOffMagic+4]) != RomMagic {
		if len(image) > MaxRomSize {
			err = ErrRomTooLarge
			return
		}
		rom.Version = 0
		rom.Start = 0
		rom.Data = image
		return
	}

	size := binary.LittleEndian.Uint32(image[romOffSize:])
	payload := image[RomHeaderSize:]
	if uint32(len(payload)) < size {
		err = ErrRomTruncated
		return
	}
	payload = payload[:size]

	if size > MaxRomSize {
		err = ErrRomTooLarge
		return
	}

	sum := binary.LittleEndian.Uint32(image[romOffCrc:])
	if crc32.ChecksumIEEE(payload) != sum {
		err = ErrRomChecksum
		return
	}

	rom.Version = image[romOffVersion]
	rom.Start = binary.LittleEndian.Uint16(image[romOffStart:])
	rom.Data = payload

	return
}

// Encode produces a CH16 image of the payload.
func (rom *Rom) Encode() (image []byte, err error) {
	if len(rom.Data) > MaxRomSize {
		err = ErrRomTooLarge
		return
	}

	image = make([]byte, RomHeaderSize+len(rom.Data))
	copy(image[romOffMagic:], RomMagic)
	image[romOffVersion] = rom.Version
	binary.LittleEndian.PutUint32(image[romOffSize:], uint32(len(rom.Data)))
	binary.LittleEndian.PutUint16(image[romOffStart:], rom.Start)
	binary.LittleEndian.PutUint32(image[romOffCrc:], crc32.ChecksumIEEE(rom.Data))
	copy(image[RomHeaderSize:], rom.Data)

	return
}
