package io

import (
	"errors"

	"github.com/ezrec/chip16/translate"
)

var f = translate.From

var (
	// ROM image errors
	ErrRomTruncated = errors.New(f("rom image truncated"))
	ErrRomChecksum  = errors.New(f("rom checksum mismatch"))
	ErrRomTooLarge  = errors.New(f("rom payload too large"))
)
