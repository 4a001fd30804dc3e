// Package cpu implements the Chip16 instruction core and assembler.
//
// The machine is a 16-bit little-endian CPU with sixteen general-purpose
// registers (r0-rf), a program counter, a stack pointer, an 8-bit status
// register, and 64 KiB of byte-addressable memory. Instructions occupy a
// fixed 4-byte slot; a total decoder extracts every operand field from the
// slot and a per-opcode handler consumes the fields it needs. The graphics
// and sound units are external collaborators reached through the narrow
// interfaces in the io package.
//
// The assembler provides a line-oriented assembly language for the
// implemented instruction subset, supporting labels, equates, data
// directives, and compile-time expression evaluation.
package cpu
