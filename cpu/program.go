package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated instruction bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing: the opcode records in address order.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source line an address was assembled from.
type Debug struct {
	*Opcode
	Index int
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary flattens the listing into a ROM payload, loadable at address 0.
func (prog *Program) Binary() (image []byte) {
	for _, b := range prog.Bytes() {
		image = append(image, b)
	}

	return
}

// Bytes iterates the assembled bytes with their load addresses.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, b byte) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Addr)
			for n, b := range op.Bytes {
				if !yield(addr+uint16(n), b) {
					return
				}
			}
		}
	}
}
