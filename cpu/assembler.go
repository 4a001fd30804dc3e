package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MEM_SIZE":       fmt.Sprintf("%#x", MemorySize),
	"STACK_START":    fmt.Sprintf("%#x", StackStart),
	"IO_PORTS_START": fmt.Sprintf("%#x", IoPortsStart),
}

// Assembler is a single pass assembler for the Chip16 instruction subset.
// Each source line holds one instruction or directive; jump labels are
// linked after the scan.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// register decodes an rX register name. Register indexes are a single
// hex digit, r0 through rf.
func (asm *Assembler) register(word string) (index uint8, err error) {
	if len(word) != 2 || (word[0] != 'r' && word[0] != 'R') {
		err = ErrRegisterInvalid
		return
	}
	v, perr := strconv.ParseUint(word[1:], 16, 8)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}
	index = uint8(v)

	return
}

// isRegister reports whether a word names a general-purpose register.
func (asm *Assembler) isRegister(word string) bool {
	_, err := asm.register(word)
	return err == nil
}

// valueOf returns the 16-bit value of a simple word. Negative values
// encode as their two's complement.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -0x8000 || v64 > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(v64 & 0xffff)

	if invert {
		value = ^value
	}

	return
}

// nibble returns a 4-bit value.
func (asm *Assembler) nibble(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v > 0x0f {
		err = ErrValueRange
		return
	}
	value = uint8(v)

	return
}

// byteVal returns an 8-bit value.
func (asm *Assembler) byteVal(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v > 0xff {
		err = ErrValueRange
		return
	}
	value = uint8(v)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine expands a single source line into clean word tokens.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	// Operand commas are separators, not tokens.
	line = strings.ReplaceAll(line, ",", " ")

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the address the next instruction assembles at.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Bytes) != InstructionSize {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		op.Bytes[2] = uint8(addr & 0xff)
		op.Bytes[3] = uint8(addr >> 8)
	}

	prog = &Program{
		Opcodes: append([]Opcode(nil), asm.Opcode...),
	}

	return
}

// emit records a 4-byte instruction slot for the current line.
func emit(op, b1, b2, b3 uint8) []byte {
	return []byte{op, b1, b2, b3}
}

// regPair packs the x index into the low nibble and y into the high
// nibble of the instruction's register byte.
func regPair(x, y uint8) uint8 {
	return (y << 4) | (x & 0x0f)
}

// parseWords assembles the words of one source line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(bytes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: bytes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	need := func(count int) (err error) {
		if len(args) < count {
			return ErrOpcodeValueMissing
		}
		if len(args) > count {
			return ErrOpcodeExtraArgs
		}
		return
	}

	switch mnemonic {
	case "nop", "cls", "vblnk", "snd0":
		if err = need(0); err != nil {
			return
		}
		ops := map[string]uint8{"nop": OpNop, "cls": OpCls, "vblnk": OpVblnk, "snd0": OpSnd0}
		bytes = emit(ops[mnemonic], 0, 0, 0)
	case "bgc":
		if err = need(1); err != nil {
			return
		}
		var n uint8
		if n, err = asm.nibble(args[0]); err != nil {
			return
		}
		bytes = emit(OpBgc, 0, n, 0)
	case "spr":
		if err = need(1); err != nil {
			return
		}
		var v uint16
		if v, err = asm.valueOf(args[0]); err != nil {
			return
		}
		bytes = emit(OpSpr, 0, uint8(v&0xff), uint8(v>>8))
	case "drw":
		if err = need(3); err != nil {
			return
		}
		var x, y uint8
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if y, err = asm.register(args[1]); err != nil {
			return
		}
		if asm.isRegister(args[2]) {
			var z uint8
			z, _ = asm.register(args[2])
			bytes = emit(OpDrwReg, regPair(x, y), z, 0)
		} else {
			var v uint16
			if v, err = asm.valueOf(args[2]); err != nil {
				return
			}
			bytes = emit(OpDrwImm, regPair(x, y), uint8(v&0xff), uint8(v>>8))
		}
	case "rnd":
		if err = need(2); err != nil {
			return
		}
		var x uint8
		var v uint16
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if v, err = asm.valueOf(args[1]); err != nil {
			return
		}
		bytes = emit(OpRnd, x, uint8(v&0xff), uint8(v>>8))
	case "flip":
		if err = need(2); err != nil {
			return
		}
		var h, v uint8
		if h, err = asm.nibble(args[0]); err != nil {
			return
		}
		if v, err = asm.nibble(args[1]); err != nil {
			return
		}
		if h > 1 || v > 1 {
			err = ErrValueRange
			return
		}
		bytes = emit(OpFlip, 0, 0, (h<<1)|v)
	case "snd1", "snd2", "snd3":
		if err = need(1); err != nil {
			return
		}
		var v uint16
		if v, err = asm.valueOf(args[0]); err != nil {
			return
		}
		ops := map[string]uint8{"snd1": OpSnd1, "snd2": OpSnd2, "snd3": OpSnd3}
		bytes = emit(ops[mnemonic], 0, uint8(v&0xff), uint8(v>>8))
	case "snp":
		if err = need(2); err != nil {
			return
		}
		var x uint8
		var v uint16
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if v, err = asm.valueOf(args[1]); err != nil {
			return
		}
		bytes = emit(OpSnp, x, uint8(v&0xff), uint8(v>>8))
	case "sng":
		if err = need(2); err != nil {
			return
		}
		var ad uint8
		var vtsr uint16
		if ad, err = asm.byteVal(args[0]); err != nil {
			return
		}
		if vtsr, err = asm.valueOf(args[1]); err != nil {
			return
		}
		bytes = emit(OpSng, ad, uint8(vtsr&0xff), uint8(vtsr>>8))
	case "jmp":
		if err = need(1); err != nil {
			return
		}
		if v, verr := asm.valueOf(args[0]); verr == nil {
			bytes = emit(OpJmp, 0, uint8(v&0xff), uint8(v>>8))
		} else {
			// Jump target is a label; linked after the scan.
			label = args[0]
			bytes = emit(OpJmp, 0, 0, 0)
		}
	case "ldi":
		if err = need(2); err != nil {
			return
		}
		var v uint16
		if v, err = asm.valueOf(args[1]); err != nil {
			return
		}
		if strings.ToLower(args[0]) == "sp" {
			bytes = emit(OpLdiSp, 0, uint8(v&0xff), uint8(v>>8))
		} else {
			var x uint8
			if x, err = asm.register(args[0]); err != nil {
				return
			}
			bytes = emit(OpLdiReg, x, uint8(v&0xff), uint8(v>>8))
		}
	case "ldm", "mov", "stm":
		if err = need(2); err != nil {
			return
		}
		var x uint8
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if asm.isRegister(args[1]) {
			var y uint8
			y, _ = asm.register(args[1])
			switch mnemonic {
			case "ldm":
				bytes = emit(OpLdmReg, regPair(x, y), 0, 0)
			case "mov":
				bytes = emit(OpMov, regPair(x, y), 0, 0)
			case "stm":
				bytes = emit(OpStmReg, regPair(x, y), 0, 0)
			}
		} else {
			if mnemonic == "mov" {
				err = ErrOpcodeInvalid
				return
			}
			var v uint16
			if v, err = asm.valueOf(args[1]); err != nil {
				return
			}
			op := uint8(OpLdmImm)
			if mnemonic == "stm" {
				op = OpStmImm
			}
			bytes = emit(op, x, uint8(v&0xff), uint8(v>>8))
		}
	case "db":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var b uint8
			if b, err = asm.byteVal(arg); err != nil {
				return
			}
			bytes = append(bytes, b)
		}
	case "dw":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var v uint16
			if v, err = asm.valueOf(arg); err != nil {
				return
			}
			bytes = append(bytes, uint8(v&0xff), uint8(v>>8))
		}
	default:
		err = ErrOpcodeInvalid
		return
	}

	return
}
