package cpu

// Mode identifies one of the 6502's addressing modes.
type Mode byte

// All addressing modes the core decodes (spec §4.3.5).
const (
	IMP Mode = iota // Implied
	IMM             // Immediate
	ZP              // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	IZX             // (Zero Page,X)
	IZY             // (Zero Page),Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	REL             // Relative
	ACC             // Accumulator
)

type instfunc func(c *CPU, inst *Instruction) error

// An Instruction describes one (opcode, addressing mode) pair: its
// mnemonic, its addressing mode, its encoded length, and the handler that
// implements its semantics.
type Instruction struct {
	Name   string
	Mode   Mode
	Opcode byte
	Length byte
	fn     instfunc
}

// opdef is the static description of one legal (opcode, mode) pair, used
// to build the 256-entry dispatch table at package init.
type opdef struct {
	name   string
	mode   Mode
	opcode byte
	length byte
	fn     instfunc
}

// instructionDefs holds every legal (opcode, mode) pair in this core
// (spec §1: 151 legal opcodes across 13 addressing modes). Any opcode
// byte with no entry here is illegal and traps (spec §4.3.4).
var instructionDefs = []opdef{
	{"ADC", IMM, 0x69, 2, (*CPU).adc},
	{"ADC", ZP, 0x65, 2, (*CPU).adc},
	{"ADC", ZPX, 0x75, 2, (*CPU).adc},
	{"ADC", ABS, 0x6d, 3, (*CPU).adc},
	{"ADC", ABX, 0x7d, 3, (*CPU).adc},
	{"ADC", ABY, 0x79, 3, (*CPU).adc},
	{"ADC", IZX, 0x61, 2, (*CPU).adc},
	{"ADC", IZY, 0x71, 2, (*CPU).adc},

	{"AND", IMM, 0x29, 2, (*CPU).and},
	{"AND", ZP, 0x25, 2, (*CPU).and},
	{"AND", ZPX, 0x35, 2, (*CPU).and},
	{"AND", ABS, 0x2d, 3, (*CPU).and},
	{"AND", ABX, 0x3d, 3, (*CPU).and},
	{"AND", ABY, 0x39, 3, (*CPU).and},
	{"AND", IZX, 0x21, 2, (*CPU).and},
	{"AND", IZY, 0x31, 2, (*CPU).and},

	{"ASL", ACC, 0x0a, 1, (*CPU).asl},
	{"ASL", ZP, 0x06, 2, (*CPU).asl},
	{"ASL", ZPX, 0x16, 2, (*CPU).asl},
	{"ASL", ABS, 0x0e, 3, (*CPU).asl},
	{"ASL", ABX, 0x1e, 3, (*CPU).asl},

	{"BCC", REL, 0x90, 2, (*CPU).bcc},
	{"BCS", REL, 0xb0, 2, (*CPU).bcs},
	{"BEQ", REL, 0xf0, 2, (*CPU).beq},
	{"BIT", ZP, 0x24, 2, (*CPU).bit},
	{"BIT", ABS, 0x2c, 3, (*CPU).bit},
	{"BMI", REL, 0x30, 2, (*CPU).bmi},
	{"BNE", REL, 0xd0, 2, (*CPU).bne},
	{"BPL", REL, 0x10, 2, (*CPU).bpl},
	{"BRK", IMP, 0x00, 1, (*CPU).brk},
	{"BVC", REL, 0x50, 2, (*CPU).bvc},
	{"BVS", REL, 0x70, 2, (*CPU).bvs},

	{"CLC", IMP, 0x18, 1, (*CPU).clc},
	{"CLD", IMP, 0xd8, 1, (*CPU).cld},
	{"CLI", IMP, 0x58, 1, (*CPU).cli},
	{"CLV", IMP, 0xb8, 1, (*CPU).clv},

	{"CMP", IMM, 0xc9, 2, (*CPU).cmp},
	{"CMP", ZP, 0xc5, 2, (*CPU).cmp},
	{"CMP", ZPX, 0xd5, 2, (*CPU).cmp},
	{"CMP", ABS, 0xcd, 3, (*CPU).cmp},
	{"CMP", ABX, 0xdd, 3, (*CPU).cmp},
	{"CMP", ABY, 0xd9, 3, (*CPU).cmp},
	{"CMP", IZX, 0xc1, 2, (*CPU).cmp},
	{"CMP", IZY, 0xd1, 2, (*CPU).cmp},

	{"CPX", IMM, 0xe0, 2, (*CPU).cpx},
	{"CPX", ZP, 0xe4, 2, (*CPU).cpx},
	{"CPX", ABS, 0xec, 3, (*CPU).cpx},

	{"CPY", IMM, 0xc0, 2, (*CPU).cpy},
	{"CPY", ZP, 0xc4, 2, (*CPU).cpy},
	{"CPY", ABS, 0xcc, 3, (*CPU).cpy},

	{"DEC", ZP, 0xc6, 2, (*CPU).dec},
	{"DEC", ZPX, 0xd6, 2, (*CPU).dec},
	{"DEC", ABS, 0xce, 3, (*CPU).dec},
	{"DEC", ABX, 0xde, 3, (*CPU).dec},
	{"DEX", IMP, 0xca, 1, (*CPU).dex},
	{"DEY", IMP, 0x88, 1, (*CPU).dey},

	{"EOR", IMM, 0x49, 2, (*CPU).eor},
	{"EOR", ZP, 0x45, 2, (*CPU).eor},
	{"EOR", ZPX, 0x55, 2, (*CPU).eor},
	{"EOR", ABS, 0x4d, 3, (*CPU).eor},
	{"EOR", ABX, 0x5d, 3, (*CPU).eor},
	{"EOR", ABY, 0x59, 3, (*CPU).eor},
	{"EOR", IZX, 0x41, 2, (*CPU).eor},
	{"EOR", IZY, 0x51, 2, (*CPU).eor},

	{"INC", ZP, 0xe6, 2, (*CPU).inc},
	{"INC", ZPX, 0xf6, 2, (*CPU).inc},
	{"INC", ABS, 0xee, 3, (*CPU).inc},
	{"INC", ABX, 0xfe, 3, (*CPU).inc},
	{"INX", IMP, 0xe8, 1, (*CPU).inx},
	{"INY", IMP, 0xc8, 1, (*CPU).iny},

	{"JMP", ABS, 0x4c, 3, (*CPU).jmp},
	{"JMP", IND, 0x6c, 3, (*CPU).jmpInd},
	{"JSR", ABS, 0x20, 3, (*CPU).jsr},

	{"LDA", IMM, 0xa9, 2, (*CPU).lda},
	{"LDA", ZP, 0xa5, 2, (*CPU).lda},
	{"LDA", ZPX, 0xb5, 2, (*CPU).lda},
	{"LDA", ABS, 0xad, 3, (*CPU).lda},
	{"LDA", ABX, 0xbd, 3, (*CPU).lda},
	{"LDA", ABY, 0xb9, 3, (*CPU).lda},
	{"LDA", IZX, 0xa1, 2, (*CPU).lda},
	{"LDA", IZY, 0xb1, 2, (*CPU).lda},

	{"LDX", IMM, 0xa2, 2, (*CPU).ldx},
	{"LDX", ZP, 0xa6, 2, (*CPU).ldx},
	{"LDX", ZPY, 0xb6, 2, (*CPU).ldx},
	{"LDX", ABS, 0xae, 3, (*CPU).ldx},
	{"LDX", ABY, 0xbe, 3, (*CPU).ldx},

	{"LDY", IMM, 0xa0, 2, (*CPU).ldy},
	{"LDY", ZP, 0xa4, 2, (*CPU).ldy},
	{"LDY", ZPX, 0xb4, 2, (*CPU).ldy},
	{"LDY", ABS, 0xac, 3, (*CPU).ldy},
	{"LDY", ABX, 0xbc, 3, (*CPU).ldy},

	{"LSR", ACC, 0x4a, 1, (*CPU).lsr},
	{"LSR", ZP, 0x46, 2, (*CPU).lsr},
	{"LSR", ZPX, 0x56, 2, (*CPU).lsr},
	{"LSR", ABS, 0x4e, 3, (*CPU).lsr},
	{"LSR", ABX, 0x5e, 3, (*CPU).lsr},

	{"NOP", IMP, 0xea, 1, (*CPU).nop},

	{"ORA", IMM, 0x09, 2, (*CPU).ora},
	{"ORA", ZP, 0x05, 2, (*CPU).ora},
	{"ORA", ZPX, 0x15, 2, (*CPU).ora},
	{"ORA", ABS, 0x0d, 3, (*CPU).ora},
	{"ORA", ABX, 0x1d, 3, (*CPU).ora},
	{"ORA", ABY, 0x19, 3, (*CPU).ora},
	{"ORA", IZX, 0x01, 2, (*CPU).ora},
	{"ORA", IZY, 0x11, 2, (*CPU).ora},

	{"PHA", IMP, 0x48, 1, (*CPU).pha},
	{"PHP", IMP, 0x08, 1, (*CPU).php},
	{"PLA", IMP, 0x68, 1, (*CPU).pla},
	{"PLP", IMP, 0x28, 1, (*CPU).plp},

	{"ROL", ACC, 0x2a, 1, (*CPU).rol},
	{"ROL", ZP, 0x26, 2, (*CPU).rol},
	{"ROL", ZPX, 0x36, 2, (*CPU).rol},
	{"ROL", ABS, 0x2e, 3, (*CPU).rol},
	{"ROL", ABX, 0x3e, 3, (*CPU).rol},

	{"ROR", ACC, 0x6a, 1, (*CPU).ror},
	{"ROR", ZP, 0x66, 2, (*CPU).ror},
	{"ROR", ZPX, 0x76, 2, (*CPU).ror},
	{"ROR", ABS, 0x6e, 3, (*CPU).ror},
	{"ROR", ABX, 0x7e, 3, (*CPU).ror},

	{"RTI", IMP, 0x40, 1, (*CPU).rti},
	{"RTS", IMP, 0x60, 1, (*CPU).rts},

	{"SBC", IMM, 0xe9, 2, (*CPU).sbc},
	{"SBC", ZP, 0xe5, 2, (*CPU).sbc},
	{"SBC", ZPX, 0xf5, 2, (*CPU).sbc},
	{"SBC", ABS, 0xed, 3, (*CPU).sbc},
	{"SBC", ABX, 0xfd, 3, (*CPU).sbc},
	{"SBC", ABY, 0xf9, 3, (*CPU).sbc},
	{"SBC", IZX, 0xe1, 2, (*CPU).sbc},
	{"SBC", IZY, 0xf1, 2, (*CPU).sbc},

	{"SEC", IMP, 0x38, 1, (*CPU).sec},
	{"SED", IMP, 0xf8, 1, (*CPU).sed},
	{"SEI", IMP, 0x78, 1, (*CPU).sei},

	{"STA", ZP, 0x85, 2, (*CPU).sta},
	{"STA", ZPX, 0x95, 2, (*CPU).sta},
	{"STA", ABS, 0x8d, 3, (*CPU).sta},
	{"STA", ABX, 0x9d, 3, (*CPU).sta},
	{"STA", ABY, 0x99, 3, (*CPU).sta},
	{"STA", IZX, 0x81, 2, (*CPU).sta},
	{"STA", IZY, 0x91, 2, (*CPU).sta},

	{"STX", ZP, 0x86, 2, (*CPU).stx},
	{"STX", ZPY, 0x96, 2, (*CPU).stx},
	{"STX", ABS, 0x8e, 3, (*CPU).stx},

	{"STY", ZP, 0x84, 2, (*CPU).sty},
	{"STY", ZPX, 0x94, 2, (*CPU).sty},
	{"STY", ABS, 0x8c, 3, (*CPU).sty},

	{"TAX", IMP, 0xaa, 1, (*CPU).tax},
	{"TAY", IMP, 0xa8, 1, (*CPU).tay},
	{"TSX", IMP, 0xba, 1, (*CPU).tsx},
	{"TXA", IMP, 0x8a, 1, (*CPU).txa},
	{"TXS", IMP, 0x9a, 1, (*CPU).txs},
	{"TYA", IMP, 0x98, 1, (*CPU).tya},
}

// modeFormat renders the operand portion of a disassembled instruction for
// each addressing mode (spec §6 assembly rendering). IMP and ACC produce
// no operand text and have no entry here; IND and REL are formatted
// specially by Disassemble.
var modeFormat = map[Mode]string{
	IMM: " #$%02X",
	ZP:  " $%02X",
	ZPX: " $%02X,X",
	ZPY: " $%02X,Y",
	IZX: " ($%02X,X)",
	IZY: " ($%02X),Y",
	ABS: " $%04X",
	ABX: " $%04X,X",
	ABY: " $%04X,Y",
}

// instructionTable is the 256-entry opcode dispatch table built once at
// package init from instructionDefs. An entry with a nil fn is illegal
// and traps (spec §4.3.4).
var instructionTable [256]Instruction

func init() {
	for _, d := range instructionDefs {
		instructionTable[d.opcode] = Instruction{
			Name:   d.name,
			Mode:   d.mode,
			Opcode: d.opcode,
			Length: d.length,
			fn:     d.fn,
		}
	}
}

// lookup returns the instruction table entry for opcode. Its fn is nil
// for any opcode not present in instructionDefs.
func lookup(opcode byte) *Instruction {
	return &instructionTable[opcode]
}
