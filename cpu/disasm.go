package cpu

import "fmt"

// Disassemble renders the instruction encoded by op, arg0, arg1 as
// mnemonic plus operand (spec §6): absolute operands render as
// " $nnnn", immediate as " #$nn", implied/accumulator instructions
// render as the mnemonic alone. An opcode with no entry in the
// instruction table renders as "???".
func Disassemble(op, arg0, arg1 byte) string {
	inst := lookup(op)
	if inst.fn == nil {
		return "???"
	}

	switch inst.Mode {
	case IND:
		return fmt.Sprintf("%s ($%02X%02X)", inst.Name, arg1, arg0)
	case REL:
		return fmt.Sprintf("%s $%02X", inst.Name, arg0)
	case IMP, ACC:
		return inst.Name
	}

	format, ok := modeFormat[inst.Mode]
	if !ok {
		return inst.Name
	}

	switch inst.Mode {
	case ABS, ABX, ABY:
		return inst.Name + fmt.Sprintf(format, uint16(arg0)|uint16(arg1)<<8)
	default:
		return inst.Name + fmt.Sprintf(format, arg0)
	}
}
