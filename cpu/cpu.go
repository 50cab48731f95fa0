package cpu

// Vector addresses consulted by reset and interrupt handling (spec §4.3.2).
const (
	vectorNMI   uint16 = 0xFFFA
	vectorReset uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
)

// CPU is the fetch-decode-execute engine. It holds the architectural
// register file and a reference to the bus it drives; it owns no memory
// of its own.
type CPU struct {
	bus Bus
	Reg Registers

	IR   byte    // last fetched opcode
	args [2]byte // operand bytes of the current instruction

	addr uint16 // fetch address of the current instruction (debug)

	opTrap bool // raised when an unrecognized opcode is decoded

	effAddr uint16 // effective address computed for the current instruction
	effData byte   // effective data computed for the current instruction
}

// NewCPU creates a CPU driving bus. The register file is zeroed; call
// Reset to bring it to a defined power-on state.
func NewCPU(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// SetBus replaces the bus the CPU drives.
func (c *CPU) SetBus(bus Bus) {
	c.bus = bus
}

// Bus returns the bus the CPU currently drives.
func (c *CPU) Bus() Bus {
	return c.bus
}

// Reset brings the CPU to its defined power-on state (spec §4.3.1): SP
// is set to 0xFF, IR is cleared, the C, I, D, B, and V flags are
// cleared, opTrap is cleared, and PC is loaded from the reset vector.
// A, X, Y, Z, and N are left untouched, matching real hardware, which
// leaves them undefined across reset.
func (c *CPU) Reset() error {
	c.Reg.SP = 0xFF
	c.IR = 0
	c.Reg.Carry = false
	c.Reg.InterruptDisable = false
	c.Reg.Decimal = false
	c.Reg.Break = false
	c.Reg.Overflow = false
	c.opTrap = false

	pc, err := c.readVector(vectorReset)
	if err != nil {
		return err
	}
	c.Reg.PC = pc
	return nil
}

// readVector reads the little-endian 16-bit pointer stored at addr,
// addr+1.
func (c *CPU) readVector(addr uint16) (uint16, error) {
	lo, err := c.bus.Read(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.bus.Read(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Step executes exactly one instruction (spec §4.3.3). A bus failure
// aborts the step and propagates to the caller; any state already
// mutated before the failure remains mutated.
func (c *CPU) Step() error {
	c.addr = c.Reg.PC

	op, err := c.bus.Read(c.Reg.PC)
	if err != nil {
		return err
	}
	c.IR = op
	c.Reg.PC++

	c.opTrap = false

	inst := lookup(op)
	if inst.fn == nil {
		c.opTrap = true
		return nil
	}

	for i := byte(0); i < inst.Length-1; i++ {
		b, err := c.bus.Read(c.Reg.PC)
		if err != nil {
			return err
		}
		c.args[i] = b
		c.Reg.PC++
	}

	if err := c.computeEffective(inst); err != nil {
		return err
	}

	return inst.fn(c, inst)
}

// StepN executes n instructions in sequence, aborting the batch on the
// first error (spec §6).
func (c *CPU) StepN(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// computeEffective resolves effectiveAddress/effectiveData for inst's
// addressing mode against the current instruction's operand bytes
// (spec §4.3.3's opMode x addressMode grid), ahead of dispatch. Modes
// with no memory operand (IMP, ACC, REL) leave effAddr/effData
// untouched; handlers for those modes read args/Reg directly.
//
// JMP abs and JSR abs fall under the grid's "computed per opcode"
// row rather than the generic ABS entry: their target address is
// not a location the instruction reads data from, so resolving it
// through the generic path would perform a spurious read of whatever
// happens to live at the jump target.
func (c *CPU) computeEffective(inst *Instruction) error {
	if inst.Opcode == 0x4C || inst.Opcode == 0x20 {
		c.effAddr = absAddr(c.args[0], c.args[1])
		return nil
	}
	switch inst.Mode {
	case IMM:
		c.effData = c.args[0]
	case ZP:
		c.effAddr = uint16(c.args[0])
		return c.loadEffective()
	case ZPX:
		c.effAddr = uint16(c.args[0] + c.Reg.X)
		return c.loadEffective()
	case ZPY:
		c.effAddr = uint16(c.args[0] + c.Reg.Y)
		return c.loadEffective()
	case ABS:
		c.effAddr = absAddr(c.args[0], c.args[1])
		return c.loadEffective()
	case ABX:
		c.effAddr = absAddr(c.args[0], c.args[1]) + uint16(c.Reg.X)
		return c.loadEffective()
	case ABY:
		c.effAddr = absAddr(c.args[0], c.args[1]) + uint16(c.Reg.Y)
		return c.loadEffective()
	case IZX:
		// Preserves the reference implementation's (zp,X) addressing:
		// a single zero-page byte, read from (args[0]+X)&0xFF, is used
		// directly as the effective address rather than as a pointer
		// to a 16-bit address (spec §4.3.3; Cpu.java:164).
		ptr := c.args[0] + c.Reg.X
		b, err := c.bus.Read(uint16(ptr))
		if err != nil {
			return err
		}
		c.effAddr = uint16(b)
		return c.loadEffective()
	case IZY:
		// Mirrors IZX: a single zero-page byte at args[0], plus Y, is
		// the effective address (spec §4.3.3; Cpu.java:181).
		b, err := c.bus.Read(uint16(c.args[0]))
		if err != nil {
			return err
		}
		c.effAddr = uint16(b) + uint16(c.Reg.Y)
		return c.loadEffective()
	case IND:
		ptr := absAddr(c.args[0], c.args[1])
		lo, err := c.bus.Read(ptr)
		if err != nil {
			return err
		}
		hi, err := c.bus.Read(ptr + 1)
		if err != nil {
			return err
		}
		c.effAddr = absAddr(lo, hi)
	case ACC, IMP, REL:
		// no memory operand; handlers consult args/Reg directly.
	}
	return nil
}

// loadEffective reads effData from the bus at the already-resolved
// effAddr.
func (c *CPU) loadEffective() error {
	data, err := c.bus.Read(c.effAddr)
	if err != nil {
		return err
	}
	c.effData = data
	return nil
}

func absAddr(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// push writes v to the stack and decrements SP, wrapping modulo 256.
func (c *CPU) push(v byte) error {
	if err := c.bus.Write(0x0100+uint16(c.Reg.SP), v); err != nil {
		return err
	}
	c.Reg.SP--
	return nil
}

// pop increments SP, wrapping modulo 256, and reads the resulting
// stack slot.
func (c *CPU) pop() (byte, error) {
	c.Reg.SP++
	return c.bus.Read(0x0100 + uint16(c.Reg.SP))
}

func setNZ(r *Registers, v byte) {
	r.Zero = v == 0
	r.Negative = v&0x80 != 0
}

// --- Transfer / load / store (spec §4.3.4) ---

func (c *CPU) lda(inst *Instruction) error {
	c.Reg.A = c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) ldx(inst *Instruction) error {
	c.Reg.X = c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) ldy(inst *Instruction) error {
	c.Reg.Y = c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.Y)
	return nil
}

// loadByte returns the operand byte for a load/arithmetic-style
// instruction: the accumulator for ACC mode, args[0] for IMM, and
// effData otherwise.
func (c *CPU) loadByte(mode Mode) byte {
	switch mode {
	case ACC:
		return c.Reg.A
	case IMM:
		return c.args[0]
	default:
		return c.effData
	}
}

// sta, stx, sty write the named register to the effective address and
// then update N/Z from the stored register, a quirk of the reference
// implementation that real hardware does not exhibit: store instructions
// leave flags untouched on actual silicon.
func (c *CPU) sta(inst *Instruction) error {
	if err := c.bus.Write(c.effAddr, c.Reg.A); err != nil {
		return err
	}
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) stx(inst *Instruction) error {
	if err := c.bus.Write(c.effAddr, c.Reg.X); err != nil {
		return err
	}
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) sty(inst *Instruction) error {
	if err := c.bus.Write(c.effAddr, c.Reg.Y); err != nil {
		return err
	}
	setNZ(&c.Reg, c.Reg.Y)
	return nil
}

func (c *CPU) tax(inst *Instruction) error {
	c.Reg.X = c.Reg.A
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) tay(inst *Instruction) error {
	c.Reg.Y = c.Reg.A
	setNZ(&c.Reg, c.Reg.Y)
	return nil
}

func (c *CPU) txa(inst *Instruction) error {
	c.Reg.A = c.Reg.X
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) tya(inst *Instruction) error {
	c.Reg.A = c.Reg.Y
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) tsx(inst *Instruction) error {
	c.Reg.X = c.Reg.SP
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) txs(inst *Instruction) error {
	c.Reg.SP = c.Reg.X
	return nil
}

// --- Arithmetic (spec §4.3.4) ---

func (c *CPU) adc(inst *Instruction) error {
	data := c.loadByte(inst.Mode)
	if c.Reg.Decimal {
		c.Reg.A = c.adcDecimal(c.Reg.A, data)
	} else {
		c.Reg.A = c.adcBinary(c.Reg.A, data)
	}
	return nil
}

func (c *CPU) sbc(inst *Instruction) error {
	data := c.loadByte(inst.Mode)
	if c.Reg.Decimal {
		c.Reg.A = c.sbcDecimal(c.Reg.A, data)
	} else {
		c.Reg.A = c.adcBinary(c.Reg.A, ^data)
	}
	return nil
}

// adcBinary implements binary-mode ADC (spec §4.3.4); SBC reuses it with
// the operand's one's complement, which threads C/V/N/Z correctly for
// subtraction without separate logic.
func (c *CPU) adcBinary(acc, operand byte) byte {
	cin := byte(0)
	if c.Reg.Carry {
		cin = 1
	}
	r := int(acc) + int(operand) + int(cin)
	r6 := int(acc&0x7F) + int(operand&0x7F) + int(cin)
	c.Reg.Carry = r&0x100 != 0
	c.Reg.Overflow = c.Reg.Carry != (r6&0x80 != 0)
	result := byte(r & 0xFF)
	setNZ(&c.Reg, result)
	return result
}

func (c *CPU) adcDecimal(acc, operand byte) byte {
	cin := 0
	if c.Reg.Carry {
		cin = 1
	}
	l := int(acc&0x0F) + int(operand&0x0F) + cin
	if l > 9 {
		l += 6
	}
	h := int(acc>>4) + int(operand>>4)
	if l > 15 {
		h++
	}
	if h > 9 {
		h += 6
	}
	result := byte((l & 0x0F) | (h << 4))
	c.Reg.Carry = h > 15
	c.Reg.Zero = result == 0
	c.Reg.Negative = false
	c.Reg.Overflow = false
	return result
}

func (c *CPU) sbcDecimal(acc, operand byte) byte {
	borrow := 0
	if !c.Reg.Carry {
		borrow = 1
	}
	l := int(acc&0x0F) - int(operand&0x0F) - borrow
	if l&0x10 != 0 {
		l -= 6
	}
	h := int(acc>>4) - int(operand>>4)
	if l&0x10 != 0 {
		h--
	}
	if h&0x10 != 0 {
		h -= 6
	}
	result := byte((l & 0x0F) | (h << 4))
	c.Reg.Carry = h&0xFF < 15
	c.Reg.Zero = result == 0
	c.Reg.Negative = false
	c.Reg.Overflow = false
	return result
}

// --- Bit logic (spec §4.3.4) ---

func (c *CPU) and(inst *Instruction) error {
	c.Reg.A &= c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) ora(inst *Instruction) error {
	c.Reg.A |= c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) eor(inst *Instruction) error {
	c.Reg.A ^= c.loadByte(inst.Mode)
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

// bit derives Z, N and V from k = A&data: Z is set when k is zero, N is
// bit 7 of k and V is bit 6 of k. N and V therefore match data's own
// bits 7 and 6 only where the same bits of A are set.
func (c *CPU) bit(inst *Instruction) error {
	data := c.loadByte(inst.Mode)
	k := c.Reg.A & data
	c.Reg.Zero = k == 0
	c.Reg.Negative = k&0x80 != 0
	c.Reg.Overflow = k&0x40 != 0
	return nil
}

// --- Shifts and rotates (spec §4.3.4) ---

func (c *CPU) asl(inst *Instruction) error {
	return c.shiftRMW(inst, func(m byte) byte {
		c.Reg.Carry = m&0x80 != 0
		return m << 1
	})
}

func (c *CPU) lsr(inst *Instruction) error {
	return c.shiftRMW(inst, func(m byte) byte {
		c.Reg.Carry = m&0x01 != 0
		return m >> 1
	})
}

func (c *CPU) rol(inst *Instruction) error {
	return c.shiftRMW(inst, func(m byte) byte {
		cin := byte(0)
		if c.Reg.Carry {
			cin = 1
		}
		c.Reg.Carry = m&0x80 != 0
		return (m << 1) | cin
	})
}

func (c *CPU) ror(inst *Instruction) error {
	return c.shiftRMW(inst, func(m byte) byte {
		cin := byte(0)
		if c.Reg.Carry {
			cin = 0x80
		}
		c.Reg.Carry = m&0x01 != 0
		return (m >> 1) | cin
	})
}

// shiftRMW applies f to the accumulator (ACC mode) or to the byte at
// effAddr, writing the result back and updating N/Z.
func (c *CPU) shiftRMW(inst *Instruction, f func(byte) byte) error {
	if inst.Mode == ACC {
		c.Reg.A = f(c.Reg.A)
		setNZ(&c.Reg, c.Reg.A)
		return nil
	}
	result := f(c.effData)
	if err := c.bus.Write(c.effAddr, result); err != nil {
		return err
	}
	setNZ(&c.Reg, result)
	return nil
}

// --- Compare (spec §4.3.4) ---

// cmp, cpx, cpy preserve the reference implementation's N-flag bug:
// N is derived from the signed comparison (reg-operand) > 0 rather
// than from bit 7 of the wrapped 8-bit difference.
func (c *CPU) cmp(inst *Instruction) error {
	c.compare(c.Reg.A, c.loadByte(inst.Mode))
	return nil
}

func (c *CPU) cpx(inst *Instruction) error {
	c.compare(c.Reg.X, c.loadByte(inst.Mode))
	return nil
}

func (c *CPU) cpy(inst *Instruction) error {
	c.compare(c.Reg.Y, c.loadByte(inst.Mode))
	return nil
}

func (c *CPU) compare(reg, operand byte) {
	c.Reg.Carry = reg >= operand
	c.Reg.Zero = reg == operand
	c.Reg.Negative = int(reg)-int(operand) > 0
}

// --- Increment/decrement (spec §4.3.4) ---

func (c *CPU) inc(inst *Instruction) error {
	result := c.effData + 1
	if err := c.bus.Write(c.effAddr, result); err != nil {
		return err
	}
	setNZ(&c.Reg, result)
	return nil
}

func (c *CPU) dec(inst *Instruction) error {
	result := c.effData - 1
	if err := c.bus.Write(c.effAddr, result); err != nil {
		return err
	}
	setNZ(&c.Reg, result)
	return nil
}

func (c *CPU) inx(inst *Instruction) error {
	c.Reg.X++
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) dex(inst *Instruction) error {
	c.Reg.X--
	setNZ(&c.Reg, c.Reg.X)
	return nil
}

func (c *CPU) iny(inst *Instruction) error {
	c.Reg.Y++
	setNZ(&c.Reg, c.Reg.Y)
	return nil
}

func (c *CPU) dey(inst *Instruction) error {
	c.Reg.Y--
	setNZ(&c.Reg, c.Reg.Y)
	return nil
}

// --- Flag ops (spec §4.3.4) ---

func (c *CPU) clc(inst *Instruction) error { c.Reg.Carry = false; return nil }
func (c *CPU) sec(inst *Instruction) error { c.Reg.Carry = true; return nil }
func (c *CPU) cli(inst *Instruction) error { c.Reg.InterruptDisable = false; return nil }
func (c *CPU) sei(inst *Instruction) error { c.Reg.InterruptDisable = true; return nil }
func (c *CPU) cld(inst *Instruction) error { c.Reg.Decimal = false; return nil }
func (c *CPU) sed(inst *Instruction) error { c.Reg.Decimal = true; return nil }
func (c *CPU) clv(inst *Instruction) error { c.Reg.Overflow = false; return nil }

// --- Branches (spec §4.3.4) ---

func (c *CPU) branch(taken bool) {
	if !taken {
		return
	}
	offset := int8(c.args[0])
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(offset))
}

func (c *CPU) bpl(inst *Instruction) error { c.branch(!c.Reg.Negative); return nil }
func (c *CPU) bmi(inst *Instruction) error { c.branch(c.Reg.Negative); return nil }
func (c *CPU) bvc(inst *Instruction) error { c.branch(!c.Reg.Overflow); return nil }
func (c *CPU) bvs(inst *Instruction) error { c.branch(c.Reg.Overflow); return nil }
func (c *CPU) bcc(inst *Instruction) error { c.branch(!c.Reg.Carry); return nil }
func (c *CPU) bcs(inst *Instruction) error { c.branch(c.Reg.Carry); return nil }
func (c *CPU) bne(inst *Instruction) error { c.branch(!c.Reg.Zero); return nil }
func (c *CPU) beq(inst *Instruction) error { c.branch(c.Reg.Zero); return nil }

// --- Jumps and calls (spec §4.3.4) ---

func (c *CPU) jmp(inst *Instruction) error {
	c.Reg.PC = absAddr(c.args[0], c.args[1])
	return nil
}

// jmpInd reads the jump target from the pointer resolved by
// computeEffective. It does not emulate the NMOS page-boundary
// wraparound bug: the pointer's high byte is read from ptr+1 with
// ordinary 16-bit wraparound, never wrapping within the low page.
func (c *CPU) jmpInd(inst *Instruction) error {
	c.Reg.PC = c.effAddr
	return nil
}

func (c *CPU) jsr(inst *Instruction) error {
	ret := c.Reg.PC - 1
	if err := c.push(byte(ret >> 8)); err != nil {
		return err
	}
	if err := c.push(byte(ret)); err != nil {
		return err
	}
	c.Reg.PC = absAddr(c.args[0], c.args[1])
	return nil
}

func (c *CPU) rts(inst *Instruction) error {
	lo, err := c.pop()
	if err != nil {
		return err
	}
	hi, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg.PC = absAddr(lo, hi) + 1
	return nil
}

// --- Stack ops (spec §4.3.4) ---

func (c *CPU) pha(inst *Instruction) error {
	return c.push(c.Reg.A)
}

func (c *CPU) php(inst *Instruction) error {
	return c.push(c.Reg.GetStatus())
}

func (c *CPU) pla(inst *Instruction) error {
	v, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg.A = v
	setNZ(&c.Reg, c.Reg.A)
	return nil
}

func (c *CPU) plp(inst *Instruction) error {
	v, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg.SetStatus(v)
	return nil
}

// --- Interrupts (spec §4.3.4) ---

// brk implements software interrupt entry. If I is already set, BRK is
// a no-op; otherwise it pushes the return address (the address of the
// BRK opcode plus 2, skipping the conventional signature byte this
// core never reads) high-then-low, pushes status with B set, sets I,
// and loads PC from the IRQ/BRK vector.
func (c *CPU) brk(inst *Instruction) error {
	if c.Reg.InterruptDisable {
		return nil
	}
	ret := c.addr + 2
	if err := c.push(byte(ret >> 8)); err != nil {
		return err
	}
	if err := c.push(byte(ret)); err != nil {
		return err
	}
	c.Reg.Break = true
	if err := c.push(c.Reg.GetStatus()); err != nil {
		return err
	}
	c.Reg.InterruptDisable = true
	vec, err := c.readVector(vectorIRQ)
	if err != nil {
		return err
	}
	c.Reg.PC = vec
	return nil
}

func (c *CPU) rti(inst *Instruction) error {
	status, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg.SetStatus(status)
	lo, err := c.pop()
	if err != nil {
		return err
	}
	hi, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg.PC = absAddr(lo, hi)
	return nil
}

// --- Misc (spec §4.3.4) ---

func (c *CPU) nop(inst *Instruction) error { return nil }

// --- State I/O (spec §6) ---

// GetOpTrap reports whether the most recent Step decoded an
// unrecognized opcode.
func (c *CPU) GetOpTrap() bool { return c.opTrap }

// SetOpTrap forces the opTrap flag.
func (c *CPU) SetOpTrap(v bool) { c.opTrap = v }

// ClearOpTrap clears the opTrap flag.
func (c *CPU) ClearOpTrap() { c.opTrap = false }
