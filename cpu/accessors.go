package cpu

import "fmt"

// Individual register getters/setters (spec §6).

func (c *CPU) A() byte  { return c.Reg.A }
func (c *CPU) X() byte  { return c.Reg.X }
func (c *CPU) Y() byte  { return c.Reg.Y }
func (c *CPU) SP() byte { return c.Reg.SP }

func (c *CPU) SetA(v byte)  { c.Reg.A = v }
func (c *CPU) SetX(v byte)  { c.Reg.X = v }
func (c *CPU) SetY(v byte)  { c.Reg.Y = v }
func (c *CPU) SetSP(v byte) { c.Reg.SP = v }

func (c *CPU) PC() uint16      { return c.Reg.PC }
func (c *CPU) SetPC(v uint16)  { c.Reg.PC = v }

// Individual flag getters/setters, boolean form.

func (c *CPU) CarryFlag() bool    { return c.Reg.Carry }
func (c *CPU) ZeroFlag() bool     { return c.Reg.Zero }
func (c *CPU) InterruptFlag() bool { return c.Reg.InterruptDisable }
func (c *CPU) DecimalFlag() bool  { return c.Reg.Decimal }
func (c *CPU) BreakFlag() bool    { return c.Reg.Break }
func (c *CPU) OverflowFlag() bool { return c.Reg.Overflow }
func (c *CPU) NegativeFlag() bool { return c.Reg.Negative }

func (c *CPU) SetCarryFlag(v bool)    { c.Reg.Carry = v }
func (c *CPU) SetZeroFlag(v bool)     { c.Reg.Zero = v }
func (c *CPU) SetInterruptFlag(v bool) { c.Reg.InterruptDisable = v }
func (c *CPU) SetDecimalFlag(v bool)  { c.Reg.Decimal = v }
func (c *CPU) SetBreakFlag(v bool)    { c.Reg.Break = v }
func (c *CPU) SetOverflowFlag(v bool) { c.Reg.Overflow = v }
func (c *CPU) SetNegativeFlag(v bool) { c.Reg.Negative = v }

// Individual flag getters/setters, integer-bit form (0 or 1).

func boolBit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func (c *CPU) CarryBit() byte    { return boolBit(c.Reg.Carry) }
func (c *CPU) ZeroBit() byte     { return boolBit(c.Reg.Zero) }
func (c *CPU) InterruptBit() byte { return boolBit(c.Reg.InterruptDisable) }
func (c *CPU) DecimalBit() byte  { return boolBit(c.Reg.Decimal) }
func (c *CPU) BreakBit() byte    { return boolBit(c.Reg.Break) }
func (c *CPU) OverflowBit() byte { return boolBit(c.Reg.Overflow) }
func (c *CPU) NegativeBit() byte { return boolBit(c.Reg.Negative) }

func (c *CPU) SetCarryBit(v byte)    { c.Reg.Carry = v != 0 }
func (c *CPU) SetZeroBit(v byte)     { c.Reg.Zero = v != 0 }
func (c *CPU) SetInterruptBit(v byte) { c.Reg.InterruptDisable = v != 0 }
func (c *CPU) SetDecimalBit(v byte)  { c.Reg.Decimal = v != 0 }
func (c *CPU) SetBreakBit(v byte)    { c.Reg.Break = v != 0 }
func (c *CPU) SetOverflowBit(v byte) { c.Reg.Overflow = v != 0 }
func (c *CPU) SetNegativeBit(v byte) { c.Reg.Negative = v != 0 }

// GetStatus and SetStatus delegate to the register file (spec §4.1).

func (c *CPU) GetStatus() byte     { return c.Reg.GetStatus() }
func (c *CPU) SetStatus(p byte)    { c.Reg.SetStatus(p) }
func (c *CPU) StatusString() string { return c.Reg.StatusString() }

// StateString renders the register file in the line format spec §6
// requires: "$PPPP  OPCODE        A=$AA  X=$XX  Y=$YY  PC=$PPPP  P=[NV-BDIZC]".
// PPPP is the fetch address of the instruction currently loaded into IR,
// and OPCODE is its disassembled text.
func (c *CPU) StateString() string {
	return fmt.Sprintf("$%04X  %-12s  A=$%02X  X=$%02X  Y=$%02X  PC=$%04X  P=%s",
		c.addr, Disassemble(c.IR, c.args[0], c.args[1]), c.Reg.A, c.Reg.X, c.Reg.Y, c.Reg.PC, c.Reg.StatusString())
}
