package cpu

import "fmt"

// A MemoryAccessError is returned by a Bus when a read or write cannot be
// completed. It is the only error kind the CPU core knows about; the CPU
// never constructs one itself, it only propagates whatever the bus returns.
type MemoryAccessError struct {
	Address uint16
	Write   bool
	Message string
}

func (e *MemoryAccessError) Error() string {
	op := "read from"
	if e.Write {
		op = "write to"
	}
	return fmt.Sprintf("memory access error: %s $%04X: %s", op, e.Address, e.Message)
}

// NewMemoryAccessError builds a MemoryAccessError for a failed read.
func NewMemoryAccessError(addr uint16, message string) *MemoryAccessError {
	return &MemoryAccessError{Address: addr, Message: message}
}

// NewMemoryWriteError builds a MemoryAccessError for a failed write.
func NewMemoryWriteError(addr uint16, message string) *MemoryAccessError {
	return &MemoryAccessError{Address: addr, Write: true, Message: message}
}

// Bus is the memory interface the CPU core depends on. It is the only
// collaborator the CPU requires; the bus itself, any memory-mapped
// devices behind it, and ROM loading are all external to this core.
type Bus interface {
	// Read returns the byte at addr, or a *MemoryAccessError if the
	// address cannot be read.
	Read(addr uint16) (byte, error)

	// Write stores data at addr, or returns a *MemoryAccessError if the
	// address cannot be written.
	Write(addr uint16, data byte) error
}

// FlatMemory is a Bus backed by a single 64KB buffer covering the entire
// 16-bit address space. Reads and writes never fail.
type FlatMemory struct {
	b [65536]byte
}

// NewFlatMemory creates a zero-filled 64KB address space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// Read returns the byte at addr.
func (m *FlatMemory) Read(addr uint16) (byte, error) {
	return m.b[addr], nil
}

// Write stores data at addr.
func (m *FlatMemory) Write(addr uint16, data byte) error {
	m.b[addr] = data
	return nil
}

// LoadBytes copies data into memory starting at addr, wrapping around the
// top of the address space if necessary.
func (m *FlatMemory) LoadBytes(addr uint16, data []byte) {
	for i, v := range data {
		m.b[uint16(int(addr)+i)] = v
	}
}

// Bytes returns the underlying 64KB buffer for direct inspection by tests.
func (m *FlatMemory) Bytes() []byte {
	return m.b[:]
}

// A MemoryBank is a device that occupies a contiguous range of the address
// space behind a SystemMemory. RAM, ROM, and memory-mapped peripherals are
// all memory banks.
type MemoryBank interface {
	// AddressRange returns the first and last address (inclusive) this
	// bank occupies.
	AddressRange() (start, end uint16)

	// Read returns the byte at addr, which lies within AddressRange.
	Read(addr uint16) (byte, error)

	// Write stores data at addr, which lies within AddressRange.
	Write(addr uint16, data byte) error
}

// RAM is a read/write memory bank occupying a fixed address range.
type RAM struct {
	start uint16
	buf   []byte
}

// NewRAM creates a RAM bank of the given size starting at start.
func NewRAM(start uint16, size int) *RAM {
	return &RAM{start: start, buf: make([]byte, size)}
}

// AddressRange returns the address range occupied by the bank.
func (r *RAM) AddressRange() (start, end uint16) {
	return r.start, r.start + uint16(len(r.buf)) - 1
}

// Read returns the byte at addr.
func (r *RAM) Read(addr uint16) (byte, error) {
	return r.buf[addr-r.start], nil
}

// Write stores data at addr.
func (r *RAM) Write(addr uint16, data byte) error {
	r.buf[addr-r.start] = data
	return nil
}

// ROM is a read-only memory bank. Writes are silently discarded, matching
// how real ROM behaves when the CPU attempts to store to it.
type ROM struct {
	start uint16
	buf   []byte
}

// NewROM creates a ROM bank containing the provided image, starting at
// start.
func NewROM(start uint16, image []byte) *ROM {
	buf := make([]byte, len(image))
	copy(buf, image)
	return &ROM{start: start, buf: buf}
}

// AddressRange returns the address range occupied by the bank.
func (r *ROM) AddressRange() (start, end uint16) {
	return r.start, r.start + uint16(len(r.buf)) - 1
}

// Read returns the byte at addr.
func (r *ROM) Read(addr uint16) (byte, error) {
	return r.buf[addr-r.start], nil
}

// Write discards data written to addr.
func (r *ROM) Write(addr uint16, data byte) error {
	return nil
}

// SystemMemory assembles a set of memory banks into a single 16-bit address
// space, and implements Bus over the result. Unmapped addresses return a
// MemoryAccessError, so a host can exercise the CPU's bus-failure path
// (spec §4.2) without writing a bespoke fault-injecting bus for tests.
type SystemMemory struct {
	pages [256]MemoryBank
}

// NewSystemMemory creates an empty address space with no banks mapped.
func NewSystemMemory() *SystemMemory {
	return &SystemMemory{}
}

// AddBank maps a MemoryBank into the address space at the range it
// reports from AddressRange. AddBank panics if the bank's range is not
// page-aligned, since SystemMemory maps banks a page at a time.
func (m *SystemMemory) AddBank(b MemoryBank) {
	start, end := b.AddressRange()
	if start&0xff != 0 || end&0xff != 0xff {
		panic("cpu: memory bank must be page-aligned")
	}
	for page := start >> 8; page <= end>>8; page++ {
		m.pages[page] = b
		if page == 0xff {
			break
		}
	}
}

// Read returns the byte at addr, or a MemoryAccessError if no bank is
// mapped there.
func (m *SystemMemory) Read(addr uint16) (byte, error) {
	bank := m.pages[addr>>8]
	if bank == nil {
		return 0, NewMemoryAccessError(addr, "unmapped address")
	}
	return bank.Read(addr)
}

// Write stores data at addr, or returns a MemoryAccessError if no bank is
// mapped there.
func (m *SystemMemory) Write(addr uint16, data byte) error {
	bank := m.pages[addr>>8]
	if bank == nil {
		return NewMemoryWriteError(addr, "unmapped address")
	}
	return bank.Write(addr, data)
}
