// Package machine contains the CHIP-8 machine state: memory, registers, stack,
// timers, framebuffer and key state. It has no instruction semantics, every
// access from a program controlled index is bounds checked.
package machine

import (
	"errors"
	"fmt"
)

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: built-in font sprites (16 glyphs, 5 bytes each)
//	0x050-0x1FF: reserved interpreter area
//	0x200-0xFFF: program and data space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1

	// ProgramStart is the address where ROMs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxROMSize is the largest ROM image that fits into program space.
	MaxROMSize = MemorySize - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x000

	// FontGlyphSize is the number of bytes per font glyph.
	FontGlyphSize = 5

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16

	// FlagRegister is the index of VF, used for carry, borrow and collision.
	FlagRegister = 0xF

	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16

	// KeyCount is the number of keys of the hexadecimal keypad.
	KeyCount = 16

	// ScreenWidth is the framebuffer width in pixels.
	ScreenWidth = 64

	// ScreenHeight is the framebuffer height in pixels.
	ScreenHeight = 32

	// InstructionSize is the size of one instruction in bytes.
	InstructionSize = 2
)

// Errors returned for core fatal conditions.
var (
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrInvalidKey        = errors.New("invalid key")
	ErrROMTooLarge       = errors.New("rom too large")
	ErrEmptyROM          = errors.New("rom is empty")
)

var fontSet = [KeyCount * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// State is the complete CHIP-8 machine state. It is owned by a single
// interpreter and not safe for concurrent use.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16

	Stack [StackDepth]uint16
	SP    uint8

	DelayTimer uint8
	SoundTimer uint8

	Gfx  Framebuffer
	Keys [KeyCount]bool

	// Draw is set whenever an instruction changes Gfx and cleared once the
	// host acknowledged the frame.
	Draw bool
}

// New returns an initialized machine state.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears all registers, memory, the stack and the framebuffer and
// copies the font into low memory.
func (s *State) Reset() {
	*s = State{
		PC: ProgramStart,
	}
	copy(s.Memory[FontStart:], fontSet[:])
}

// LoadROM copies the ROM image into program space starting at ProgramStart.
func (s *State) LoadROM(rom []byte) error {
	if len(rom) == 0 {
		return ErrEmptyROM
	}
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(s.Memory[ProgramStart:], rom)
	return nil
}

// Read returns the byte at the given address.
func (s *State) Read(address uint16) (byte, error) {
	if address > MaxAddress {
		return 0, fmt.Errorf("%w: read $%04X", ErrAddressOutOfRange, address)
	}
	return s.Memory[address], nil
}

// Write sets the byte at the given address.
func (s *State) Write(address uint16, value byte) error {
	if address > MaxAddress {
		return fmt.Errorf("%w: write $%04X", ErrAddressOutOfRange, address)
	}
	s.Memory[address] = value
	return nil
}

// ReadRange returns a slice of n bytes of memory starting at address.
// The slice aliases the machine memory.
func (s *State) ReadRange(address uint16, n int) ([]byte, error) {
	end := int(address) + n
	if end > MemorySize {
		return nil, fmt.Errorf("%w: range $%04X-$%04X", ErrAddressOutOfRange, address, end-1)
	}
	return s.Memory[address:end], nil
}

// Fetch returns the big endian instruction word at PC.
func (s *State) Fetch() (uint16, error) {
	if s.PC > MaxAddress-1 {
		return 0, fmt.Errorf("%w: fetch at $%04X", ErrAddressOutOfRange, s.PC)
	}
	return uint16(s.Memory[s.PC])<<8 | uint16(s.Memory[s.PC+1]), nil
}

// Push stores a return address on the stack.
func (s *State) Push(address uint16) error {
	if int(s.SP) >= StackDepth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, s.SP)
	}
	s.Stack[s.SP] = address
	s.SP++
	return nil
}

// Pop removes and returns the most recent return address from the stack.
func (s *State) Pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}
	s.SP--
	return s.Stack[s.SP], nil
}

// KeyPressed returns whether the given key is currently held down.
func (s *State) KeyPressed(key byte) (bool, error) {
	if int(key) >= KeyCount {
		return false, fmt.Errorf("%w: $%02X", ErrInvalidKey, key)
	}
	return s.Keys[key], nil
}

// SetFlag sets VF to 1 or 0. Instructions that also produce a data result
// call it after writing that result.
func (s *State) SetFlag(set bool) {
	if set {
		s.V[FlagRegister] = 1
	} else {
		s.V[FlagRegister] = 0
	}
}

// ClearScreen turns all pixels off and marks the frame as changed.
func (s *State) ClearScreen() {
	s.Gfx = Framebuffer{}
	s.Draw = true
}

// Snapshot returns a copy of the framebuffer.
func (s *State) Snapshot() Framebuffer {
	return s.Gfx
}

// FontAddress returns the address of the font glyph of the low nibble of digit.
func FontAddress(digit byte) uint16 {
	return FontStart + uint16(digit&0x0F)*FontGlyphSize
}
