// Package instruction contains the CHIP-8 instruction set and the opcode decoder.
package instruction

import "fmt"

// Op identifies one CHIP-8 instruction. The set is closed, every word that
// does not match a known encoding decodes to OpUnknown.
type Op uint8

// CHIP-8 instructions, named after their canonical mnemonic and operands.
const (
	OpUnknown Op = iota
	OpSys        // 0NNN
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeVxByte   // 3XNN
	OpSneVxByte  // 4XNN
	OpSeVxVy     // 5XY0
	OpLdVxByte   // 6XNN
	OpAddVxByte  // 7XNN
	OpLdVxVy     // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddVxVy    // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneVxVy    // 9XY0
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXNN
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDT     // FX07
	OpLdVxK      // FX0A
	OpLdDTVx     // FX15
	OpLdSTVx     // FX18
	OpAddIVx     // FX1E
	OpLdFVx      // FX29
	OpLdBVx      // FX33
	OpLdIVx      // FX55
	OpLdVxI      // FX65

	opCount
)

var opNames = [opCount]string{
	OpUnknown:   "UNKNOWN",
	OpSys:       "SYS addr",
	OpCls:       "CLS",
	OpRet:       "RET",
	OpJp:        "JP addr",
	OpCall:      "CALL addr",
	OpSeVxByte:  "SE Vx, byte",
	OpSneVxByte: "SNE Vx, byte",
	OpSeVxVy:    "SE Vx, Vy",
	OpLdVxByte:  "LD Vx, byte",
	OpAddVxByte: "ADD Vx, byte",
	OpLdVxVy:    "LD Vx, Vy",
	OpOr:        "OR Vx, Vy",
	OpAnd:       "AND Vx, Vy",
	OpXor:       "XOR Vx, Vy",
	OpAddVxVy:   "ADD Vx, Vy",
	OpSub:       "SUB Vx, Vy",
	OpShr:       "SHR Vx",
	OpSubn:      "SUBN Vx, Vy",
	OpShl:       "SHL Vx",
	OpSneVxVy:   "SNE Vx, Vy",
	OpLdI:       "LD I, addr",
	OpJpV0:      "JP V0, addr",
	OpRnd:       "RND Vx, byte",
	OpDrw:       "DRW Vx, Vy, nibble",
	OpSkp:       "SKP Vx",
	OpSknp:      "SKNP Vx",
	OpLdVxDT:    "LD Vx, DT",
	OpLdVxK:     "LD Vx, K",
	OpLdDTVx:    "LD DT, Vx",
	OpLdSTVx:    "LD ST, Vx",
	OpAddIVx:    "ADD I, Vx",
	OpLdFVx:     "LD F, Vx",
	OpLdBVx:     "LD B, Vx",
	OpLdIVx:     "LD [I], Vx",
	OpLdVxI:     "LD Vx, [I]",
}

// String returns the instruction form, for example "ADD Vx, Vy".
func (o Op) String() string {
	if o >= opCount {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return opNames[o]
}

// IsJump returns whether the instruction unconditionally transfers control.
func (o Op) IsJump() bool {
	return o == OpJp || o == OpJpV0
}

// IsCall returns whether the instruction calls a subroutine.
func (o Op) IsCall() bool {
	return o == OpCall
}

// IsReturn returns whether the instruction returns from a subroutine.
func (o Op) IsReturn() bool {
	return o == OpRet
}

// IsSkip returns whether the instruction conditionally skips the next one.
func (o Op) IsSkip() bool {
	switch o {
	case OpSeVxByte, OpSneVxByte, OpSeVxVy, OpSneVxVy, OpSkp, OpSknp:
		return true
	default:
		return false
	}
}

// Instruction is a decoded instruction word with all operand fields extracted.
// Fields that the instruction does not use are still filled from the word.
type Instruction struct {
	Op     Op
	Opcode uint16 // raw instruction word

	X   uint8  // register index, bits 8-11
	Y   uint8  // register index, bits 4-7
	N   uint8  // 4 bit immediate
	NN  uint8  // 8 bit immediate
	NNN uint16 // 12 bit address
}

// Family returns the high nibble of the instruction word.
func (i Instruction) Family() uint8 {
	return uint8(i.Opcode >> 12)
}

// String returns the raw word and instruction form.
func (i Instruction) String() string {
	return fmt.Sprintf("%04X %s", i.Opcode, i.Op)
}
