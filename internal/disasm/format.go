package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// identify returns the instruction of the opcode table that matches the word.
func identify(word uint16) (*chip8.Instruction, bool) {
	opcodes := chip8.Opcodes[int(word>>12)]
	for _, op := range opcodes {
		if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
			return op.Instruction, true
		}
	}
	return nil, false
}

// Format returns the assembly text of an instruction word, for example
// "drw V2, V3, $5". The second return value is false for words that are not
// known instructions.
func Format(word uint16) (string, bool) {
	ins, ok := identify(word)
	decoded := instruction.Decode(word)
	if !ok || decoded.Op == instruction.OpUnknown || decoded.Op == instruction.OpSys {
		return "", false
	}
	if params := formatParams(ins.Name, decoded); params != "" {
		return ins.Name + " " + params, true
	}
	return ins.Name, true
}

// formatParams returns the operand text of an instruction.
func formatParams(name string, ins instruction.Instruction) string {
	switch name {
	case chip8.JpInst.Name:
		if ins.Op == instruction.OpJpV0 {
			return fmt.Sprintf("V0, $%03X", ins.NNN)
		}
		return fmt.Sprintf("$%03X", ins.NNN)
	case chip8.CallInst.Name:
		return fmt.Sprintf("$%03X", ins.NNN)
	case chip8.SeInst.Name, chip8.SneInst.Name:
		return formatCompare(ins)
	case chip8.LdInst.Name:
		return formatLoad(ins)
	case chip8.AddInst.Name:
		return formatAdd(ins)
	case chip8.OrInst.Name, chip8.AndInst.Name, chip8.XorInst.Name, chip8.SubInst.Name, chip8.SubnInst.Name:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case chip8.ShrInst.Name, chip8.ShlInst.Name, chip8.SkpInst.Name, chip8.SknpInst.Name:
		return fmt.Sprintf("V%X", ins.X)
	case chip8.RndInst.Name:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case chip8.DrwInst.Name:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	}
	return ""
}

func formatCompare(ins instruction.Instruction) string {
	switch ins.Op {
	case instruction.OpSeVxByte, instruction.OpSneVxByte:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case instruction.OpSeVxVy, instruction.OpSneVxVy:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	}
	return ""
}

func formatLoad(ins instruction.Instruction) string {
	switch ins.Op {
	case instruction.OpLdVxByte:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case instruction.OpLdVxVy:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case instruction.OpLdI:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case instruction.OpLdVxDT:
		return fmt.Sprintf("V%X, DT", ins.X)
	case instruction.OpLdVxK:
		return fmt.Sprintf("V%X, K", ins.X)
	case instruction.OpLdDTVx:
		return fmt.Sprintf("DT, V%X", ins.X)
	case instruction.OpLdSTVx:
		return fmt.Sprintf("ST, V%X", ins.X)
	case instruction.OpLdFVx:
		return fmt.Sprintf("F, V%X", ins.X)
	case instruction.OpLdBVx:
		return fmt.Sprintf("B, V%X", ins.X)
	case instruction.OpLdIVx:
		return fmt.Sprintf("[I], V%X", ins.X)
	case instruction.OpLdVxI:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}

func formatAdd(ins instruction.Instruction) string {
	switch ins.Op {
	case instruction.OpAddVxByte:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case instruction.OpAddVxVy:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case instruction.OpAddIVx:
		return fmt.Sprintf("I, V%X", ins.X)
	}
	return ""
}
