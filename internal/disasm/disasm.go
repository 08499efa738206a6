// Package disasm implements a CHIP-8 disassembler that follows the execution
// flow of a program and writes it as retroasm compatible assembly.
package disasm

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

type offsetType uint8

const (
	unknownOffset offsetType = iota
	codeOffset               // first byte of an instruction
	codeOperand              // second byte of an instruction
	dataOffset
)

// offset contains the disassembly information of one ROM byte.
type offset struct {
	typ     offsetType
	data    []byte
	code    string
	comment string
	label   string

	// name, refPrefix and ref allow rewriting the operand of an instruction
	// that references a labeled address.
	name      string
	refPrefix string
	ref       uint16
	hasRef    bool

	callTarget bool
	jumpTarget bool
	dataTarget bool
}

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	rom     []byte
	offsets []offset

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
	branchDestinations  set.Set[uint16] // all addresses that are referenced by a label
}

// New creates a disassembler for the given ROM image.
func New(logger *log.Logger, rom []byte, options options.Disassembler) (*Disasm, error) {
	switch {
	case len(rom) == 0:
		return nil, machine.ErrEmptyROM
	case len(rom) > machine.MaxROMSize:
		return nil, fmt.Errorf("%w: %d bytes", machine.ErrROMTooLarge, len(rom))
	}

	dis := &Disasm{
		logger:              logger,
		options:             options,
		rom:                 rom,
		offsets:             make([]offset, len(rom)),
		offsetsToParseAdded: set.New[uint16](),
		branchDestinations:  set.New[uint16](),
	}

	dis.offsets[0].label = "Start"
	dis.addAddressToParse(machine.ProgramStart)
	return dis, nil
}

// Process disassembles the ROM and writes the assembly to w.
func (dis *Disasm) Process(ctx context.Context, w io.Writer) error {
	if err := dis.followExecutionFlow(ctx); err != nil {
		return err
	}

	dis.processData()
	dis.processJumpDestinations()

	if err := dis.write(w); err != nil {
		return fmt.Errorf("writing assembly: %w", err)
	}
	return nil
}

func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	var instructions int

	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		if dis.processOffset(address) {
			instructions++
		}
	}

	dis.logger.Debug("Execution flow traced",
		log.Int("instructions", instructions),
		log.Int("labels", len(dis.branchDestinations)))
	return nil
}

func (dis *Disasm) inROM(address uint16) bool {
	return address >= machine.ProgramStart && int(address-machine.ProgramStart) < len(dis.rom)
}

func (dis *Disasm) offsetInfo(address uint16) *offset {
	return &dis.offsets[address-machine.ProgramStart]
}

// addAddressToParse queues an address for code parsing once.
func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inROM(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// processOffset decodes the instruction at the address and queues its
// successors. It returns whether an instruction was decoded.
func (dis *Disasm) processOffset(address uint16) bool {
	index := int(address - machine.ProgramStart)
	off := &dis.offsets[index]

	switch off.typ {
	case codeOffset, dataOffset:
		return false
	case codeOperand:
		dis.handleJumpIntoInstruction(address)
	}

	// a single trailing byte or an instruction overlapping the next one
	if index+1 >= len(dis.rom) || dis.offsets[index+1].typ == codeOffset {
		off.typ = dataOffset
		return false
	}

	word := uint16(dis.rom[index])<<8 | uint16(dis.rom[index+1])
	chipIns, ok := identify(word)
	ins := instruction.Decode(word)
	if !ok || ins.Op == instruction.OpUnknown || ins.Op == instruction.OpSys {
		// consider an unknown instruction as start of data
		off.typ = dataOffset
		return false
	}

	off.typ = codeOffset
	off.data = dis.rom[index : index+2]
	off.name = chipIns.Name
	off.code = chipIns.Name
	if params := formatParams(chipIns.Name, ins); params != "" {
		off.code += " " + params
	}
	dis.offsets[index+1].typ = codeOperand

	dis.handleControlFlow(address, off, ins)
	return true
}

// handleControlFlow queues the successors of an instruction and records
// the addresses that it references.
func (dis *Disasm) handleControlFlow(address uint16, off *offset, ins instruction.Instruction) {
	next := address + machine.InstructionSize

	switch {
	case ins.Op.IsJump():
		// the target of JP V0, addr is only known at runtime
		if ins.Op == instruction.OpJp && dis.addBranch(ins.NNN, false) {
			off.setRef("", ins.NNN)
		}

	case ins.Op.IsCall():
		if dis.addBranch(ins.NNN, true) {
			off.setRef("", ins.NNN)
		}
		dis.addAddressToParse(next)

	case ins.Op.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + machine.InstructionSize)

	case ins.Op == instruction.OpLdI:
		if dis.addDataReference(ins.NNN) {
			off.setRef("I, ", ins.NNN)
		}
		dis.addAddressToParse(next)

	case ins.Op.IsReturn():

	default:
		dis.addAddressToParse(next)
	}
}

func (o *offset) setRef(prefix string, address uint16) {
	o.refPrefix = prefix
	o.ref = address
	o.hasRef = true
}

// addBranch marks a jump or call destination and queues it for parsing.
func (dis *Disasm) addBranch(target uint16, call bool) bool {
	if !dis.inROM(target) {
		return false
	}

	off := dis.offsetInfo(target)
	if call {
		off.callTarget = true
	} else {
		off.jumpTarget = true
	}
	dis.branchDestinations.Add(target)
	dis.addAddressToParse(target)
	return true
}

// addDataReference marks the target of LD I, addr as data unless it is
// already known to be code.
func (dis *Disasm) addDataReference(target uint16) bool {
	if !dis.inROM(target) {
		return false
	}

	off := dis.offsetInfo(target)
	off.dataTarget = true
	if off.typ == unknownOffset {
		off.typ = dataOffset
	}
	dis.branchDestinations.Add(target)
	return true
}

// processData converts all bytes that are not part of an instruction to
// single byte data offsets.
func (dis *Disasm) processData() {
	for i := range dis.offsets {
		off := &dis.offsets[i]
		switch off.typ {
		case codeOffset, codeOperand:
			continue
		}
		off.typ = dataOffset
		off.data = dis.rom[i : i+1]
	}
}
