package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/machine"
)

const (
	subNaming  = "sub_%03X"
	jumpNaming = "jump_%03X"
	dataNaming = "data_%03X"
)

// processJumpDestinations names all referenced addresses.
func (dis *Disasm) processJumpDestinations() {
	destinations := make([]uint16, 0, len(dis.branchDestinations))
	for dest := range dis.branchDestinations {
		destinations = append(destinations, dest)
	}
	slices.Sort(destinations)

	for _, address := range destinations {
		off := dis.offsetInfo(address)

		// a data reference into the operand of an instruction
		if off.typ == codeOperand {
			dis.handleJumpIntoInstruction(address)
			off.typ = dataOffset
			off.data = dis.rom[address-machine.ProgramStart : address-machine.ProgramStart+1]
		}

		if off.label != "" {
			continue
		}
		switch {
		case off.callTarget:
			off.label = fmt.Sprintf(subNaming, address)
		case off.jumpTarget:
			off.label = fmt.Sprintf(jumpNaming, address)
		default:
			off.label = fmt.Sprintf(dataNaming, address)
		}
	}
}

// handleJumpIntoInstruction converts the instruction that has a referenced
// address as its operand byte into data.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	owner := dis.offsetInfo(address - 1)
	owner.comment = "branch into instruction detected: " + owner.code
	owner.code = ""
	owner.hasRef = false
	owner.typ = dataOffset
	owner.data = owner.data[:1]

	operand := dis.offsetInfo(address)
	operand.typ = unknownOffset
}

// codeText returns the instruction text with referenced addresses replaced
// by their labels.
func (dis *Disasm) codeText(off *offset) string {
	if off.hasRef {
		if label := dis.offsetInfo(off.ref).label; label != "" {
			return off.name + " " + off.refPrefix + label
		}
	}
	return off.code
}
