// Package executor implements the semantics of the CHIP-8 instruction set.
package executor

import (
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrochip8/internal/machine"
)

// Quirks selects between historically diverging behaviors. The zero value
// is the common modern interpretation.
type Quirks struct {
	// ShiftUsesVY shifts VY into VX for 8XY6 and 8XYE like the COSMAC VIP
	// instead of shifting VX in place.
	ShiftUsesVY bool

	// LoadStoreIncrementsI leaves I pointing after the last register
	// accessed by FX55 and FX65.
	LoadStoreIncrementsI bool

	// LogicResetsVF clears VF after 8XY1, 8XY2 and 8XY3.
	LogicResetsVF bool
}

// Effect describes host visible side effects of an executed instruction.
type Effect struct {
	Draw     bool // the framebuffer changed
	AwaitKey bool // FX0A is waiting for a key, PC was not advanced
	Unknown  bool // the word did not decode to a supported instruction
}

// Executor applies decoded instructions to a machine state.
type Executor struct {
	quirks Quirks
	rng    *rand.Rand
}

// New returns an executor. The seed initializes the random number source
// used by CXNN.
func New(quirks Quirks, seed uint64) *Executor {
	return &Executor{
		quirks: quirks,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// Execute applies exactly one instruction to the state. PC is advanced past
// the instruction unless the instruction sets it. A returned error is a
// core fatal condition, the state may be partially modified.
func (e *Executor) Execute(s *machine.State, ins instruction.Instruction) (Effect, error) {
	var effect Effect
	next := s.PC + machine.InstructionSize

	switch ins.Op {
	case instruction.OpCls:
		s.ClearScreen()
		effect.Draw = true

	case instruction.OpRet:
		address, err := s.Pop()
		if err != nil {
			return effect, err
		}
		next = address

	case instruction.OpJp:
		next = ins.NNN

	case instruction.OpCall:
		if err := s.Push(next); err != nil {
			return effect, err
		}
		next = ins.NNN

	case instruction.OpSeVxByte:
		if s.V[ins.X] == ins.NN {
			next += machine.InstructionSize
		}

	case instruction.OpSneVxByte:
		if s.V[ins.X] != ins.NN {
			next += machine.InstructionSize
		}

	case instruction.OpSeVxVy:
		if s.V[ins.X] == s.V[ins.Y] {
			next += machine.InstructionSize
		}

	case instruction.OpSneVxVy:
		if s.V[ins.X] != s.V[ins.Y] {
			next += machine.InstructionSize
		}

	case instruction.OpLdVxByte:
		s.V[ins.X] = ins.NN

	case instruction.OpAddVxByte:
		s.V[ins.X] += ins.NN

	case instruction.OpLdVxVy, instruction.OpOr, instruction.OpAnd, instruction.OpXor,
		instruction.OpAddVxVy, instruction.OpSub, instruction.OpShr, instruction.OpSubn, instruction.OpShl:
		e.alu(s, ins)

	case instruction.OpLdI:
		s.I = ins.NNN

	case instruction.OpJpV0:
		next = ins.NNN + uint16(s.V[0])

	case instruction.OpRnd:
		s.V[ins.X] = byte(e.rng.Uint32()) & ins.NN

	case instruction.OpDrw:
		if err := draw(s, ins); err != nil {
			return effect, err
		}
		effect.Draw = true

	case instruction.OpSkp, instruction.OpSknp:
		pressed, err := s.KeyPressed(s.V[ins.X])
		if err != nil {
			return effect, err
		}
		if pressed == (ins.Op == instruction.OpSkp) {
			next += machine.InstructionSize
		}

	case instruction.OpLdVxDT:
		s.V[ins.X] = s.DelayTimer

	case instruction.OpLdVxK:
		effect.AwaitKey = true
		return effect, nil

	case instruction.OpLdDTVx:
		s.DelayTimer = s.V[ins.X]

	case instruction.OpLdSTVx:
		s.SoundTimer = s.V[ins.X]

	case instruction.OpAddIVx:
		s.I = (s.I + uint16(s.V[ins.X])) & machine.MaxAddress

	case instruction.OpLdFVx:
		s.I = machine.FontAddress(s.V[ins.X])

	case instruction.OpLdBVx:
		if err := storeBCD(s, s.V[ins.X]); err != nil {
			return effect, err
		}

	case instruction.OpLdIVx, instruction.OpLdVxI:
		if err := e.transferRegisters(s, ins); err != nil {
			return effect, err
		}

	case instruction.OpSys, instruction.OpUnknown:
		effect.Unknown = true

	default:
		return effect, fmt.Errorf("instruction %s has no implementation", ins.Op)
	}

	s.PC = next
	return effect, nil
}

// alu executes the 8XYN register operations. VF is written after VX so that
// the flag survives when X is F.
func (e *Executor) alu(s *machine.State, ins instruction.Instruction) {
	x, y := s.V[ins.X], s.V[ins.Y]

	switch ins.Op {
	case instruction.OpLdVxVy:
		s.V[ins.X] = y

	case instruction.OpOr:
		s.V[ins.X] = x | y
		e.resetLogicFlag(s)

	case instruction.OpAnd:
		s.V[ins.X] = x & y
		e.resetLogicFlag(s)

	case instruction.OpXor:
		s.V[ins.X] = x ^ y
		e.resetLogicFlag(s)

	case instruction.OpAddVxVy:
		sum := uint16(x) + uint16(y)
		s.V[ins.X] = byte(sum)
		s.SetFlag(sum > 0xFF)

	case instruction.OpSub:
		s.V[ins.X] = x - y
		s.SetFlag(x >= y)

	case instruction.OpSubn:
		s.V[ins.X] = y - x
		s.SetFlag(y >= x)

	case instruction.OpShr:
		if e.quirks.ShiftUsesVY {
			x = y
		}
		s.V[ins.X] = x >> 1
		s.SetFlag(x&0x01 != 0)

	case instruction.OpShl:
		if e.quirks.ShiftUsesVY {
			x = y
		}
		s.V[ins.X] = x << 1
		s.SetFlag(x&0x80 != 0)
	}
}

func (e *Executor) resetLogicFlag(s *machine.State) {
	if e.quirks.LogicResetsVF {
		s.SetFlag(false)
	}
}

// draw XORs an 8 pixel wide sprite of N rows read from memory at I onto the
// framebuffer. The start position wraps, and so do sprite pixels crossing
// the screen edge. VF reports whether a lit pixel was erased.
func draw(s *machine.State, ins instruction.Instruction) error {
	sprite, err := s.ReadRange(s.I, int(ins.N))
	if err != nil {
		return err
	}

	originX := int(s.V[ins.X]) % machine.ScreenWidth
	originY := int(s.V[ins.Y]) % machine.ScreenHeight

	var collision bool
	for row, bits := range sprite {
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if s.Gfx.Toggle(originX+col, originY+row) {
				collision = true
			}
		}
	}

	s.Draw = true
	s.SetFlag(collision)
	return nil
}

// storeBCD writes the hundreds, tens and ones digit of value to I, I+1, I+2.
func storeBCD(s *machine.State, value byte) error {
	digits, err := s.ReadRange(s.I, 3)
	if err != nil {
		return err
	}
	digits[0] = value / 100
	digits[1] = value / 10 % 10
	digits[2] = value % 10
	return nil
}

// transferRegisters implements FX55 and FX65, copying V0..VX to or from
// memory starting at I.
func (e *Executor) transferRegisters(s *machine.State, ins instruction.Instruction) error {
	count := int(ins.X) + 1
	mem, err := s.ReadRange(s.I, count)
	if err != nil {
		return err
	}

	if ins.Op == instruction.OpLdIVx {
		copy(mem, s.V[:count])
	} else {
		copy(s.V[:count], mem)
	}

	if e.quirks.LoadStoreIncrementsI {
		s.I = (s.I + uint16(count)) & machine.MaxAddress
	}
	return nil
}
