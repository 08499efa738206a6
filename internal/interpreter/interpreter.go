// Package interpreter implements the CHIP-8 cycle driver: fetch, decode,
// execute, timer accounting and the host facing interface.
package interpreter

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/executor"
	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// Speed limits in instructions per second.
const (
	DefaultSpeed = 700
	MinSpeed     = 60
	MaxSpeed     = 100000

	// TimerFrequency is the rate in Hz at which the delay and sound timers decay.
	TimerFrequency = 60
)

// ErrHalted is returned by Step after a fatal error stopped the interpreter.
var ErrHalted = errors.New("interpreter halted")

// Status is the execution state of the interpreter.
type Status int

// Interpreter states.
const (
	StatusRunning Status = iota
	StatusAwaitingKey
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusAwaitingKey:
		return "awaiting key"
	case StatusHalted:
		return "halted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// FaultError is a fatal error that occurred while executing the instruction
// at PC.
type FaultError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fault at $%03X executing %04X: %v", e.PC, e.Opcode, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Options configures an interpreter.
type Options struct {
	Speed  int    // instructions per second, DefaultSpeed if zero
	Seed   uint64 // random number seed for CXNN
	Quirks executor.Quirks

	// Tracer is called before every instruction is executed.
	Tracer func(pc uint16, ins instruction.Instruction)

	// OnUnknown is called for every executed word that is not a supported
	// instruction.
	OnUnknown func(pc, opcode uint16)
}

// Interpreter owns a machine state and drives it one instruction at a time.
type Interpreter struct {
	logger *log.Logger
	opts   Options
	state  *machine.State
	exec   *executor.Executor

	rom    []byte
	status Status
	cycles uint64
	ticks  int

	waitRegister uint8
	waitHeld     [machine.KeyCount]bool
}

// New returns an interpreter with an initialized machine and no program.
func New(logger *log.Logger, opts Options) *Interpreter {
	switch {
	case opts.Speed == 0:
		opts.Speed = DefaultSpeed
	case opts.Speed < MinSpeed:
		opts.Speed = MinSpeed
	case opts.Speed > MaxSpeed:
		opts.Speed = MaxSpeed
	}

	return &Interpreter{
		logger: logger,
		opts:   opts,
		state:  machine.New(),
		exec:   executor.New(opts.Quirks, opts.Seed),
	}
}

// Load resets the machine and copies the ROM into zeroed program memory.
// A rejected ROM leaves the machine reset without a program.
func (i *Interpreter) Load(rom []byte) error {
	i.rom = i.rom[:0]
	i.Reset()
	if err := i.state.LoadROM(rom); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	i.rom = append(i.rom, rom...)
	return nil
}

// Reset re-initializes the machine and reloads the last loaded ROM.
func (i *Interpreter) Reset() {
	i.state.Reset()
	if len(i.rom) > 0 {
		// the image was validated when it was loaded
		_ = i.state.LoadROM(i.rom)
	}
	i.status = StatusRunning
	i.cycles = 0
	i.ticks = 0
	i.waitHeld = [machine.KeyCount]bool{}
}

// Step executes one instruction, or polls for a key while FX0A is waiting,
// and then accounts for the elapsed timer time.
func (i *Interpreter) Step() error {
	switch i.status {
	case StatusHalted:
		return ErrHalted

	case StatusAwaitingKey:
		i.pollKey()

	default:
		if err := i.execute(); err != nil {
			i.status = StatusHalted
			return err
		}
	}

	i.cycles++
	i.ticks += TimerFrequency
	if i.ticks >= i.opts.Speed {
		i.ticks -= i.opts.Speed
		i.DecayTimers()
	}
	return nil
}

func (i *Interpreter) execute() error {
	s := i.state
	pc := s.PC

	word, err := s.Fetch()
	if err != nil {
		return &FaultError{PC: pc, Err: err}
	}
	ins := instruction.Decode(word)

	if i.opts.Tracer != nil {
		i.opts.Tracer(pc, ins)
	}

	effect, err := i.exec.Execute(s, ins)
	if err != nil {
		return &FaultError{PC: pc, Opcode: word, Err: err}
	}

	switch {
	case effect.Unknown:
		i.logger.Warn("Unknown opcode",
			log.Hex("pc", pc),
			log.Hex("opcode", word))
		if i.opts.OnUnknown != nil {
			i.opts.OnUnknown(pc, word)
		}

	case effect.AwaitKey:
		i.status = StatusAwaitingKey
		i.waitRegister = ins.X
		i.waitHeld = s.Keys
	}
	return nil
}

// pollKey completes a pending FX0A once a key goes down that was not
// already held when the wait started.
func (i *Interpreter) pollKey() {
	s := i.state
	for key, pressed := range s.Keys {
		if !pressed {
			i.waitHeld[key] = false
			continue
		}
		if i.waitHeld[key] {
			continue
		}

		s.V[i.waitRegister] = byte(key)
		s.PC += machine.InstructionSize
		i.status = StatusRunning
		return
	}
}

// DecayTimers decrements the delay and sound timers if they are not zero.
func (i *Interpreter) DecayTimers() {
	if i.state.DelayTimer > 0 {
		i.state.DelayTimer--
	}
	if i.state.SoundTimer > 0 {
		i.state.SoundTimer--
	}
}

// SetKeys replaces the keypad state.
func (i *Interpreter) SetKeys(keys [machine.KeyCount]bool) {
	i.state.Keys = keys
}

// FrameReady returns whether the framebuffer changed since the last
// acknowledged frame.
func (i *Interpreter) FrameReady() bool {
	return i.state.Draw
}

// Frame returns a copy of the framebuffer.
func (i *Interpreter) Frame() machine.Framebuffer {
	return i.state.Snapshot()
}

// AcknowledgeFrame clears the draw flag after the host presented the frame.
func (i *Interpreter) AcknowledgeFrame() {
	i.state.Draw = false
}

// SoundTimer returns the current sound timer value.
func (i *Interpreter) SoundTimer() uint8 {
	return i.state.SoundTimer
}

// DelayTimer returns the current delay timer value.
func (i *Interpreter) DelayTimer() uint8 {
	return i.state.DelayTimer
}

// Sounding returns whether the tone should be audible.
func (i *Interpreter) Sounding() bool {
	return i.state.SoundTimer > 0
}

// Cycles returns the number of steps since the last reset.
func (i *Interpreter) Cycles() uint64 {
	return i.cycles
}

// Speed returns the configured instructions per second.
func (i *Interpreter) Speed() int {
	return i.opts.Speed
}

// Status returns the execution state.
func (i *Interpreter) Status() Status {
	return i.status
}

// State gives read access to the machine for debuggers and scripts.
func (i *Interpreter) State() *machine.State {
	return i.state
}
