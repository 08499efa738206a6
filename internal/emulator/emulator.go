// Package emulator connects an interpreter to the host: it paces execution
// in 60Hz frames, feeds key state, presents frames and drives the tone.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// FrameRate is the number of frames per second, matching the timer rate.
const FrameRate = interpreter.TimerFrequency

var (
	// ErrCycleBudget is returned when the configured instruction budget is used up.
	ErrCycleBudget = errors.New("cycle budget exceeded")

	// ErrQuit can be returned by a display to end the run loop without error.
	ErrQuit = errors.New("quit requested")
)

// Display presents a framebuffer to the user.
type Display interface {
	Present(fb machine.Framebuffer) error
}

// Input reports the current keypad state.
type Input interface {
	Keys() [machine.KeyCount]bool
}

// Audio plays the CHIP-8 tone.
type Audio interface {
	SetTone(on bool)
}

// NopDisplay discards all frames.
type NopDisplay struct{}

// Present implements Display.
func (NopDisplay) Present(machine.Framebuffer) error { return nil }

// NopInput reports no pressed keys.
type NopInput struct{}

// Keys implements Input.
func (NopInput) Keys() [machine.KeyCount]bool { return [machine.KeyCount]bool{} }

// NopAudio is a muted audio output.
type NopAudio struct{}

// SetTone implements Audio.
func (NopAudio) SetTone(bool) {}

// Config contains the host collaborators of a runner. Nil collaborators are
// replaced by their no-op variants.
type Config struct {
	Display Display
	Input   Input
	Audio   Audio

	// Budget is the maximum number of steps to run, 0 means unlimited.
	Budget uint64
}

// Runner drives an interpreter frame by frame.
type Runner struct {
	logger  *log.Logger
	interp  *interpreter.Interpreter
	display Display
	input   Input
	audio   Audio
	budget  uint64

	carry  int
	frames uint64
	tone   bool
}

// NewRunner returns a runner for the given interpreter.
func NewRunner(logger *log.Logger, interp *interpreter.Interpreter, cfg Config) *Runner {
	r := &Runner{
		logger:  logger,
		interp:  interp,
		display: cfg.Display,
		input:   cfg.Input,
		audio:   cfg.Audio,
		budget:  cfg.Budget,
	}
	if r.display == nil {
		r.display = NopDisplay{}
	}
	if r.input == nil {
		r.input = NopInput{}
	}
	if r.audio == nil {
		r.audio = NopAudio{}
	}
	return r
}

// Interpreter returns the driven interpreter.
func (r *Runner) Interpreter() *interpreter.Interpreter {
	return r.interp
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// Step executes a single interpreter step while enforcing the cycle budget.
func (r *Runner) Step() error {
	if r.budget > 0 && r.interp.Cycles() >= r.budget {
		return fmt.Errorf("%w: %d cycles", ErrCycleBudget, r.budget)
	}
	return r.interp.Step()
}

// Frame runs the steps of one 60Hz frame. The speed is spread over the frames
// of a second with the remainder carried, so that every 60 frames execute
// exactly speed steps.
func (r *Runner) Frame() error {
	r.interp.SetKeys(r.input.Keys())

	r.carry += r.interp.Speed()
	steps := r.carry / FrameRate
	r.carry %= FrameRate

	for range steps {
		if err := r.Step(); err != nil {
			return err
		}
	}

	if err := r.present(); err != nil {
		return err
	}
	r.updateTone()
	r.frames++
	return nil
}

func (r *Runner) present() error {
	if !r.interp.FrameReady() {
		return nil
	}
	if err := r.display.Present(r.interp.Frame()); err != nil {
		return err
	}
	r.interp.AcknowledgeFrame()
	return nil
}

func (r *Runner) updateTone() {
	sounding := r.interp.Sounding()
	if sounding == r.tone {
		return
	}
	r.tone = sounding
	r.audio.SetTone(sounding)
	r.logger.Debug("Tone changed", log.Uint8("sound_timer", r.interp.SoundTimer()))
}

// Silence switches the tone off, used when the emulation stops.
func (r *Runner) Silence() {
	if r.tone {
		r.tone = false
		r.audio.SetTone(false)
	}
}

// Run calls Frame at 60Hz until the context is cancelled, a display
// requests to quit or a frame fails.
func (r *Runner) Run(ctx context.Context) error {
	defer r.Silence()

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := r.Frame(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}
