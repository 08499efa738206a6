package emulator

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type recordingDisplay struct {
	frames []machine.Framebuffer
	err    error
}

func (d *recordingDisplay) Present(fb machine.Framebuffer) error {
	d.frames = append(d.frames, fb)
	return d.err
}

type fixedInput struct {
	keys [machine.KeyCount]bool
}

func (i *fixedInput) Keys() [machine.KeyCount]bool {
	return i.keys
}

type recordingAudio struct {
	tones []bool
}

func (a *recordingAudio) SetTone(on bool) {
	a.tones = append(a.tones, on)
}

func newTestRunner(t *testing.T, speed int, cfg Config, program ...uint16) *Runner {
	t.Helper()
	rom := make([]byte, 0, 2*len(program))
	for _, word := range program {
		rom = append(rom, byte(word>>8), byte(word))
	}
	logger := log.NewTestLogger(t)
	interp := interpreter.New(logger, interpreter.Options{Speed: speed})
	assert.NoError(t, interp.Load(rom))
	return NewRunner(logger, interp, cfg)
}

func TestFrameStepsPerSecond(t *testing.T) {
	speeds := []int{60, 100, 700, 1000, 12345}

	for _, speed := range speeds {
		r := newTestRunner(t, speed, Config{}, 0x1200)
		for range FrameRate {
			assert.NoError(t, r.Frame())
		}
		assert.Equal(t, uint64(speed), r.Interpreter().Cycles())
		assert.Equal(t, uint64(FrameRate), r.Frames())
	}
}

func TestFramePresentsOnlyChangedFrames(t *testing.T) {
	display := &recordingDisplay{}
	// CLS; JP $202
	r := newTestRunner(t, 60, Config{Display: display}, 0x00E0, 0x1202)

	assert.NoError(t, r.Frame())
	assert.Len(t, display.frames, 1)
	assert.False(t, r.Interpreter().FrameReady())

	assert.NoError(t, r.Frame())
	assert.NoError(t, r.Frame())
	assert.Len(t, display.frames, 1)
}

func TestFrameDisplayError(t *testing.T) {
	display := &recordingDisplay{err: ErrQuit}
	r := newTestRunner(t, 60, Config{Display: display}, 0x00E0, 0x1202)

	err := r.Frame()
	assert.True(t, errors.Is(err, ErrQuit))
	assert.True(t, r.Interpreter().FrameReady())
}

func TestFrameFeedsKeys(t *testing.T) {
	input := &fixedInput{}
	input.keys[0x7] = true
	// LD V0, $07; SKP V0; JP $204 (skipped); LD V1, $01
	r := newTestRunner(t, 240, Config{Input: input}, 0x6007, 0xE09E, 0x1204, 0x6101, 0x1208)

	assert.NoError(t, r.Frame())
	assert.Equal(t, byte(1), r.Interpreter().State().V[1])
}

func TestFrameTone(t *testing.T) {
	audio := &recordingAudio{}
	// LD V0, $02; LD ST, V0; JP $204
	r := newTestRunner(t, 60, Config{Audio: audio}, 0x6002, 0xF018, 0x1204)

	assert.NoError(t, r.Frame())
	assert.Empty(t, audio.tones)

	assert.NoError(t, r.Frame())
	assert.Equal(t, []bool{true}, audio.tones)

	assert.NoError(t, r.Frame())
	assert.Equal(t, []bool{true, false}, audio.tones)
}

func TestSilence(t *testing.T) {
	audio := &recordingAudio{}
	r := newTestRunner(t, 60, Config{Audio: audio}, 0x60FF, 0xF018, 0x1204)
	assert.NoError(t, r.Frame())
	assert.NoError(t, r.Frame())

	r.Silence()
	r.Silence()
	assert.Equal(t, []bool{true, false}, audio.tones)
}

func TestCycleBudget(t *testing.T) {
	r := newTestRunner(t, 700, Config{Budget: 10}, 0x1200)

	err := r.Frame()
	assert.True(t, errors.Is(err, ErrCycleBudget))
	assert.Equal(t, uint64(10), r.Interpreter().Cycles())
}

func TestFrameFault(t *testing.T) {
	r := newTestRunner(t, 60, Config{}, 0x00EE)

	err := r.Frame()
	var fault *interpreter.FaultError
	assert.True(t, errors.As(err, &fault))
	assert.True(t, errors.Is(r.Frame(), interpreter.ErrHalted))
}

func TestRunCancelled(t *testing.T) {
	r := newTestRunner(t, 60, Config{}, 0x1200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunQuit(t *testing.T) {
	display := &recordingDisplay{err: ErrQuit}
	r := newTestRunner(t, 60, Config{Display: display}, 0x00E0, 0x1202)

	assert.NoError(t, r.Run(context.Background()))
	assert.Len(t, display.frames, 1)
}

func TestRunBudget(t *testing.T) {
	r := newTestRunner(t, 1200, Config{Budget: 50}, 0x1200)

	err := r.Run(context.Background())
	assert.True(t, errors.Is(err, ErrCycleBudget))
	assert.Equal(t, uint64(2), r.Frames())
}
