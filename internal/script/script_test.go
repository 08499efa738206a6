package script

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newScript(t *testing.T, rom []byte, budget uint64) *Script {
	t.Helper()

	logger := log.NewTestLogger(t)
	interp := interpreter.New(logger, interpreter.Options{Speed: interpreter.DefaultSpeed, Seed: 1})
	assert.NoError(t, interp.Load(rom))
	return New(logger, interp, budget, 2)
}

func exec(t *testing.T, s *Script, source string) error {
	t.Helper()
	return s.Exec(context.Background(), "test.lua", strings.NewReader(source))
}

func TestScriptRegisters(t *testing.T) {
	rom := []byte{
		0x60, 0x2A, // ld V0, $2A
		0xA3, 0x00, // ld I, $300
		0x12, 0x04, // jp $204
	}
	s := newScript(t, rom, 0)

	err := exec(t, s, `
step(2)
assert(reg(0) == 0x2A, "V0")
assert(index() == 0x300, "I")
assert(pc() == 0x204, "PC")
assert(cycles() == 2, "cycles")
assert(status() == "running", "status")
assert(peek(0x200) == 0x60, "peek")
`)
	assert.NoError(t, err)
}

func TestScriptKeyWait(t *testing.T) {
	rom := []byte{
		0xF3, 0x0A, // ld V3, K
		0x12, 0x02, // jp $202
	}
	s := newScript(t, rom, 0)

	err := exec(t, s, `
frame()
assert(status() == "awaiting key", "waiting")
press(7)
step()
release(7)
assert(reg(3) == 7, "key stored")
assert(pc() == 0x202, "resumed")
`)
	assert.NoError(t, err)
}

func TestScriptPixelAndTimers(t *testing.T) {
	rom := []byte{
		0x60, 0x00, // ld V0, $00
		0xF0, 0x29, // ld F, V0
		0xD0, 0x05, // drw V0, V0, $5
		0x61, 0x3C, // ld V1, $3C
		0xF1, 0x15, // ld DT, V1
		0xF1, 0x18, // ld ST, V1
		0x12, 0x0C, // jp $20C
	}
	s := newScript(t, rom, 0)

	err := exec(t, s, `
step(6)
assert(pixel(0, 0), "top left lit")
assert(not pixel(5, 0), "outside sprite")
assert(delay() == 0x3C, "delay")
assert(sound() == 0x3C, "sound")
frame(60)
assert(delay() == 0, "delay expired")
`)
	assert.NoError(t, err)
}

func TestScriptScreenshot(t *testing.T) {
	rom := []byte{0x12, 0x00}
	s := newScript(t, rom, 0)
	path := filepath.Join(t.TempDir(), "screen.png")

	err := exec(t, s, `screenshot("`+filepath.ToSlash(path)+`")`)
	assert.NoError(t, err)

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	cfg, err := png.DecodeConfig(f)
	assert.NoError(t, err)
	assert.Equal(t, machine.ScreenWidth*2, cfg.Width)
	assert.Equal(t, machine.ScreenHeight*2, cfg.Height)
}

func TestScriptBudget(t *testing.T) {
	s := newScript(t, []byte{0x12, 0x00}, 10)

	err := exec(t, s, `step(20)`)
	assert.True(t, errors.Is(err, emulator.ErrCycleBudget))
	assert.ErrorContains(t, err, "test.lua")
}

func TestScriptFault(t *testing.T) {
	s := newScript(t, []byte{0x00, 0xEE}, 0) // ret with empty stack

	err := exec(t, s, `frame()`)
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))

	var fault *interpreter.FaultError
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
}

func TestScriptErrors(t *testing.T) {
	s := newScript(t, []byte{0x12, 0x00}, 0)

	tests := []struct {
		name   string
		source string
	}{
		{"syntax", `step(`},
		{"runtime", `error("boom")`},
		{"invalid key", `press(16)`},
		{"invalid register", `reg(-1)`},
		{"invalid address", `peek(0x1000)`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := exec(t, s, test.source)
			assert.ErrorContains(t, err, "test.lua")
		})
	}
}

func TestScriptRunFile(t *testing.T) {
	s := newScript(t, []byte{0x12, 0x00}, 0)
	path := filepath.Join(t.TempDir(), "run.lua")
	assert.NoError(t, os.WriteFile(path, []byte(`frame(2) log("done")`), 0o600))

	assert.NoError(t, s.Run(context.Background(), path))

	err := s.Run(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	assert.ErrorContains(t, err, "missing.lua")
}

func TestScriptCancelled(t *testing.T) {
	s := newScript(t, []byte{0x12, 0x00}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Exec(ctx, "test.lua", strings.NewReader(`while true do step() end`))
	assert.True(t, errors.Is(err, context.Canceled))
}
