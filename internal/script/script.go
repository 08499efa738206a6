// Package script drives the emulator from Lua automation scripts.
package script

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/screenshot"
	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// keypad is the input of a scripted run, keys are pressed and released by
// the script.
type keypad struct {
	keys [machine.KeyCount]bool
}

func (k *keypad) Keys() [machine.KeyCount]bool {
	return k.keys
}

// Script executes Lua scripts against a headless runner.
type Script struct {
	logger *log.Logger
	interp *interpreter.Interpreter
	runner *emulator.Runner
	keypad *keypad
	scale  int

	err error // emulator error that aborted the script
}

// New returns a script host for the interpreter. Budget limits the executed
// steps, scale is used for screenshots taken by the script.
func New(logger *log.Logger, interp *interpreter.Interpreter, budget uint64, scale int) *Script {
	k := &keypad{}
	return &Script{
		logger: logger,
		interp: interp,
		runner: emulator.NewRunner(logger, interp, emulator.Config{
			Input:  k,
			Budget: budget,
		}),
		keypad: k,
		scale:  scale,
	}
}

// Run executes the script file.
func (s *Script) Run(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening script %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return s.Exec(ctx, path, f)
}

// Exec executes a script read from r, name is used in error messages.
func (s *Script) Exec(ctx context.Context, name string, r io.Reader) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	s.register(L)
	s.err = nil

	fn, err := L.Load(r, name)
	if err != nil {
		return fmt.Errorf("loading script %s: %w", name, err)
	}

	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		switch {
		case s.err != nil:
			return fmt.Errorf("script %s: %w", name, s.err)
		case ctx.Err() != nil:
			return fmt.Errorf("script %s: %w", name, ctx.Err())
		default:
			return fmt.Errorf("script %s: %w", name, err)
		}
	}

	s.logger.Debug("Script finished",
		log.String("script", name),
		log.Uint64("cycles", s.interp.Cycles()),
		log.Uint64("frames", s.runner.Frames()))
	return nil
}

func (s *Script) register(L *lua.LState) {
	functions := map[string]lua.LGFunction{
		"frame":      s.frame,
		"step":       s.step,
		"press":      s.press,
		"release":    s.release,
		"reg":        s.reg,
		"pc":         s.pc,
		"index":      s.index,
		"delay":      s.delay,
		"sound":      s.sound,
		"pixel":      s.pixel,
		"peek":       s.peek,
		"status":     s.status,
		"cycles":     s.cycles,
		"log":        s.log,
		"screenshot": s.screenshot,
	}
	for name, fn := range functions {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// fail stores the emulator error and aborts the script.
func (s *Script) fail(L *lua.LState, err error) {
	s.err = err
	L.RaiseError("%s", err.Error())
}

// frame(n) runs n frames, 1 if omitted.
func (s *Script) frame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for range n {
		if err := s.runner.Frame(); err != nil {
			s.fail(L, err)
			return 0
		}
	}
	return 0
}

// step(n) executes n interpreter steps, 1 if omitted.
func (s *Script) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for range n {
		if err := s.runner.Step(); err != nil {
			s.fail(L, err)
			return 0
		}
	}
	return 0
}

func (s *Script) press(L *lua.LState) int {
	s.setKey(L, true)
	return 0
}

func (s *Script) release(L *lua.LState) int {
	s.setKey(L, false)
	return 0
}

func (s *Script) setKey(L *lua.LState, pressed bool) {
	key := L.CheckInt(1)
	if key < 0 || key >= machine.KeyCount {
		L.ArgError(1, fmt.Sprintf("key must be 0-15, got %d", key))
		return
	}
	s.keypad.keys[key] = pressed
	s.interp.SetKeys(s.keypad.keys)
}

func (s *Script) reg(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x >= machine.RegisterCount {
		L.ArgError(1, fmt.Sprintf("register must be 0-15, got %d", x))
		return 0
	}
	L.Push(lua.LNumber(s.interp.State().V[x]))
	return 1
}

func (s *Script) pc(L *lua.LState) int {
	L.Push(lua.LNumber(s.interp.State().PC))
	return 1
}

func (s *Script) index(L *lua.LState) int {
	L.Push(lua.LNumber(s.interp.State().I))
	return 1
}

func (s *Script) delay(L *lua.LState) int {
	L.Push(lua.LNumber(s.interp.DelayTimer()))
	return 1
}

func (s *Script) sound(L *lua.LState) int {
	L.Push(lua.LNumber(s.interp.SoundTimer()))
	return 1
}

// pixel(x, y) returns whether the pixel is lit, coordinates wrap.
func (s *Script) pixel(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	fb := s.interp.Frame()
	L.Push(lua.LBool(fb.Pixel(x, y)))
	return 1
}

func (s *Script) peek(L *lua.LState) int {
	address := L.CheckInt(1)
	if address < 0 || address >= machine.MemorySize {
		L.ArgError(1, fmt.Sprintf("address must be below $%03X, got %d", machine.MemorySize, address))
		return 0
	}
	L.Push(lua.LNumber(s.interp.State().Memory[address]))
	return 1
}

func (s *Script) status(L *lua.LState) int {
	L.Push(lua.LString(s.interp.Status().String()))
	return 1
}

func (s *Script) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(s.interp.Cycles()))
	return 1
}

func (s *Script) log(L *lua.LState) int {
	s.logger.Info(L.CheckString(1))
	return 0
}

func (s *Script) screenshot(L *lua.LState) int {
	path := L.CheckString(1)
	if err := screenshot.Save(path, s.interp.Frame(), s.scale); err != nil {
		s.fail(L, err)
		return 0
	}
	s.logger.Debug("Screenshot written", log.String("path", path))
	return 0
}
