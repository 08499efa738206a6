// Package frontend contains the platform glue that connects the emulator to
// a window, a terminal or nothing at all.
package frontend

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// Supported frontends.
const (
	Window   = "window"
	Terminal = "terminal"
	Headless = "headless"
)

// Names returns the names of all supported frontends.
func Names() []string {
	return []string{Window, Terminal, Headless}
}

// Options configures a frontend run.
type Options struct {
	Scale  int            // window pixel scale
	Audio  emulator.Audio // nil for no audio
	Budget uint64         // maximum number of steps, 0 for unlimited
}

// Run executes the loaded program with the named frontend until the user
// quits, the context is cancelled or the emulation fails.
func Run(ctx context.Context, logger *log.Logger, name string, interp *interpreter.Interpreter, opts Options) error {
	switch name {
	case Window:
		return runWindow(ctx, logger, interp, opts)
	case Terminal:
		return runTerminal(ctx, logger, interp, opts)
	case Headless:
		runner := emulator.NewRunner(logger, interp, emulator.Config{
			Audio:  opts.Audio,
			Budget: opts.Budget,
		})
		return runner.Run(ctx)
	default:
		return fmt.Errorf("unsupported frontend '%s', valid are: %s", name, strings.Join(Names(), ", "))
	}
}

// qwertyLayout lists the host keys of the 4x4 keypad row by row, keypadKeys
// the CHIP-8 keys at the same positions.
//
//	1 2 3 4      1 2 3 C
//	Q W E R      4 5 6 D
//	A S D F  ->  7 8 9 E
//	Z X C V      A 0 B F
const qwertyLayout = "1234qwerasdfzxcv"

var keypadKeys = [machine.KeyCount]byte{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// keyForRune returns the CHIP-8 key mapped to a host character.
func keyForRune(r rune) (byte, bool) {
	i := strings.IndexRune(qwertyLayout, unicode.ToLower(r))
	if i < 0 {
		return 0, false
	}
	return keypadKeys[i], true
}

// fillRGBA converts the framebuffer to RGBA pixels.
func fillRGBA(dst []byte, fb *machine.Framebuffer) {
	for i, pixel := range fb {
		var value byte
		if pixel != 0 {
			value = 0xFF
		}
		offset := i * 4
		dst[offset] = value
		dst[offset+1] = value
		dst[offset+2] = value
		dst[offset+3] = 0xFF
	}
}

// statusLine returns a one line summary of the interpreter state.
func statusLine(interp *interpreter.Interpreter) string {
	s := interp.State()
	return fmt.Sprintf("PC $%03X  I $%03X  DT %02X  ST %02X  %s",
		s.PC, s.I, s.DelayTimer, s.SoundTimer, interp.Status())
}
