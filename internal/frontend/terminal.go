package frontend

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tm "github.com/buger/goterm"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// keyHoldTime is how long a key counts as pressed after its character was
// received. Terminals only report key presses and their auto repeat, never
// releases.
const keyHoldTime = 150 * time.Millisecond

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// terminal renders the framebuffer with half block characters and reads
// the keypad from raw standard input.
type terminal struct {
	logger *log.Logger
	interp *interpreter.Interpreter
	in     io.Reader
	now    func() time.Time

	mu      sync.Mutex
	pressed [machine.KeyCount]time.Time

	quit   atomic.Bool
	onQuit func()

	fd       int
	oldState *term.State
}

func newTerminal(logger *log.Logger, interp *interpreter.Interpreter, in io.Reader) *terminal {
	return &terminal{
		logger: logger,
		interp: interp,
		in:     in,
		now:    time.Now,
	}
}

func runTerminal(ctx context.Context, logger *log.Logger, interp *interpreter.Interpreter, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := newTerminal(logger, interp, os.Stdin)
	if err := t.start(cancel); err != nil {
		return err
	}
	defer t.stop()

	runner := emulator.NewRunner(logger, interp, emulator.Config{
		Display: t,
		Input:   t,
		Audio:   opts.Audio,
		Budget:  opts.Budget,
	})
	err := runner.Run(ctx)
	if t.quit.Load() {
		return nil
	}
	return err
}

// start switches standard input to raw mode if it is a terminal and starts
// reading keys. The reader goroutine ends with the input stream.
func (t *terminal) start(onQuit func()) error {
	t.onQuit = onQuit

	if file, ok := t.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		t.fd = int(file.Fd())
		oldState, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("setting terminal raw mode: %w", err)
		}
		t.oldState = oldState
	}

	go t.readInput()
	return nil
}

func (t *terminal) stop() {
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
}

func (t *terminal) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := t.in.Read(buf)
		for _, b := range buf[:n] {
			t.handleInput(b)
		}
		if err != nil {
			return
		}
	}
}

func (t *terminal) handleInput(b byte) {
	if b == keyEscape || b == keyCtrlC {
		if t.quit.CompareAndSwap(false, true) {
			t.logger.Debug("Quit requested")
			if t.onQuit != nil {
				t.onQuit()
			}
		}
		return
	}

	key, ok := keyForRune(rune(b))
	if !ok {
		return
	}
	t.mu.Lock()
	t.pressed[key] = t.now()
	t.mu.Unlock()
}

// Keys implements emulator.Input.
func (t *terminal) Keys() [machine.KeyCount]bool {
	now := t.now()
	var keys [machine.KeyCount]bool

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, pressed := range t.pressed {
		keys[key] = !pressed.IsZero() && now.Sub(pressed) < keyHoldTime
	}
	return keys
}

// Present implements emulator.Display.
func (t *terminal) Present(fb machine.Framebuffer) error {
	tm.Clear()
	tm.MoveCursor(1, 1)
	if _, err := tm.Print(renderTerminal(&fb, t.interp)); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	tm.Flush()
	return nil
}

// renderTerminal draws the framebuffer inside a border, two pixel rows per
// text line, with the register panel on the right side. Lines end in CRLF
// as the terminal is in raw mode.
func renderTerminal(fb *machine.Framebuffer, interp *interpreter.Interpreter) string {
	panel := registerPanel(interp)
	border := "+" + strings.Repeat("-", machine.ScreenWidth) + "+"

	var sb strings.Builder
	sb.WriteString(border + "\r\n")

	for row := range machine.ScreenHeight / 2 {
		sb.WriteByte('|')
		for x := range machine.ScreenWidth {
			sb.WriteRune(halfBlock(fb.Pixel(x, 2*row), fb.Pixel(x, 2*row+1)))
		}
		sb.WriteByte('|')
		if row < len(panel) {
			sb.WriteString("  " + panel[row])
		}
		sb.WriteString("\r\n")
	}

	sb.WriteString(border + "\r\n")
	return sb.String()
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

func registerPanel(interp *interpreter.Interpreter) []string {
	s := interp.State()
	lines := []string{
		fmt.Sprintf("PC $%03X   I $%03X", s.PC, s.I),
		fmt.Sprintf("SP %-2d     DT %02X  ST %02X", s.SP, s.DelayTimer, s.SoundTimer),
		"",
	}
	for x := 0; x < machine.RegisterCount; x += 2 {
		lines = append(lines, fmt.Sprintf("V%X %02X     V%X %02X", x, s.V[x], x+1, s.V[x+1]))
	}
	lines = append(lines,
		"",
		interp.Status().String(),
		fmt.Sprintf("cycles %d", interp.Cycles()),
		"ESC quits",
	)
	return lines
}
