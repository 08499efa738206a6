//go:build !headless

package frontend

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"
)

const statusBarHeight = 16

var ebitenKeys = [machine.KeyCount]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

// window is an ebiten game that runs one emulator frame per update.
type window struct {
	ctx    context.Context
	logger *log.Logger
	interp *interpreter.Interpreter
	runner *emulator.Runner
	scale  int

	image      *ebiten.Image
	pixels     []byte
	showStatus bool

	outsideWidth  int
	outsideHeight int

	err error
}

func runWindow(ctx context.Context, logger *log.Logger, interp *interpreter.Interpreter, opts Options) error {
	w := &window{
		ctx:    ctx,
		logger: logger,
		interp: interp,
		scale:  opts.Scale,
		pixels: make([]byte, machine.ScreenWidth*machine.ScreenHeight*4),
	}
	w.runner = emulator.NewRunner(logger, interp, emulator.Config{
		Display: w,
		Input:   w,
		Audio:   opts.Audio,
		Budget:  opts.Budget,
	})

	width, height := w.size()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("retrochip8")
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(emulator.FrameRate)

	err := ebiten.RunGame(w)
	w.runner.Silence()
	switch {
	case err != nil:
		return fmt.Errorf("running window: %w", err)
	case w.err != nil:
		return w.err
	default:
		return ctx.Err()
	}
}

func (w *window) size() (int, int) {
	return machine.ScreenWidth * w.scale, machine.ScreenHeight * w.scale
}

// Update implements ebiten.Game.
func (w *window) Update() error {
	if w.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.logger.Debug("Quit requested")
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		w.showStatus = !w.showStatus
	}

	if err := w.runner.Frame(); err != nil {
		w.err = err
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(machine.ScreenWidth, machine.ScreenHeight)
	}
	w.image.WritePixels(w.pixels)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.image, opts)

	if w.showStatus {
		w.drawStatusBar(screen)
	}
}

func (w *window) drawStatusBar(screen *ebiten.Image) {
	bounds := screen.Bounds()
	if statusBarHeight >= bounds.Dy() {
		return
	}
	y := bounds.Dy() - statusBarHeight

	bar := screen.SubImage(image.Rect(0, y, bounds.Dx(), bounds.Dy())).(*ebiten.Image)
	bar.Fill(color.RGBA{0, 0, 0, 200})
	text.Draw(screen, statusLine(w.interp), basicfont.Face7x13, 4, bounds.Dy()-4, color.RGBA{0, 220, 90, 255})
}

// Layout implements ebiten.Game.
func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != w.outsideWidth || outsideHeight != w.outsideHeight {
		w.outsideWidth, w.outsideHeight = outsideWidth, outsideHeight
		w.logger.Debug("Window resized",
			log.Int("width", outsideWidth),
			log.Int("height", outsideHeight))
	}
	return w.size()
}

// Present implements emulator.Display.
func (w *window) Present(fb machine.Framebuffer) error {
	fillRGBA(w.pixels, &fb)
	return nil
}

// Keys implements emulator.Input.
func (w *window) Keys() [machine.KeyCount]bool {
	var keys [machine.KeyCount]bool
	for i, key := range ebitenKeys {
		keys[keypadKeys[i]] = ebiten.IsKeyPressed(key)
	}
	return keys
}
