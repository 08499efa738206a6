//go:build headless

package audio

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// ErrUnavailable is returned by NewBeeper in headless builds.
var ErrUnavailable = errors.New("audio is not available in headless builds")

// Beeper is not functional in headless builds.
type Beeper struct {
	wave *squareWave
}

// NewBeeper always fails in headless builds.
func NewBeeper(_ *log.Logger) (*Beeper, error) {
	return nil, ErrUnavailable
}

// SetTone implements emulator.Audio.
func (b *Beeper) SetTone(on bool) {
	b.wave.SetOn(on)
}

// Close does nothing.
func (b *Beeper) Close() error {
	return nil
}
