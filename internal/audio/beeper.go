//go:build !headless

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
	"github.com/retroenv/retrogolib/log"
)

// Beeper plays a square wave tone through the default audio device.
type Beeper struct {
	logger *log.Logger
	wave   *squareWave
	player *oto.Player
}

// NewBeeper opens the audio device and starts a silent player.
func NewBeeper(logger *log.Logger) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	wave := newSquareWave(Frequency, SampleRate, Volume)
	player := ctx.NewPlayer(wave)
	player.Play()

	logger.Debug("Audio initialized",
		log.Int("sample_rate", SampleRate),
		log.Int("frequency", Frequency))

	return &Beeper{
		logger: logger,
		wave:   wave,
		player: player,
	}, nil
}

// SetTone switches the tone on or off without restarting playback.
func (b *Beeper) SetTone(on bool) {
	b.wave.SetOn(on)
}

// Close stops playback.
func (b *Beeper) Close() error {
	b.wave.SetOn(false)
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
