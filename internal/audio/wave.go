// Package audio produces the CHIP-8 beep.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// Tone parameters of the beep.
const (
	SampleRate = 44100
	Frequency  = 440
	Volume     = 0.2
)

const bytesPerSample = 4 // mono float32

// squareWave is an endless float32 little endian square wave that outputs
// silence while switched off. Read is called from the audio goroutine,
// the switch may be flipped from any goroutine.
type squareWave struct {
	on     atomic.Bool
	phase  float64
	step   float64
	volume float32
}

func newSquareWave(frequency, sampleRate int, volume float32) *squareWave {
	return &squareWave{
		step:   float64(frequency) / float64(sampleRate),
		volume: volume,
	}
}

// SetOn switches the tone on or off.
func (w *squareWave) SetOn(on bool) {
	w.on.Store(on)
}

// Read implements io.Reader.
func (w *squareWave) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample * bytesPerSample
	on := w.on.Load()

	for i := 0; i < n; i += bytesPerSample {
		var sample float32
		if on {
			sample = w.volume
			if w.phase >= 0.5 {
				sample = -w.volume
			}
		}

		w.phase += w.step
		if w.phase >= 1 {
			w.phase--
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
	}
	return n, nil
}
