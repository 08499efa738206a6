package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(t *testing.T, w *squareWave, count int) []float32 {
	t.Helper()
	buf := make([]byte, count*bytesPerSample)
	n, err := w.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)

	result := make([]float32, count)
	for i := range result {
		result[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*bytesPerSample:]))
	}
	return result
}

func TestSquareWaveSilentWhenOff(t *testing.T) {
	w := newSquareWave(Frequency, SampleRate, Volume)
	for _, s := range samples(t, w, 256) {
		assert.Equal(t, float32(0), s)
	}
}

func TestSquareWavePeriod(t *testing.T) {
	// 4 samples per period: two high, two low
	w := newSquareWave(1, 4, 0.5)
	w.SetOn(true)

	assert.Equal(t, []float32{0.5, 0.5, -0.5, -0.5, 0.5, 0.5, -0.5, -0.5}, samples(t, w, 8))

	w.SetOn(false)
	assert.Equal(t, []float32{0, 0}, samples(t, w, 2))
}

func TestSquareWavePartialSample(t *testing.T) {
	w := newSquareWave(Frequency, SampleRate, Volume)
	n, err := w.Read(make([]byte, 7))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
