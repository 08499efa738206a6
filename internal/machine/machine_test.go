package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	s := New()

	assert.Equal(t, uint16(ProgramStart), s.PC)
	assert.Equal(t, uint8(0), s.SP)
	assert.Equal(t, uint16(0), s.I)
	assert.Equal(t, fontSet[:], s.Memory[FontStart:FontStart+len(fontSet)])
	assert.Equal(t, 0, s.Gfx.Lit())
	assert.False(t, s.Draw)
}

func TestReset(t *testing.T) {
	s := New()
	s.V[3] = 9
	s.PC = 0x400
	s.Memory[0x300] = 0xAA
	s.Gfx[10] = 1
	s.Keys[2] = true

	s.Reset()

	assert.Equal(t, byte(0), s.V[3])
	assert.Equal(t, uint16(ProgramStart), s.PC)
	assert.Equal(t, byte(0), s.Memory[0x300])
	assert.Equal(t, byte(0), s.Gfx[10])
	assert.False(t, s.Keys[2])
	assert.Equal(t, byte(0xF0), s.Memory[FontStart])
}

func TestLoadROM(t *testing.T) {
	tests := []struct {
		name string
		rom  []byte
		err  error
	}{
		{"small rom", []byte{0x12, 0x00}, nil},
		{"maximum size", make([]byte, MaxROMSize), nil},
		{"too large", make([]byte, MaxROMSize+1), ErrROMTooLarge},
		{"empty", nil, ErrEmptyROM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.LoadROM(tt.rom)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.rom, s.Memory[ProgramStart:ProgramStart+len(tt.rom)])
		})
	}
}

func TestReadWriteBounds(t *testing.T) {
	s := New()

	assert.NoError(t, s.Write(MaxAddress, 0x42))
	b, err := s.Read(MaxAddress)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), b)

	err = s.Write(MemorySize, 1)
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	_, err = s.Read(0xFFFF)
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))

	_, err = s.ReadRange(0xFFE, 2)
	assert.NoError(t, err)
	_, err = s.ReadRange(0xFFE, 3)
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestFetch(t *testing.T) {
	s := New()
	s.Memory[ProgramStart] = 0xA2
	s.Memory[ProgramStart+1] = 0x2A

	word, err := s.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xA22A), word)

	s.PC = MaxAddress
	_, err = s.Fetch()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestStack(t *testing.T) {
	s := New()

	_, err := s.Pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	for i := range StackDepth {
		assert.NoError(t, s.Push(uint16(0x200+i*2)))
	}
	assert.Equal(t, uint8(StackDepth), s.SP)

	err = s.Push(0x300)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, uint8(StackDepth), s.SP)

	address, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200+(StackDepth-1)*2), address)
	assert.Equal(t, uint8(StackDepth-1), s.SP)
}

func TestKeyPressed(t *testing.T) {
	s := New()
	s.Keys[0xA] = true

	pressed, err := s.KeyPressed(0xA)
	assert.NoError(t, err)
	assert.True(t, pressed)

	pressed, err = s.KeyPressed(0x3)
	assert.NoError(t, err)
	assert.False(t, pressed)

	_, err = s.KeyPressed(0x10)
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestSetFlag(t *testing.T) {
	s := New()
	s.SetFlag(true)
	assert.Equal(t, byte(1), s.V[FlagRegister])
	s.SetFlag(false)
	assert.Equal(t, byte(0), s.V[FlagRegister])
}

func TestFontAddress(t *testing.T) {
	assert.Equal(t, uint16(0), FontAddress(0))
	assert.Equal(t, uint16(0x4B), FontAddress(0xF))
	assert.Equal(t, uint16(5), FontAddress(0x11))
}

func TestFramebuffer(t *testing.T) {
	var fb Framebuffer

	assert.False(t, fb.Toggle(0, 0))
	assert.True(t, fb.Pixel(0, 0))
	assert.True(t, fb.Pixel(ScreenWidth, ScreenHeight))
	assert.True(t, fb.Toggle(ScreenWidth, 0))
	assert.False(t, fb.Pixel(0, 0))

	fb.Toggle(-1, -1)
	assert.True(t, fb.Pixel(ScreenWidth-1, ScreenHeight-1))
	assert.Equal(t, 1, fb.Lit())
}
