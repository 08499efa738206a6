package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = args
}

func TestParseFlags(t *testing.T) {
	setArgs(t, "prog", "-speed", "1000", "-frontend", "Terminal", "-cycles", "500",
		"-seed", "42", "-quirk-shift", "-trace", "pong.ch8")

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "pong.ch8", opts.Input)
	assert.Equal(t, 1000, opts.Speed)
	assert.Equal(t, frontend.Terminal, opts.Frontend)
	assert.Equal(t, uint64(500), opts.Cycles)
	assert.Equal(t, uint64(42), opts.Seed)
	assert.True(t, opts.QuirkFlags.Shift)
	assert.False(t, opts.QuirkFlags.LoadStore)
	assert.True(t, opts.Debug)
}

func TestParseFlagsDefaults(t *testing.T) {
	setArgs(t, "prog", "pong.ch8")

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, frontend.Window, opts.Frontend)
	assert.Equal(t, interpreter.DefaultSpeed, opts.Speed)
	assert.Equal(t, 10, opts.Scale)
	assert.False(t, opts.Debug)
}

func TestParseFlagsScriptForcesHeadless(t *testing.T) {
	setArgs(t, "prog", "-frontend", "window", "-script", "test.lua", "pong.ch8")

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, frontend.Headless, opts.Frontend)
	assert.Equal(t, "test.lua", opts.Script)
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"missing file", []string{"prog"}, true},
		{"flag after file", []string{"prog", "pong.ch8", "-debug"}, true},
		{"unknown frontend", []string{"prog", "-frontend", "sdl", "pong.ch8"}, false},
		{"speed too low", []string{"prog", "-speed", "1", "pong.ch8"}, false},
		{"speed too high", []string{"prog", "-speed", "1000000", "pong.ch8"}, false},
		{"invalid scale", []string{"prog", "-scale", "0", "pong.ch8"}, false},
		{"scale too high", []string{"prog", "-scale", "41", "pong.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			_, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}

func TestParseDisasmFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Disassembler
	}{
		{
			name: "default flags",
			args: []string{"prog", "test.ch8"},
			want: options.Disassembler{HexComments: true, OffsetComments: true},
		},
		{
			name: "nohexcomments flag",
			args: []string{"prog", "-nohexcomments", "test.ch8"},
			want: options.Disassembler{OffsetComments: true},
		},
		{
			name: "nooffsets flag",
			args: []string{"prog", "-nooffsets", "test.ch8"},
			want: options.Disassembler{HexComments: true},
		},
		{
			name: "z flag",
			args: []string{"prog", "-z", "test.ch8"},
			want: options.Disassembler{HexComments: true, OffsetComments: true, ZeroBytes: true},
		},
		{
			name: "all disasm flags",
			args: []string{"prog", "-nohexcomments", "-nooffsets", "-z", "test.ch8"},
			want: options.Disassembler{ZeroBytes: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			opts, got, err := ParseDisasmFlags()
			assert.NoError(t, err)
			assert.Equal(t, "test.ch8", opts.Input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDisasmFlagsOutput(t *testing.T) {
	setArgs(t, "prog", "-o", "out.asm", "-q", "test.ch8")

	opts, _, err := ParseDisasmFlags()
	assert.NoError(t, err)
	assert.Equal(t, "out.asm", opts.Output)
	assert.True(t, opts.Quiet)
}

func TestParseDisasmFlagsMissingFile(t *testing.T) {
	setArgs(t, "prog", "-z")

	_, _, err := ParseDisasmFlags()
	var usageErr *UsageError
	assert.True(t, errors.As(err, &usageErr))
}
