package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestRunCycleBudgetIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o600))

	var opts options.Program
	opts.Input = path
	opts.Frontend = frontend.Headless
	opts.Speed = interpreter.DefaultSpeed
	opts.Scale = 1
	opts.Cycles = 50
	opts.Seed = 1

	err := run(context.Background(), log.NewTestLogger(t), opts)
	assert.True(t, errors.Is(err, emulator.ErrCycleBudget))
}
