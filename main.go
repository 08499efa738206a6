// Package main implements the main entry point of the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/executor"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/screenshot"
	"github.com/retroenv/retrochip8/internal/script"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, "retrochip8", opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	config.PrintBanner(logger, "retrochip8", opts.Quiet, version, commit, date)

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}

		var fault *interpreter.FaultError
		switch {
		case errors.Is(err, emulator.ErrCycleBudget):
			logger.Error("Cycle budget exceeded",
				log.Uint64("cycles", opts.Cycles),
				log.Err(err))
		case errors.As(err, &fault):
			logger.Error("Emulation failed",
				log.Hex("pc", fault.PC),
				log.Hex("opcode", fault.Opcode),
				log.Err(fault.Err))
		default:
			logger.Error("Emulation failed", log.Err(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return err
	}

	interp := interpreter.New(logger, interpreterOptions(logger, opts))
	if err := interp.Load(rom); err != nil {
		return err
	}
	logger.Debug("ROM loaded",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.Int("speed", interp.Speed()))

	defer writeScreenshot(logger, interp, opts)

	if opts.Script != "" {
		return script.New(logger, interp, opts.Cycles, opts.Scale).Run(ctx, opts.Script)
	}

	beeper := createAudio(logger, opts)
	if closer, ok := beeper.(*audio.Beeper); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("Closing audio failed", log.Err(err))
			}
		}()
	}

	return frontend.Run(ctx, logger, opts.Frontend, interp, frontend.Options{
		Scale:  opts.Scale,
		Audio:  beeper,
		Budget: opts.Cycles,
	})
}

func interpreterOptions(logger *log.Logger, opts options.Program) interpreter.Options {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	interpOpts := interpreter.Options{
		Speed: opts.Speed,
		Seed:  seed,
		Quirks: executor.Quirks{
			ShiftUsesVY:          opts.QuirkFlags.Shift,
			LoadStoreIncrementsI: opts.QuirkFlags.LoadStore,
			LogicResetsVF:        opts.QuirkFlags.VFReset,
		},
	}

	if opts.Trace {
		interpOpts.Tracer = func(pc uint16, ins instruction.Instruction) {
			text, ok := disasm.Format(ins.Opcode)
			if !ok {
				text = "unknown"
			}
			logger.Debug("Execute",
				log.Hex("pc", pc),
				log.Hex("opcode", ins.Opcode),
				log.String("instruction", text))
		}
	}
	return interpOpts
}

// createAudio returns the beeper, or a silent output if audio is muted or
// not available.
func createAudio(logger *log.Logger, opts options.Program) emulator.Audio {
	if opts.Mute || opts.Frontend == frontend.Headless {
		return emulator.NopAudio{}
	}

	beeper, err := audio.NewBeeper(logger)
	if err != nil {
		logger.Warn("Audio disabled", log.Err(err))
		return emulator.NopAudio{}
	}
	return beeper
}

func writeScreenshot(logger *log.Logger, interp *interpreter.Interpreter, opts options.Program) {
	if opts.Screenshot == "" {
		return
	}
	if err := screenshot.Save(opts.Screenshot, interp.Frame(), opts.Scale); err != nil {
		logger.Error("Writing screenshot failed", log.Err(err))
		return
	}
	logger.Info("Screenshot written", log.String("file", opts.Screenshot))
}
