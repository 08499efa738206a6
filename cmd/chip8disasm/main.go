// Package main implements a CHIP-8 ROM disassembler
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
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

	opts, disasmOptions, err := cli.ParseDisasmFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, "chip8disasm", opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	config.PrintBanner(logger, "chip8disasm", opts.Quiet, version, commit, date)

	if err := disasmFile(ctx, logger, opts, disasmOptions); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}

func disasmFile(ctx context.Context, logger *log.Logger, opts options.DisasmProgram,
	disasmOptions options.Disassembler) error {

	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return err
	}

	dis, err := disasm.New(logger, rom, disasmOptions)
	if err != nil {
		return fmt.Errorf("initializing disassembler: %w", err)
	}

	var outputFile io.WriteCloser
	if opts.Output == "" {
		outputFile = nopCloser{os.Stdout}
	} else {
		outputFile, err = os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", opts.Output, err)
		}
	}

	if err = dis.Process(ctx, outputFile); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("processing file: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}

	if opts.Output != "" {
		logger.Info("Disassembly written", log.String("file", opts.Output))
	}
	return nil
}

// nopCloser keeps stdout open after writing the disassembly.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
