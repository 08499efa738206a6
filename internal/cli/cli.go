// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/options"
)

const maxScale = 40

// ParseFlags parses the command line of the emulator.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags, name: "retrochip8", file: "ROM file to run"}
	}

	if err := validateArgs(args, "ROM file to run"); err != nil {
		return opts, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// ParseDisasmFlags parses the command line of the disassembler.
func ParseDisasmFlags() (options.DisasmProgram, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.DisasmProgram
	readDisasmProgramFlags(flags, &opts)
	disasmOptions := options.NewDisassembler()
	var noHexComments, noOffsets bool
	readDisasmOptionFlags(flags, &disasmOptions, &noHexComments, &noOffsets)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, disasmOptions, &UsageError{flags: flags, name: "chip8disasm", file: "file to disassemble"}
	}

	if err := validateArgs(args, "file to disassemble"); err != nil {
		return opts, disasmOptions, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	// inverse logic for hex comments and offsets
	disasmOptions.HexComments = !noHexComments
	disasmOptions.OffsetComments = !noOffsets
	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	name  string
	file  string
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the command usage and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: %s [options] <%s>\n\n", e.name, e.file)
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string, file string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after %s, please pass the %s as last argument", arg, file, file),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if opts.Script != "" {
		opts.Frontend = frontend.Headless
	}
	if !slices.Contains(frontend.Names(), opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontend.Names(), ", "))
	}

	if opts.Speed < interpreter.MinSpeed || opts.Speed > interpreter.MaxSpeed {
		return fmt.Errorf("invalid speed %d, valid range is %d-%d",
			opts.Speed, interpreter.MinSpeed, interpreter.MaxSpeed)
	}
	if opts.Scale < 1 || opts.Scale > maxScale {
		return fmt.Errorf("invalid scale %d, valid range is 1-%d", opts.Scale, maxScale)
	}

	if opts.Trace {
		opts.Debug = true
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Script, "script", "", "Lua automation script to run, forces the headless frontend")
	flags.StringVar(&opts.Screenshot, "screenshot", "", "write the final screen as PNG file on exit")
	flags.StringVar(&opts.Frontend, "frontend", frontend.Window, "frontend to use (window/terminal/headless)")
	flags.IntVar(&opts.Speed, "speed", interpreter.DefaultSpeed, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", 10, "pixel scale of the window and screenshots")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "maximum number of instructions to execute, 0 for unlimited")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 for a time based seed")
	flags.BoolVar(&opts.Mute, "mute", false, "disable audio output")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.BoolVar(&opts.QuirkFlags.Shift, "quirk-shift", false, "8XY6/8XYE shift VY instead of VX")
	flags.BoolVar(&opts.QuirkFlags.LoadStore, "quirk-loadstore", false, "FX55/FX65 increment I")
	flags.BoolVar(&opts.QuirkFlags.VFReset, "quirk-vfreset", false, "8XY1/8XY2/8XY3 reset VF")
}

func readDisasmProgramFlags(flags *flag.FlagSet, opts *options.DisasmProgram) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Disassembler, noHexComments, noOffsets *bool) {
	flags.BoolVar(noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(noOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the ROM")
}
