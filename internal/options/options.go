// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input      string `flag:"i" usage:"input ROM file"`
	Script     string `flag:"script" usage:"Lua automation script, forces the headless frontend"`
	Screenshot string `flag:"screenshot" usage:"write the final screen as PNG file on exit"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"frontend" usage:"frontend: window, terminal, headless" default:"window"`
	Speed    int    `flag:"speed" usage:"instructions per second" default:"700"`
	Scale    int    `flag:"scale" usage:"window pixel scale" default:"10"`
	Cycles   uint64 `flag:"cycles" usage:"maximum number of instructions to execute, 0 for unlimited"`
	Seed     uint64 `flag:"seed" usage:"random number seed, 0 for a time based seed"`
	Mute     bool   `flag:"mute" usage:"disable audio"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// QuirkFlags select the behavior of instructions that differ between
// CHIP-8 implementations.
type QuirkFlags struct {
	Shift     bool `flag:"quirk-shift" usage:"8XY6/8XYE shift VY into VX"`
	LoadStore bool `flag:"quirk-loadstore" usage:"FX55/FX65 increment I"`
	VFReset   bool `flag:"quirk-vfreset" usage:"8XY1/8XY2/8XY3 reset VF"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	QuirkFlags
}

// DisasmParameters contains file path options of the disassembler.
type DisasmParameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output .asm file (default: stdout)"`
}

// DisasmFlags contains behavior options of the disassembler.
type DisasmFlags struct {
	Debug bool `flag:"debug" usage:"enable debug logging"`
	Quiet bool `flag:"q" usage:"quiet mode"`
}

// DisasmProgram options of the disassembler command.
type DisasmProgram struct {
	DisasmParameters
	DisasmFlags
}

// Disassembler defines options to control the disassembler output.
type Disassembler struct {
	HexComments    bool
	OffsetComments bool
	ZeroBytes      bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments:    true,
		OffsetComments: true,
	}
}
