// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM image at path. Empty files and images that do not fit
// into program memory are rejected.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.Read(file)
	if err != nil {
		return nil, fmt.Errorf("loading rom %s: %w", path, err)
	}
	return rom, nil
}

// Read reads a ROM image from r.
func (l *Loader) Read(r io.Reader) ([]byte, error) {
	// one byte more than allowed to detect oversized images without reading
	// arbitrary large inputs
	rom, err := io.ReadAll(io.LimitReader(r, machine.MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	switch {
	case len(rom) == 0:
		return nil, machine.ErrEmptyROM
	case len(rom) > machine.MaxROMSize:
		return nil, fmt.Errorf("%w: maximum is %d bytes", machine.ErrROMTooLarge, machine.MaxROMSize)
	}
	return rom, nil
}
