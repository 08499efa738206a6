package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

const dataBytesPerLine = 8

// write outputs the disassembly in retroasm format.
func (dis *Disasm) write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 ROM Disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; Program starts at $%03X in CHIP-8 memory space\n\n", machine.ProgramStart); err != nil {
		return fmt.Errorf("writing memory space comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, ".org $%03X\n\n", machine.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	end := dis.endIndex()
	for i := 0; i < end; {
		off := &dis.offsets[i]
		if off.typ == codeOperand || len(off.data) == 0 {
			i++
			continue
		}

		if off.label != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", off.label); err != nil {
				return fmt.Errorf("writing label %s: %w", off.label, err)
			}
		}

		if off.typ == codeOffset {
			if err := dis.writeCode(w, i, off); err != nil {
				return err
			}
			i++
			continue
		}

		n, err := dis.writeData(w, i, end)
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

func (dis *Disasm) writeCode(w io.Writer, index int, off *offset) error {
	line := "    " + dis.codeText(off)
	comment := dis.comment(index, off.data, off.comment)

	if comment == "" {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return fmt.Errorf("writing code: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintf(w, "%-32s ; %s\n", line, comment); err != nil {
		return fmt.Errorf("writing code with comment: %w", err)
	}
	return nil
}

// writeData writes a run of data bytes starting at index as one .byte line
// and returns the number of offsets consumed. A run ends at a label, a
// commented byte, code or after dataBytesPerLine bytes.
func (dis *Disasm) writeData(w io.Writer, index, end int) (int, error) {
	first := &dis.offsets[index]
	values := []byte{first.data[0]}

	n := 1
	for ; index+n < end && len(values) < dataBytesPerLine; n++ {
		off := &dis.offsets[index+n]
		if off.typ != dataOffset || off.label != "" || off.comment != "" || first.comment != "" {
			break
		}
		values = append(values, off.data[0])
	}

	var buf strings.Builder
	for i, b := range values {
		if i == 0 {
			fmt.Fprintf(&buf, "    .byte $%02X", b)
		} else {
			fmt.Fprintf(&buf, ", $%02X", b)
		}
	}
	line := buf.String()

	comment := dis.comment(index, nil, first.comment)
	if comment == "" {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return 0, fmt.Errorf("writing data: %w", err)
		}
		return n, nil
	}
	if _, err := fmt.Fprintf(w, "%-32s ; %s\n", line, comment); err != nil {
		return 0, fmt.Errorf("writing data with comment: %w", err)
	}
	return n, nil
}

// comment combines the address, the hex bytes and an optional remark
// depending on the output options.
func (dis *Disasm) comment(index int, data []byte, remark string) string {
	var comments []string

	if dis.options.OffsetComments {
		comments = append(comments, fmt.Sprintf("$%04X", machine.ProgramStart+index))
	}
	if dis.options.HexComments && len(data) > 0 {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		comments = append(comments, strings.Join(hex, " "))
	}
	if remark != "" {
		comments = append(comments, remark)
	}
	return strings.Join(comments, "  ")
}

// endIndex returns the index after the last meaningful offset, trailing
// zero bytes are omitted unless requested.
func (dis *Disasm) endIndex() int {
	if dis.options.ZeroBytes {
		return len(dis.offsets)
	}

	for i := len(dis.offsets) - 1; i >= 0; i-- {
		off := &dis.offsets[i]
		if off.label != "" || off.typ == codeOffset || off.typ == codeOperand {
			return i + 1
		}
		for _, b := range off.data {
			if b != 0 {
				return i + 1
			}
		}
	}
	return 0
}
