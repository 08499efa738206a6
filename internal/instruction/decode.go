package instruction

// Decode extracts the operation and operand fields of an instruction word.
// It never fails, unsupported encodings decode to OpUnknown.
func Decode(word uint16) Instruction {
	ins := Instruction{
		Opcode: word,
		X:      uint8(word>>8) & 0x0F,
		Y:      uint8(word>>4) & 0x0F,
		N:      uint8(word) & 0x0F,
		NN:     uint8(word),
		NNN:    word & 0x0FFF,
	}
	ins.Op = decodeOp(ins)
	return ins
}

func decodeOp(ins Instruction) Op {
	switch ins.Family() {
	case 0x0:
		switch ins.Opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		default:
			return OpSys
		}
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeVxByte
	case 0x4:
		return OpSneVxByte
	case 0x5:
		if ins.N == 0 {
			return OpSeVxVy
		}
	case 0x6:
		return OpLdVxByte
	case 0x7:
		return OpAddVxByte
	case 0x8:
		return decodeALU(ins.N)
	case 0x9:
		if ins.N == 0 {
			return OpSneVxVy
		}
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		return decodeMisc(ins.NN)
	}
	return OpUnknown
}

func decodeALU(n uint8) Op {
	switch n {
	case 0x0:
		return OpLdVxVy
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddVxVy
	case 0x5:
		return OpSub
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubn
	case 0xE:
		return OpShl
	default:
		return OpUnknown
	}
}

func decodeMisc(nn uint8) Op {
	switch nn {
	case 0x07:
		return OpLdVxDT
	case 0x0A:
		return OpLdVxK
	case 0x15:
		return OpLdDTVx
	case 0x18:
		return OpLdSTVx
	case 0x1E:
		return OpAddIVx
	case 0x29:
		return OpLdFVx
	case 0x33:
		return OpLdBVx
	case 0x55:
		return OpLdIVx
	case 0x65:
		return OpLdVxI
	default:
		return OpUnknown
	}
}
