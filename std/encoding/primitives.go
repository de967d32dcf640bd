package encoding

import "encoding/binary"

// TLNum is a TLV Type or Length number
type TLNum uint64

// Nat is a TLV natural number
type Nat uint64

// EncodingLength is the size of the variable-length encoding of v.
func (v TLNum) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xfc:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// Append appends the variable-length encoding of v to buf.
func (v TLNum) Append(buf []byte) []byte {
	switch x := uint64(v); {
	case x <= 0xfc:
		return append(buf, byte(x))
	case x <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buf, 0xfd), uint16(x))
	case x <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buf, 0xfe), uint32(x))
	default:
		return binary.BigEndian.AppendUint64(append(buf, 0xff), x)
	}
}

// EncodingLength is the size of the shortest fixed-width encoding of v.
func (v Nat) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xff:
		return 1
	case x <= 0xffff:
		return 2
	case x <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// Append appends the natural number encoding of v to buf.
func (v Nat) Append(buf []byte) []byte {
	switch x := uint64(v); {
	case x <= 0xff:
		return append(buf, byte(x))
	case x <= 0xffff:
		return binary.BigEndian.AppendUint16(buf, uint16(x))
	case x <= 0xffffffff:
		return binary.BigEndian.AppendUint32(buf, uint32(x))
	default:
		return binary.BigEndian.AppendUint64(buf, x)
	}
}

// Bytes returns the natural number encoding of v.
func (v Nat) Bytes() []byte {
	return v.Append(make([]byte, 0, 8))
}

// ParseNat decodes a natural number value of 1, 2, 4 or 8 bytes.
func ParseNat(buf Buffer) (Nat, error) {
	switch len(buf) {
	case 1:
		return Nat(buf[0]), nil
	case 2:
		return Nat(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return Nat(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return Nat(binary.BigEndian.Uint64(buf)), nil
	default:
		return 0, ErrFormat{"natural number length is not 1, 2, 4 or 8"}
	}
}

// AppendTLV appends a complete type-length-value element to buf.
func AppendTLV(buf []byte, typ TLNum, val []byte) []byte {
	buf = typ.Append(buf)
	buf = TLNum(len(val)).Append(buf)
	return append(buf, val...)
}
