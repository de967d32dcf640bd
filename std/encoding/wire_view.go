package encoding

import (
	"encoding/binary"
	"io"
)

// BufferView is a parsing cursor over a contiguous buffer.
// Slices returned by the Read methods alias the underlying buffer.
type BufferView struct {
	buf Buffer
	pos int
}

func NewBufferView(buf Buffer) BufferView {
	return BufferView{buf: buf}
}

func (r *BufferView) IsEOF() bool {
	return r.pos >= len(r.buf)
}

func (r *BufferView) Pos() int {
	return r.pos
}

func (r *BufferView) Length() int {
	return len(r.buf)
}

func (r *BufferView) ReadByte() (byte, error) {
	if r.IsEOF() {
		return 0, io.EOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBuf reads the next l bytes without copy.
func (r *BufferView) ReadBuf(l int) (Buffer, error) {
	if l < 0 || r.pos+l > len(r.buf) {
		return nil, ErrBufferOverflow
	}
	ret := r.buf[r.pos : r.pos+l]
	r.pos += l
	return ret, nil
}

func (r *BufferView) ReadTLNum() (TLNum, error) {
	x, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	var size int
	switch x {
	case 0xfd:
		size = 2
	case 0xfe:
		size = 4
	case 0xff:
		size = 8
	default:
		return TLNum(x), nil
	}

	buf, err := r.ReadBuf(size)
	if err != nil {
		return 0, io.ErrUnexpectedEOF
	}
	switch size {
	case 2:
		return TLNum(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return TLNum(binary.BigEndian.Uint32(buf)), nil
	default:
		return TLNum(binary.BigEndian.Uint64(buf)), nil
	}
}

// ReadTLV reads one complete element and returns its type and value.
func (r *BufferView) ReadTLV() (TLNum, Buffer, error) {
	typ, err := r.ReadTLNum()
	if err != nil {
		return 0, nil, err
	}
	l, err := r.ReadTLNum()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	val, err := r.ReadBuf(int(l))
	if err != nil {
		return 0, nil, err
	}
	return typ, val, nil
}

func (r *BufferView) ReadComponent() (Component, error) {
	typ, val, err := r.ReadTLV()
	if err != nil {
		return Component{}, err
	}
	if typ == TypeInvalidComponent {
		return Component{}, ErrFormat{"invalid component type 0"}
	}
	return Component{Typ: typ, Val: val}, nil
}

// ReadName reads components until the end of the view.
// The view must cover the value of a Name element, i.e. **excluding** the TL prefix.
func (r *BufferView) ReadName() (Name, error) {
	ret := make(Name, 0, 8)
	for !r.IsEOF() {
		c, err := r.ReadComponent()
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}
