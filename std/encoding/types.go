package encoding

import "errors"

// Buffer is a buffer of bytes
type Buffer []byte

type ErrFormat struct {
	Msg string
}

func (e ErrFormat) Error() string {
	return e.Msg
}

var ErrBufferOverflow = errors.New("buffer overflow when parsing. One of the TLV Length is wrong")

var ErrUnexpectedType = errors.New("unexpected TLV type")
