package encoding

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	TypeInvalidComponent                TLNum = 0x00
	TypeImplicitSha256DigestComponent   TLNum = 0x01
	TypeParametersSha256DigestComponent TLNum = 0x02
	TypeGenericNameComponent            TLNum = 0x08
	TypeKeywordNameComponent            TLNum = 0x20
	TypeSegmentNameComponent            TLNum = 0x32
	TypeByteOffsetNameComponent         TLNum = 0x34
	TypeVersionNameComponent            TLNum = 0x36
	TypeTimestampNameComponent          TLNum = 0x38
	TypeSequenceNumNameComponent        TLNum = 0x3a
)

const (
	ParamShaNameConvention  = "params-sha256"
	DigestShaNameConvention = "sha256digest"
)

// valFmt selects how a component value is rendered in a URI.
type valFmt int

const (
	valFmtText valFmt = iota
	valFmtDec
	valFmtHex
)

type compConv struct {
	typ  TLNum
	name string
	vFmt valFmt
}

var compConvs = []compConv{
	{TypeImplicitSha256DigestComponent, DigestShaNameConvention, valFmtHex},
	{TypeParametersSha256DigestComponent, ParamShaNameConvention, valFmtHex},
	{TypeSegmentNameComponent, "seg", valFmtDec},
	{TypeByteOffsetNameComponent, "off", valFmtDec},
	{TypeVersionNameComponent, "v", valFmtDec},
	{TypeTimestampNameComponent, "t", valFmtDec},
	{TypeSequenceNumNameComponent, "seq", valFmtDec},
}

var compConvByType = make(map[TLNum]compConv)
var compConvByStr = make(map[string]compConv)

func init() {
	for _, conv := range compConvs {
		compConvByType[conv.typ] = conv
		compConvByStr[conv.name] = conv
	}
}

// Component is a single name component.
type Component struct {
	Typ TLNum
	Val []byte
}

func NewGenericComponent(s string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(s)}
}

func NewBytesComponent(typ TLNum, val []byte) Component {
	return Component{Typ: typ, Val: val}
}

func NewNumberComponent(typ TLNum, val uint64) Component {
	return Component{Typ: typ, Val: Nat(val).Bytes()}
}

func NewKeywordComponent(s string) Component {
	return Component{Typ: TypeKeywordNameComponent, Val: []byte(s)}
}

func NewSegmentComponent(seg uint64) Component {
	return NewNumberComponent(TypeSegmentNameComponent, seg)
}

func NewVersionComponent(ver uint64) Component {
	return NewNumberComponent(TypeVersionNameComponent, ver)
}

func NewSequenceNumComponent(seq uint64) Component {
	return NewNumberComponent(TypeSequenceNumNameComponent, seq)
}

func (c Component) Clone() Component {
	return Component{
		Typ: c.Typ,
		Val: append([]byte(nil), c.Val...),
	}
}

func (c Component) String() string {
	sb := strings.Builder{}
	c.writeTo(&sb)
	return sb.String()
}

// writeTo writes the URI form of the component and returns the length of the value part.
func (c Component) writeTo(sb *strings.Builder) int {
	vFmt := valFmtText
	if conv, ok := compConvByType[c.Typ]; ok {
		vFmt = conv.vFmt
		sb.WriteString(conv.name)
		sb.WriteByte('=')
	} else if c.Typ != TypeGenericNameComponent {
		sb.WriteString(strconv.FormatUint(uint64(c.Typ), 10))
		sb.WriteByte('=')
	}

	switch vFmt {
	case valFmtDec:
		s := strconv.FormatUint(c.NumberVal(), 10)
		sb.WriteString(s)
		return len(s)
	case valFmtHex:
		s := hex.EncodeToString(c.Val)
		sb.WriteString(s)
		return len(s)
	default:
		size := 0
		for _, b := range c.Val {
			if isLegalCompText(b) {
				sb.WriteByte(b)
				size += 1
			} else {
				sb.WriteByte('%')
				sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
				size += 3
			}
		}
		return size
	}
}

func (c Component) EncodingLength() int {
	l := len(c.Val)
	return c.Typ.EncodingLength() + TLNum(l).EncodingLength() + l
}

// Append appends the TLV encoding of the component to buf.
func (c Component) Append(buf []byte) []byte {
	return AppendTLV(buf, c.Typ, c.Val)
}

func (c Component) Bytes() []byte {
	return c.Append(make([]byte, 0, c.EncodingLength()))
}

// Compare orders components canonically: by type, then value length, then value bytes.
func (c Component) Compare(rhs Component) int {
	if c.Typ != rhs.Typ {
		if c.Typ < rhs.Typ {
			return -1
		}
		return 1
	}
	if len(c.Val) != len(rhs.Val) {
		if len(c.Val) < len(rhs.Val) {
			return -1
		}
		return 1
	}
	return bytes.Compare(c.Val, rhs.Val)
}

func (c Component) Equal(rhs Component) bool {
	return c.Typ == rhs.Typ && bytes.Equal(c.Val, rhs.Val)
}

// NumberVal returns the value of the component as a number
func (c Component) NumberVal() uint64 {
	ret := uint64(0)
	for _, v := range c.Val {
		ret = (ret << 8) | uint64(v)
	}
	return ret
}

// Successor returns the smallest component of the same type that sorts after c.
// The value is incremented as a big-endian number; when every byte is 0xFF the
// successor is the all-zero value one byte longer.
func (c Component) Successor() Component {
	val := append([]byte(nil), c.Val...)
	for i := len(val) - 1; i >= 0; i-- {
		if val[i] != 0xff {
			val[i]++
			return Component{Typ: c.Typ, Val: val}
		}
		val[i] = 0
	}
	return Component{Typ: c.Typ, Val: make([]byte, len(c.Val)+1)}
}

func ComponentFromStr(s string) (Component, error) {
	typ := TypeGenericNameComponent
	vFmt := valFmtText
	valStr := s

	if i := strings.IndexByte(s, '='); i >= 0 {
		typStr := s[:i]
		valStr = s[i+1:]
		if strings.IndexByte(valStr, '=') >= 0 {
			return Component{}, ErrFormat{"too many '=' in component: " + s}
		}
		if conv, ok := compConvByStr[typStr]; ok {
			typ, vFmt = conv.typ, conv.vFmt
		} else {
			t, err := strconv.ParseUint(typStr, 10, 64)
			if err != nil || t == 0 || t > 0xffff {
				return Component{}, ErrFormat{"invalid component type: " + typStr}
			}
			typ = TLNum(t)
		}
	}

	var val []byte
	var err error
	switch vFmt {
	case valFmtDec:
		var x uint64
		x, err = strconv.ParseUint(valStr, 10, 64)
		val = Nat(x).Bytes()
	case valFmtHex:
		val, err = hex.DecodeString(valStr)
	default:
		val, err = unescapeCompText(valStr)
	}
	if err != nil {
		return Component{}, ErrFormat{"invalid component value: " + s}
	}
	return Component{Typ: typ, Val: val}, nil
}

func ComponentFromBytes(buf []byte) (Component, error) {
	r := NewBufferView(buf)
	return r.ReadComponent()
}

func isLegalCompText(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

func unescapeCompText(s string) ([]byte, error) {
	if strings.IndexByte(s, '%') < 0 {
		return []byte(s), nil
	}
	val := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] != '%' {
			val = append(val, s[i])
			i++
			continue
		}
		if i+3 > len(s) {
			return nil, ErrFormat{"truncated escape in component: " + s}
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return nil, err
		}
		val = append(val, byte(v))
		i += 3
	}
	return val, nil
}
