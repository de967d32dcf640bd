package encoding

import (
	"crypto/sha256"
	"strings"

	"github.com/cespare/xxhash"
)

// Name is an ordered sequence of components.
type Name []Component

const TypeName TLNum = 0x07

func (n Name) String() string {
	sb := strings.Builder{}
	for i, c := range n {
		sb.WriteByte('/')
		if sz := c.writeTo(&sb); i == len(n)-1 && sz == 0 {
			sb.WriteByte('/')
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// EncodingLength computes a Name's length after encoding **excluding** the TL prefix.
func (n Name) EncodingLength() int {
	ret := 0
	for _, c := range n {
		ret += c.EncodingLength()
	}
	return ret
}

// BytesInner returns the encoded bytes of a Name **excluding** the TL prefix.
func (n Name) BytesInner() []byte {
	buf := make([]byte, 0, n.EncodingLength())
	for _, c := range n {
		buf = c.Append(buf)
	}
	return buf
}

// Bytes returns the encoded bytes of a Name
func (n Name) Bytes() []byte {
	return AppendTLV(nil, TypeName, n.BytesInner())
}

// Clone returns a deep copy of a Name, packing all values into one allocation.
func (n Name) Clone() Name {
	ret := make(Name, len(n))
	valLen := 0
	for i := range n {
		valLen += len(n[i].Val)
	}
	buf := make([]byte, valLen)
	for i, c := range n {
		vlen := copy(buf, c.Val)
		ret[i] = Component{Typ: c.Typ, Val: buf[:vlen:vlen]}
		buf = buf[vlen:]
	}
	return ret
}

// At returns the ith component of a Name.
// If i is out of range, a zero component is returned.
// Negative values start from the end.
func (n Name) At(i int) Component {
	if i < -len(n) || i >= len(n) {
		return Component{}
	} else if i < 0 {
		return n[len(n)+i]
	}
	return n[i]
}

// Prefix returns a name prefix with the first i components.
// If i is negative, i components are removed from the end.
// Note that the returned name is not a deep copy.
func (n Name) Prefix(i int) Name {
	if i < 0 {
		i = len(n) + i
	}
	if i <= 0 {
		return Name{}
	}
	if i >= len(n) {
		return n
	}
	return n[:i]
}

// Append appends components to a copy of the name.
func (n Name) Append(rest ...Component) Name {
	if len(rest) == 0 {
		return n
	}
	ret := make(Name, len(n), len(n)+len(rest))
	copy(ret, n)
	return append(ret, rest...)
}

// Compare orders names canonically: component-wise, a proper prefix first.
func (n Name) Compare(rhs Name) int {
	for i := 0; i < min(len(n), len(rhs)); i++ {
		if ret := n[i].Compare(rhs[i]); ret != 0 {
			return ret
		}
	}
	switch {
	case len(n) < len(rhs):
		return -1
	case len(n) > len(rhs):
		return 1
	default:
		return 0
	}
}

func (n Name) Equal(rhs Name) bool {
	if len(n) != len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsPrefix returns true if n is a prefix of rhs (or equal to it).
func (n Name) IsPrefix(rhs Name) bool {
	if len(n) > len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// Successor returns the smallest name with the same number of components that
// sorts after every name n is a prefix of. The successor of the empty name is
// the single generic component 0x00.
func (n Name) Successor() Name {
	if len(n) == 0 {
		return Name{{Typ: TypeGenericNameComponent, Val: []byte{0}}}
	}
	return n.Prefix(-1).Append(n[len(n)-1].Successor())
}

// Hash returns the hash of the name
func (n Name) Hash() uint64 {
	return xxhash.Sum64(n.BytesInner())
}

// ToFullName appends the implicit SHA-256 digest of the given packet wire.
// A digest component already at the end of n is kept as an ordinary component.
func (n Name) ToFullName(wire []byte) Name {
	digest := sha256.Sum256(wire)
	return n.Append(Component{
		Typ: TypeImplicitSha256DigestComponent,
		Val: digest[:],
	})
}

// NameFromStr parses a URI string into a Name
func NameFromStr(s string) (Name, error) {
	strs := strings.Split(s, "/")
	// Removing leading and trailing empty strings given by /
	if strs[0] == "" {
		strs = strs[1:]
	}
	if len(strs) > 0 && strs[len(strs)-1] == "" {
		strs = strs[:len(strs)-1]
	}
	ret := make(Name, len(strs))
	for i, str := range strs {
		c, err := ComponentFromStr(str)
		if err != nil {
			return nil, err
		}
		ret[i] = c
	}
	return ret, nil
}

// NameFromBytes parses a TLV encoded Name (including the TL prefix).
func NameFromBytes(buf []byte) (Name, error) {
	r := NewBufferView(buf)
	typ, val, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeName {
		return nil, ErrFormat{"encoding.NameFromBytes: given bytes is not a Name"}
	}
	if !r.IsEOF() {
		return nil, ErrFormat{"encoding.NameFromBytes: given bytes have a wrong length"}
	}
	inner := NewBufferView(val)
	return inner.ReadName()
}
