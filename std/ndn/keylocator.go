package ndn

import (
	"bytes"
	"encoding/hex"

	enc "github.com/named-data/ndnrepo/std/encoding"
)

// KeyLocator identifies the key that signed a packet, by name or by digest.
type KeyLocator struct {
	Name      enc.Name
	KeyDigest []byte
}

// Bytes returns the TLV encoding of the KeyLocator, including its TL prefix.
func (k *KeyLocator) Bytes() []byte {
	var inner []byte
	if k.Name != nil {
		inner = k.Name.Bytes()
	} else {
		inner = enc.AppendTLV(nil, TypeKeyDigest, k.KeyDigest)
	}
	return enc.AppendTLV(nil, TypeKeyLocator, inner)
}

func (k *KeyLocator) Equal(rhs *KeyLocator) bool {
	if k == nil || rhs == nil {
		return k == rhs
	}
	return bytes.Equal(k.Bytes(), rhs.Bytes())
}

func (k *KeyLocator) String() string {
	if k.Name != nil {
		return k.Name.String()
	}
	return "digest=" + hex.EncodeToString(k.KeyDigest)
}

// ParseKeyLocator parses the value of a KeyLocator element.
func ParseKeyLocator(val []byte) (*KeyLocator, error) {
	r := enc.NewBufferView(val)
	typ, inner, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	switch typ {
	case enc.TypeName:
		v := enc.NewBufferView(inner)
		name, err := v.ReadName()
		if err != nil {
			return nil, err
		}
		return &KeyLocator{Name: name}, nil
	case TypeKeyDigest:
		return &KeyLocator{KeyDigest: inner}, nil
	default:
		return nil, ErrInvalidValue{Item: "KeyLocator", Value: typ}
	}
}
