package ndn

import (
	"fmt"
	"time"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/types/optional"
)

type MetaInfo struct {
	ContentType     optional.Optional[uint64]
	FreshnessPeriod optional.Optional[time.Duration]
}

type SignatureInfo struct {
	SignatureType SigType
	KeyLocator    *KeyLocator
}

// Data is a parsed or encoded Data packet.
// Byte slices of a parsed packet alias the wire it was parsed from.
type Data struct {
	Name           enc.Name
	MetaInfo       *MetaInfo
	Content        []byte
	SignatureInfo  *SignatureInfo
	SignatureValue []byte

	wire       []byte
	sigCovered []byte
}

// Wire returns the encoded packet, or nil before Encode.
func (d *Data) Wire() []byte {
	return d.wire
}

// SigCovered returns the signed portion of the packet.
func (d *Data) SigCovered() []byte {
	return d.sigCovered
}

// FullName returns the name with the implicit SHA-256 digest of the wire appended.
// It panics if the packet was neither parsed nor encoded.
func (d *Data) FullName() enc.Name {
	if d.wire == nil {
		panic("FullName() called on a Data without wire")
	}
	return d.Name.ToFullName(d.wire)
}

// KeyLocator returns the signer's KeyLocator, if any.
func (d *Data) KeyLocator() *KeyLocator {
	if d.SignatureInfo == nil {
		return nil
	}
	return d.SignatureInfo.KeyLocator
}

// Encode signs and encodes the packet.
// The SignatureInfo is replaced by one describing the signer.
func (d *Data) Encode(signer Signer) ([]byte, error) {
	d.SignatureInfo = &SignatureInfo{
		SignatureType: signer.Type(),
		KeyLocator:    signer.KeyLocator(),
	}

	buf := d.Name.Bytes()
	if d.MetaInfo != nil {
		buf = enc.AppendTLV(buf, TypeMetaInfo, d.MetaInfo.encodeValue())
	}
	buf = enc.AppendTLV(buf, TypeContent, d.Content)
	buf = enc.AppendTLV(buf, TypeSignatureInfo, d.SignatureInfo.encodeValue())
	covered := len(buf)

	sig, err := signer.Sign(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSecurity, err)
	}
	d.SignatureValue = sig
	buf = enc.AppendTLV(buf, TypeSignatureValue, sig)

	d.wire = enc.AppendTLV(nil, TypeData, buf)
	start := len(d.wire) - len(buf)
	d.sigCovered = d.wire[start : start+covered]
	return d.wire, nil
}

// ParseData parses a Data packet.
func ParseData(wire []byte) (*Data, error) {
	r := enc.NewBufferView(wire)
	typ, val, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeData {
		return nil, ErrWrongType
	}
	if !r.IsEOF() {
		return nil, ErrInvalidValue{Item: "Data", Value: "trailing bytes"}
	}

	d := &Data{wire: wire}
	hasName := false
	inner := enc.NewBufferView(val)
	for !inner.IsEOF() {
		pos := inner.Pos()
		typ, v, err := inner.ReadTLV()
		if err != nil {
			return nil, err
		}

		switch typ {
		case enc.TypeName:
			nv := enc.NewBufferView(v)
			if d.Name, err = nv.ReadName(); err != nil {
				return nil, err
			}
			hasName = true
		case TypeMetaInfo:
			if d.MetaInfo, err = parseMetaInfo(v); err != nil {
				return nil, err
			}
		case TypeContent:
			d.Content = v
		case TypeSignatureInfo:
			if d.SignatureInfo, err = parseSignatureInfo(v); err != nil {
				return nil, err
			}
		case TypeSignatureValue:
			d.SignatureValue = v
			d.sigCovered = val[:pos]
		default:
			if isCritical(typ) {
				return nil, ErrInvalidValue{Item: "Data", Value: fmt.Sprintf("unrecognized critical field %d", typ)}
			}
		}
	}

	if !hasName {
		return nil, ErrInvalidValue{Item: "Data.Name", Value: nil}
	}
	if d.SignatureInfo == nil || d.SignatureValue == nil {
		return nil, ErrInvalidValue{Item: "Data.Signature", Value: nil}
	}
	return d, nil
}

func (m *MetaInfo) encodeValue() []byte {
	var buf []byte
	if ct, ok := m.ContentType.Get(); ok {
		buf = enc.AppendTLV(buf, TypeContentType, enc.Nat(ct).Bytes())
	}
	if fp, ok := m.FreshnessPeriod.Get(); ok {
		buf = enc.AppendTLV(buf, TypeFreshnessPeriod, enc.Nat(fp.Milliseconds()).Bytes())
	}
	return buf
}

func parseMetaInfo(val []byte) (*MetaInfo, error) {
	m := &MetaInfo{}
	r := enc.NewBufferView(val)
	for !r.IsEOF() {
		typ, v, err := r.ReadTLV()
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeContentType:
			n, err := enc.ParseNat(v)
			if err != nil {
				return nil, err
			}
			m.ContentType.Set(uint64(n))
		case TypeFreshnessPeriod:
			n, err := enc.ParseNat(v)
			if err != nil {
				return nil, err
			}
			m.FreshnessPeriod.Set(time.Duration(n) * time.Millisecond)
		}
	}
	return m, nil
}

func (s *SignatureInfo) encodeValue() []byte {
	buf := enc.AppendTLV(nil, TypeSignatureType, enc.Nat(s.SignatureType).Bytes())
	if s.KeyLocator != nil {
		buf = append(buf, s.KeyLocator.Bytes()...)
	}
	return buf
}

func parseSignatureInfo(val []byte) (*SignatureInfo, error) {
	s := &SignatureInfo{}
	hasType := false
	r := enc.NewBufferView(val)
	for !r.IsEOF() {
		typ, v, err := r.ReadTLV()
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeSignatureType:
			n, err := enc.ParseNat(v)
			if err != nil {
				return nil, err
			}
			s.SignatureType = SigType(n)
			hasType = true
		case TypeKeyLocator:
			if s.KeyLocator, err = ParseKeyLocator(v); err != nil {
				return nil, err
			}
		}
	}
	if !hasType {
		return nil, ErrInvalidValue{Item: "SignatureType", Value: nil}
	}
	return s, nil
}
