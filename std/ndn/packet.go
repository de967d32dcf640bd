package ndn

import enc "github.com/named-data/ndnrepo/std/encoding"

// TLV type numbers of the packet elements this module reads and writes.
const (
	TypeData            enc.TLNum = 0x06
	TypeMetaInfo        enc.TLNum = 0x14
	TypeContent         enc.TLNum = 0x15
	TypeSignatureInfo   enc.TLNum = 0x16
	TypeSignatureValue  enc.TLNum = 0x17
	TypeContentType     enc.TLNum = 0x18
	TypeFreshnessPeriod enc.TLNum = 0x19
	TypeFinalBlockId    enc.TLNum = 0x1a
	TypeSignatureType   enc.TLNum = 0x1b
	TypeKeyLocator      enc.TLNum = 0x1c
	TypeKeyDigest       enc.TLNum = 0x1d
)

// SigType is the SignatureType of a packet.
type SigType uint64

const (
	SignatureDigestSha256    SigType = 0
	SignatureSha256WithRsa   SigType = 1
	SignatureSha256WithEcdsa SigType = 3
	SignatureHmacWithSha256  SigType = 4
	SignatureEd25519         SigType = 5
)

func (t SigType) String() string {
	switch t {
	case SignatureDigestSha256:
		return "DigestSha256"
	case SignatureSha256WithRsa:
		return "SignatureSha256WithRsa"
	case SignatureSha256WithEcdsa:
		return "SignatureSha256WithEcdsa"
	case SignatureHmacWithSha256:
		return "SignatureHmacWithSha256"
	case SignatureEd25519:
		return "SignatureEd25519"
	default:
		return "Unknown"
	}
}

// isCritical reports whether an unrecognized element must fail parsing.
func isCritical(typ enc.TLNum) bool {
	return typ <= 31 || typ%2 == 1
}
