package ndn

import (
	"crypto/hmac"
	"crypto/sha256"

	enc "github.com/named-data/ndnrepo/std/encoding"
)

// Signer produces the SignatureValue of a packet.
type Signer interface {
	Type() SigType
	KeyLocator() *KeyLocator
	Sign(covered []byte) ([]byte, error)
}

type sha256Signer struct{}

func (sha256Signer) Type() SigType {
	return SignatureDigestSha256
}

func (sha256Signer) KeyLocator() *KeyLocator {
	return nil
}

func (sha256Signer) Sign(covered []byte) ([]byte, error) {
	h := sha256.Sum256(covered)
	return h[:], nil
}

// NewSha256Signer creates a signer that uses DigestSha256.
func NewSha256Signer() Signer {
	return sha256Signer{}
}

type hmacSigner struct {
	keyName enc.Name
	key     []byte
}

func (s *hmacSigner) Type() SigType {
	return SignatureHmacWithSha256
}

func (s *hmacSigner) KeyLocator() *KeyLocator {
	return &KeyLocator{Name: s.keyName}
}

func (s *hmacSigner) Sign(covered []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(covered)
	return mac.Sum(nil), nil
}

// NewHmacSigner creates a signer that uses HMAC-SHA256 with a shared key.
func NewHmacSigner(keyName enc.Name, key []byte) Signer {
	return &hmacSigner{keyName: keyName.Clone(), key: key}
}

// Verify checks the signature of a DigestSha256 or HMAC-SHA256 packet.
// key is ignored for DigestSha256.
func Verify(d *Data, key []byte) bool {
	if d.SignatureInfo == nil || d.sigCovered == nil {
		return false
	}
	var expected []byte
	switch d.SignatureInfo.SignatureType {
	case SignatureDigestSha256:
		expected, _ = sha256Signer{}.Sign(d.sigCovered)
	case SignatureHmacWithSha256:
		expected, _ = (&hmacSigner{key: key}).Sign(d.sigCovered)
	default:
		return false
	}
	return hmac.Equal(expected, d.SignatureValue)
}
