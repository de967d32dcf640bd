package index

import (
	"crypto/sha256"

	"github.com/named-data/ndnrepo/std/ndn"
)

// KeyLocatorHash returns the SHA-256 digest of the KeyLocator's wire encoding,
// or nil when kl is nil.
func KeyLocatorHash(kl *ndn.KeyLocator) []byte {
	if kl == nil {
		return nil
	}
	h := sha256.Sum256(kl.Bytes())
	return h[:]
}
