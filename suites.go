package esni

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/chacha20poly1305"
)

// Named-group identifiers from the TLS 1.3 registry that this profile
// negotiates key shares over. Only curves crypto/ecdh exposes natively are
// supported; the wire payload for each matches the format of the Curve's
// NewPublicKey and PublicKey.Bytes exactly, so no extra framing is needed.
const (
	GroupX25519 uint16 = 0x001d
	GroupP256   uint16 = 0x0017
	GroupP384   uint16 = 0x0018
)

// TLS 1.3 cipher suite identifiers this profile can negotiate for ESNI.
const (
	SuiteAES128GCMSHA256        uint16 = 0x1301
	SuiteAES256GCMSHA384        uint16 = 0x1302
	SuiteChaCha20Poly1305SHA256 uint16 = 0x1303
)

// cipherSuite bundles everything the Sealer needs once a suite ID has been
// negotiated: the handshake hash, derived key/IV lengths, and a constructor
// for the AEAD itself.
type cipherSuite struct {
	id      uint16
	newHash func() hash.Hash
	keyLen  int
	ivLen   int
	newAEAD func(key []byte) (cipher.AEAD, error)
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

var cipherSuites = map[uint16]cipherSuite{
	SuiteAES128GCMSHA256: {
		id:      SuiteAES128GCMSHA256,
		newHash: sha256.New,
		keyLen:  16,
		ivLen:   12,
		newAEAD: newAESGCM,
	},
	SuiteAES256GCMSHA384: {
		id:      SuiteAES256GCMSHA384,
		newHash: sha512.New384,
		keyLen:  32,
		ivLen:   12,
		newAEAD: newAESGCM,
	},
	SuiteChaCha20Poly1305SHA256: {
		id:      SuiteChaCha20Poly1305SHA256,
		newHash: sha256.New,
		keyLen:  chacha20poly1305.KeySize,
		ivLen:   chacha20poly1305.NonceSize,
		newAEAD: chacha20poly1305.New,
	},
}

func lookupCipherSuite(id uint16) (cipherSuite, bool) {
	cs, ok := cipherSuites[id]
	return cs, ok
}

// ecdhCurve returns the crypto/ecdh.Curve implementing the given named
// group, or false if the group is not one of the three this profile
// supports. The Curve's own NewPublicKey and PublicKey.Bytes already use the exact
// wire encoding a KeyShareEntry.Payload carries for each of these groups
// (32-byte X25519, uncompressed SEC1 points for the NIST curves).
func ecdhCurve(group uint16) (ecdh.Curve, bool) {
	switch group {
	case GroupX25519:
		return ecdh.X25519(), true
	case GroupP256:
		return ecdh.P256(), true
	case GroupP384:
		return ecdh.P384(), true
	default:
		return nil, false
	}
}

func (cs cipherSuite) String() string {
	return fmt.Sprintf("0x%04x", cs.id)
}

// errUnsupportedGroup reports that a peer's KeyShareEntry named a group
// this profile has no crypto/ecdh.Curve for.
func errUnsupportedGroup(group uint16) error {
	return fmt.Errorf("unsupported named group 0x%04x", group)
}
