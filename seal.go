package esni

import (
	"github.com/enetx/esni/internal/wire"
	"golang.org/x/crypto/hkdf"
)

// ClientEncryptedSNI is the `encrypted_server_name` extension payload sent
// in the outer TLS 1.3 ClientHello. Its wire layout is
//
//	uint16 suite
//	KeyShareEntry key_share_entry
//	uint16-prefixed record_digest
//	uint16-prefixed encrypted_sni (ciphertext || tag)
type ClientEncryptedSNI struct {
	Suite         uint16
	KeyShareEntry wire.KeyShareEntry
	RecordDigest  []byte
	EncryptedSNI  []byte
}

// Encode appends the wire encoding of c to w.
func (c *ClientEncryptedSNI) Encode(w *wire.Writer) {
	w.Uint16(c.Suite)
	c.KeyShareEntry.Encode(w)
	w.Vector16(c.RecordDigest)
	w.Vector16(c.EncryptedSNI)
}

// Bytes returns the standalone wire encoding of c.
func (c *ClientEncryptedSNI) Bytes() []byte {
	w := wire.NewWriter()
	c.Encode(w)
	return w.Bytes()
}

// SealESNI performs the sealing step of the pipeline: it generates a
// fresh ephemeral key pair in hs.PeerShare's group, runs (EC)DHE against the
// record's advertised key, derives an AEAD key/IV via the TLS 1.3
// HKDF-Expand-Label construction, and seals the padded inner SNI for
// hostname under AAD = outerKeyShareBytes (the exact bytes of the outer
// ClientHello's key_share extension body).
//
// clientHelloRandom must be the same 32 bytes the caller places in the
// outer ClientHello's Random field — the two must match byte-for-byte,
// since the server re-derives the same ESNIContents digest from the
// ClientHello it receives.
//
// hs is not re-validated against its validity window here; PrepareESNI's
// caller is responsible for not holding onto hs past the record's
// not_after.
func SealESNI(hs *ESNIHandshakeData, hostname string, outerKeyShareBytes, clientHelloRandom []byte, rng Randomness) (*ClientEncryptedSNI, error) {
	var nonce [16]byte
	if err := rng.Read(nonce[:]); err != nil {
		return nil, &ErrRandomSourceFailed{Err: err}
	}

	inner, err := buildClientESNIInner(hostname, hs.PaddedLength, nonce)
	if err != nil {
		return nil, err
	}
	defer zeroize(inner)

	curve, ok := ecdhCurve(hs.PeerShare.Group)
	if !ok {
		return nil, &ErrKeyExchangeFailed{Err: errUnsupportedGroup(hs.PeerShare.Group)}
	}

	peerPub, err := curve.NewPublicKey(hs.PeerShare.Payload)
	if err != nil {
		return nil, &ErrKeyExchangeFailed{Err: err}
	}

	ephemeral, err := curve.GenerateKey(randReader{rng})
	if err != nil {
		return nil, &ErrKeyExchangeFailed{Err: err}
	}

	z, err := ephemeral.ECDH(peerPub)
	if err != nil {
		return nil, &ErrKeyExchangeFailed{Err: err}
	}
	defer zeroize(z)

	clientShare := wire.KeyShareEntry{
		Group:   hs.PeerShare.Group,
		Payload: ephemeral.PublicKey().Bytes(),
	}

	contents := wire.NewWriter()
	contents.Vector16(hs.RecordDigest)
	clientShare.Encode(contents)
	contents.Raw(clientHelloRandom)

	hContents := hs.suite.newHash()
	hContents.Write(contents.Bytes())
	zxHash := hContents.Sum(nil)

	zeroSalt := make([]byte, hashLenOf(hs.suite))
	zx := hkdf.Extract(hs.suite.newHash, z, zeroSalt)

	key := make([]byte, hs.suite.keyLen)
	if _, err := hkdf.Expand(hs.suite.newHash, zx, hkdfExpandLabelInfo(hs.suite.keyLen, "esni key", zxHash)).Read(key); err != nil {
		return nil, &ErrSealFailed{Err: err}
	}
	defer zeroize(key)

	iv := make([]byte, hs.suite.ivLen)
	if _, err := hkdf.Expand(hs.suite.newHash, zx, hkdfExpandLabelInfo(hs.suite.ivLen, "esni iv", zxHash)).Read(iv); err != nil {
		return nil, &ErrSealFailed{Err: err}
	}
	defer zeroize(iv)

	aead, err := hs.suite.newAEAD(key)
	if err != nil {
		return nil, &ErrSealFailed{Err: err}
	}

	ciphertext := aead.Seal(nil, iv, inner, outerKeyShareBytes)

	return &ClientEncryptedSNI{
		Suite:         hs.Suite,
		KeyShareEntry: clientShare,
		RecordDigest:  hs.RecordDigest,
		EncryptedSNI:  ciphertext,
	}, nil
}

// hashLenOf returns the output length in bytes of the suite's handshake
// hash, used as HKDF-Extract's zero-valued salt length.
func hashLenOf(suite cipherSuite) int {
	return suite.newHash().Size()
}
