package esni

import "crypto/rand"

// Randomness fills b with cryptographically strong random bytes. Injected
// so nonce and ephemeral-key generation are reproducible in tests.
type Randomness interface {
	Read(b []byte) error
}

// SystemRandomness is the default Randomness, backed by crypto/rand.
type SystemRandomness struct{}

// Read implements Randomness.
func (SystemRandomness) Read(b []byte) error {
	_, err := rand.Read(b)
	return err
}

// randReader adapts a Randomness collaborator to io.Reader, so it can be
// passed to APIs like crypto/ecdh's Curve.GenerateKey that expect the
// standard Go randomness interface.
type randReader struct{ r Randomness }

// Read implements io.Reader by delegating to the wrapped Randomness. It
// always fills the buffer completely or returns an error, matching
// Randomness' all-or-nothing contract.
func (rr randReader) Read(b []byte) (int, error) {
	if err := rr.r.Read(b); err != nil {
		return 0, err
	}
	return len(b), nil
}
