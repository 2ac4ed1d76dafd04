package esni

import (
	"github.com/enetx/esni/internal/wire"
)

// ESNIHandshakeData is the per-connection output of PrepareESNI: the key
// share and cipher suite selected by intersecting a decoded ESNIKeys record
// against the caller's local preferences, plus the record digest the
// Sealer binds its ciphertext to. It is immutable and safe to share across
// goroutines; only the ephemeral private key SealESNI creates per call is
// not reused.
type ESNIHandshakeData struct {
	PeerShare    wire.KeyShareEntry
	Suite        uint16
	PaddedLength uint16
	RecordDigest []byte

	suite cipherSuite
}

// PrepareESNI decodes record_bytes, validates its validity window against
// now, and negotiates one (group, key_share) and one TLS 1.3 cipher suite
// by intersecting the record's offerings with the caller's local
// preferences.
//
// supportedGroups is tried in the caller's preference order: the first
// group with a matching entry in the record wins. supportedSuites is
// matched in the record's own preference order ("server preference"),
// since the record represents the server's published ranking.
func PrepareESNI(recordBytes []byte, now int64, supportedGroups []uint16, supportedSuites []uint16) (*ESNIHandshakeData, error) {
	record, err := DecodeESNIKeys(recordBytes)
	if err != nil {
		return nil, err
	}

	if err := record.checkValidity(now); err != nil {
		return nil, err
	}

	peerShare, ok := selectGroup(record.Keys, supportedGroups)
	if !ok {
		return nil, &ErrNoCommonGroup{}
	}

	suiteID, ok := selectSuite(record.CipherSuites, supportedSuites)
	if !ok {
		return nil, &ErrNoCommonSuite{}
	}

	suite, ok := lookupCipherSuite(suiteID)
	if !ok {
		// supportedSuites is assumed to only name suites this package
		// implements; a mismatch here means the caller passed an ID we
		// don't recognize, which selectSuite would only echo back if the
		// caller listed it as supported.
		return nil, &ErrNoCommonSuite{}
	}

	h := suite.newHash()
	h.Write(record.Raw())
	digest := h.Sum(nil)

	return &ESNIHandshakeData{
		PeerShare:    peerShare,
		Suite:        suiteID,
		PaddedLength: record.PaddedLength,
		RecordDigest: digest,
		suite:        suite,
	}, nil
}

// selectGroup iterates the caller's supported groups in preference order
// and returns the first KeyShareEntry in record keys matching any of them.
func selectGroup(keys []wire.KeyShareEntry, supportedGroups []uint16) (wire.KeyShareEntry, bool) {
	for _, group := range supportedGroups {
		for _, k := range keys {
			if k.Group == group {
				return k, true
			}
		}
	}
	return wire.KeyShareEntry{}, false
}

// selectSuite iterates the record's cipher suites in its own order ("server
// preference") and returns the first one present in supportedSuites.
func selectSuite(recordSuites []uint16, supportedSuites []uint16) (uint16, bool) {
	supported := make(map[uint16]bool, len(supportedSuites))
	for _, s := range supportedSuites {
		supported[s] = true
	}

	for _, s := range recordSuites {
		if supported[s] {
			return s, true
		}
	}
	return 0, false
}
